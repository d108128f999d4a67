package types

// DestinationConfig stores the channel a guild receives presence notifications in.
// A guild has at most one destination and the latest write wins.
type DestinationConfig struct {
	GuildID   uint64 `bun:",pk"`
	ChannelID uint64 `bun:",notnull"`
	CreatedAt int64  `bun:",notnull"`
}
