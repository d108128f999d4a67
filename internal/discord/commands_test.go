package discord

import (
	"database/sql"
	"testing"
	"time"

	"github.com/robalyx/presencerelay/internal/database"
	"github.com/robalyx/presencerelay/internal/database/service"
	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/robalyx/presencerelay/internal/database/types/enum"
	"github.com/robalyx/presencerelay/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const friendAccount = uint64(76561198000000001)

func setupCommands(t *testing.T) (*Commands, *service.LinkService) {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	require.NoError(t, database.Migrate(t.Context(), db, logger))
	store := database.New(db, logger).Service().Link()

	friends := steam.NewFriendSet()
	friends.Replace([]uint64{friendAccount})

	commands := NewCommands(store, friends, logger)
	commands.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	return commands, store
}

func TestLinkCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		steamID  string
		contains string
	}{
		{"not a number", "gaben", "not a valid SteamID64"},
		{"too small", "12345", "not a valid SteamID64"},
		{"not a friend", "76561198000000002", "not on the relay's friend list"},
		{"links friend", "76561198000000001", "Linked your Discord account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			commands, _ := setupCommands(t)

			reply := commands.Handle(t.Context(), Request{
				Command: LinkCommandName,
				UserID:  10,
				SteamID: tt.steamID,
			})
			assert.Contains(t, reply, tt.contains)
		})
	}
}

func TestLinkCommandConflicts(t *testing.T) {
	t.Parallel()
	commands, store := setupCommands(t)
	ctx := t.Context()

	link := Request{Command: LinkCommandName, UserID: 10, SteamID: "76561198000000001"}
	assert.Contains(t, commands.Handle(ctx, link), "Linked")
	assert.Contains(t, commands.Handle(ctx, link), "already linked to that Steam account")

	other := Request{Command: LinkCommandName, UserID: 20, SteamID: "76561198000000001"}
	assert.Contains(t, commands.Handle(ctx, other), "already linked elsewhere")

	record, err := store.LookupByExternalAccount(ctx, friendAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), record.ChatUserID)
}

func TestUnlinkCommand(t *testing.T) {
	t.Parallel()
	commands, _ := setupCommands(t)
	ctx := t.Context()

	unlink := Request{Command: UnlinkCommandName, UserID: 10}
	assert.Contains(t, commands.Handle(ctx, unlink), "do not have a linked")

	commands.Handle(ctx, Request{Command: LinkCommandName, UserID: 10, SteamID: "76561198000000001"})
	assert.Contains(t, commands.Handle(ctx, unlink), "Unlinked Steam account `76561198000000001`")
}

func TestStatusCommand(t *testing.T) {
	t.Parallel()
	commands, store := setupCommands(t)
	ctx := t.Context()

	status := Request{Command: StatusCommandName, UserID: 10}
	assert.Contains(t, commands.Handle(ctx, status), "does not have a linked")

	commands.Handle(ctx, Request{Command: LinkCommandName, UserID: 10, SteamID: "76561198000000001"})
	assert.Contains(t, commands.Handle(ctx, status), "no presence has been observed")

	require.NoError(t, store.UpsertCache(ctx, &types.PresenceCacheEntry{
		ExternalAccountID: friendAccount,
		ActivityName:      "Portal 2",
		PresenceState:     enum.PresenceStateOnline,
		LastUpdated:       1_700_000_100,
	}))
	require.NoError(t, store.RecordNotify(ctx, friendAccount, time.Unix(1_700_000_000, 0)))

	// Looked up by another user
	reply := commands.Handle(ctx, Request{Command: StatusCommandName, UserID: 99, TargetUserID: 10})
	assert.Equal(t, "<@10> is Online, playing **Portal 2** as of <t:1700000100:R>. Notifications sent: 1.", reply)
}

func TestChannelCommands(t *testing.T) {
	t.Parallel()
	commands, store := setupCommands(t)
	ctx := t.Context()

	set := Request{Command: SetChannelCommandName, UserID: 10, GuildID: 5, ChannelID: 500}

	assert.Contains(t, commands.Handle(ctx, Request{Command: SetChannelCommandName, UserID: 10, ChannelID: 500}),
		"only be used in a server")
	assert.Contains(t, commands.Handle(ctx, set), "Manage Server")

	set.CanManageGuild = true
	assert.Equal(t, "Presence updates will be posted in <#500>.", commands.Handle(ctx, set))

	destinations, err := store.ListDestinations(ctx)
	require.NoError(t, err)
	require.Len(t, destinations, 1)
	assert.Equal(t, uint64(500), destinations[0].ChannelID)

	clearReq := Request{Command: ClearChannelCommandName, UserID: 10, GuildID: 5, CanManageGuild: true}
	assert.Contains(t, commands.Handle(ctx, clearReq), "no longer be posted")
	assert.Contains(t, commands.Handle(ctx, clearReq), "No channel is configured")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	commands, _ := setupCommands(t)

	assert.Equal(t, "This command is not available.", commands.Handle(t.Context(), Request{Command: "dashboard"}))
}

func TestCommandDefinitions(t *testing.T) {
	t.Parallel()

	definitions := CommandDefinitions()
	assert.Len(t, definitions, 5)

	names := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		names = append(names, definition.CommandName())
	}
	assert.ElementsMatch(t, []string{
		LinkCommandName, UnlinkCommandName, StatusCommandName, SetChannelCommandName, ClearChannelCommandName,
	}, names)
}
