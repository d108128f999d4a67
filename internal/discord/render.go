package discord

import (
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/robalyx/presencerelay/internal/database/types/enum"
	"github.com/robalyx/presencerelay/internal/presence"
)

const (
	// DefaultEmbedColor is used for states without a dedicated color.
	DefaultEmbedColor = 0x312D2B
	OnlineEmbedColor  = 0x57F287
	InGameEmbedColor  = 0x5865F2
	AwayEmbedColor    = 0xFEE75C
	BusyEmbedColor    = 0xED4245
	OfflineEmbedColor = 0x747F8D

	profileURLFormat = "https://steamcommunity.com/profiles/%d"
)

// StateLabel returns a human readable presence state.
func StateLabel(state enum.PresenceState) string {
	switch state {
	case enum.PresenceStateOffline:
		return "Offline"
	case enum.PresenceStateOnline:
		return "Online"
	case enum.PresenceStateBusy:
		return "Busy"
	case enum.PresenceStateAway:
		return "Away"
	case enum.PresenceStateSnooze:
		return "Snooze"
	case enum.PresenceStateLookingToTrade:
		return "Looking to Trade"
	case enum.PresenceStateLookingToPlay:
		return "Looking to Play"
	default:
		return state.String()
	}
}

// Describe summarises a cached presence in one line.
func Describe(entry *types.PresenceCacheEntry) string {
	if entry.InGame() {
		return fmt.Sprintf("%s, playing **%s**", StateLabel(entry.PresenceState), entry.ActivityName)
	}
	return StateLabel(entry.PresenceState)
}

func embedColor(entry *types.PresenceCacheEntry) int {
	if entry.InGame() {
		return InGameEmbedColor
	}

	switch entry.PresenceState {
	case enum.PresenceStateOnline, enum.PresenceStateLookingToPlay, enum.PresenceStateLookingToTrade:
		return OnlineEmbedColor
	case enum.PresenceStateAway, enum.PresenceStateSnooze:
		return AwayEmbedColor
	case enum.PresenceStateBusy:
		return BusyEmbedColor
	case enum.PresenceStateOffline:
		return OfflineEmbedColor
	default:
		return DefaultEmbedColor
	}
}

// BuildMessage renders a notification as a Discord message.
func BuildMessage(notification *presence.Notification) discord.MessageCreate {
	current := notification.Current

	name := current.DisplayName
	if name == "" {
		name = strconv.FormatUint(current.ExternalAccountID, 10)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(name).
		SetURL(fmt.Sprintf(profileURLFormat, current.ExternalAccountID)).
		SetColor(embedColor(current)).
		SetTimestamp(time.Unix(current.LastUpdated, 0))

	if current.InGame() {
		embed.SetDescription(fmt.Sprintf("<@%d> started playing **%s**", notification.ChatUserID, current.ActivityName))
	} else {
		embed.SetDescription(fmt.Sprintf("<@%d> is now **%s**", notification.ChatUserID, StateLabel(current.PresenceState)))
	}

	if notification.Previous != nil {
		embed.AddField("Was", Describe(notification.Previous), true)
		embed.AddField("Now", Describe(current), true)
	}

	return discord.NewMessageCreateBuilder().
		SetEmbeds(embed.Build()).
		SetAllowedMentions(&discord.AllowedMentions{}).
		Build()
}
