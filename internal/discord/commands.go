package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robalyx/presencerelay/internal/database/types"
	"go.uber.org/zap"
)

// Command names.
const (
	LinkCommandName         = "link"
	UnlinkCommandName       = "unlink"
	StatusCommandName       = "status"
	SetChannelCommandName   = "setchannel"
	ClearChannelCommandName = "clearchannel"
)

// steamID64Base is the smallest individual account SteamID64.
const steamID64Base = 76561197960265728

// CommandStore is the part of the link store used by the commands.
type CommandStore interface {
	Link(ctx context.Context, chatUserID, accountID uint64, now time.Time) (*types.LinkRecord, error)
	Unlink(ctx context.Context, chatUserID uint64) (*types.LinkRecord, error)
	LookupByChatUser(ctx context.Context, chatUserID uint64) (*types.LinkRecord, error)
	GetCache(ctx context.Context, accountID uint64) (*types.PresenceCacheEntry, error)
	GetRateLimit(ctx context.Context, accountID uint64) (*types.RateLimitRecord, error)
	SetDestination(ctx context.Context, guildID, channelID uint64, now time.Time) error
	RemoveDestination(ctx context.Context, guildID uint64) (bool, error)
}

// FriendChecker reports friendship with the service account.
type FriendChecker interface {
	IsFriend(accountID uint64) bool
}

// Request is a slash command invocation stripped of its transport.
type Request struct {
	Command        string
	UserID         uint64
	GuildID        uint64
	CanManageGuild bool
	SteamID        string
	TargetUserID   uint64
	ChannelID      uint64
}

// Commands implements the linking workflow.
type Commands struct {
	store   CommandStore
	friends FriendChecker
	now     func() time.Time
	logger  *zap.Logger
}

// NewCommands creates the command handlers.
func NewCommands(store CommandStore, friends FriendChecker, logger *zap.Logger) *Commands {
	return &Commands{
		store:   store,
		friends: friends,
		now:     time.Now,
		logger:  logger.Named("commands"),
	}
}

// Handle runs a command and returns the reply.
func (c *Commands) Handle(ctx context.Context, req Request) string {
	switch req.Command {
	case LinkCommandName:
		return c.link(ctx, req)
	case UnlinkCommandName:
		return c.unlink(ctx, req)
	case StatusCommandName:
		return c.status(ctx, req)
	case SetChannelCommandName:
		return c.setChannel(ctx, req)
	case ClearChannelCommandName:
		return c.clearChannel(ctx, req)
	default:
		return "This command is not available."
	}
}

func (c *Commands) link(ctx context.Context, req Request) string {
	accountID, err := strconv.ParseUint(req.SteamID, 10, 64)
	if err != nil || accountID < steamID64Base {
		return "That is not a valid SteamID64. It should look like `76561197960287930`."
	}

	if !c.friends.IsFriend(accountID) {
		return "That account is not on the relay's friend list yet. Send it a friend request first, then try again."
	}

	_, err = c.store.Link(ctx, req.UserID, accountID, c.now())
	switch {
	case err == nil:
		return fmt.Sprintf("Linked your Discord account to Steam account `%d`.", accountID)
	case errors.Is(err, types.ErrAlreadyLinkedSelf):
		return "You are already linked to that Steam account."
	case errors.Is(err, types.ErrAlreadyLinkedOther):
		return "Either you or that Steam account is already linked elsewhere. Use `/unlink` first."
	default:
		c.logger.Error("Failed to link account",
			zap.Uint64("userID", req.UserID),
			zap.Uint64("accountID", accountID),
			zap.Error(err))
		return "Failed to link your account. Please try again later."
	}
}

func (c *Commands) unlink(ctx context.Context, req Request) string {
	record, err := c.store.Unlink(ctx, req.UserID)
	switch {
	case err == nil:
		return fmt.Sprintf("Unlinked Steam account `%d`.", record.ExternalAccountID)
	case errors.Is(err, types.ErrLinkNotFound):
		return "You do not have a linked Steam account."
	default:
		c.logger.Error("Failed to unlink account", zap.Uint64("userID", req.UserID), zap.Error(err))
		return "Failed to unlink your account. Please try again later."
	}
}

func (c *Commands) status(ctx context.Context, req Request) string {
	userID := req.UserID
	if req.TargetUserID != 0 {
		userID = req.TargetUserID
	}

	link, err := c.store.LookupByChatUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrLinkNotFound) {
			return fmt.Sprintf("<@%d> does not have a linked Steam account.", userID)
		}
		c.logger.Error("Failed to lookup link", zap.Uint64("userID", userID), zap.Error(err))
		return "Failed to fetch the status. Please try again later."
	}

	cached, err := c.store.GetCache(ctx, link.ExternalAccountID)
	if err != nil {
		if errors.Is(err, types.ErrCacheNotFound) {
			return fmt.Sprintf("<@%d> is linked to `%d`, but no presence has been observed yet.",
				userID, link.ExternalAccountID)
		}
		c.logger.Error("Failed to get cached presence", zap.Uint64("accountID", link.ExternalAccountID), zap.Error(err))
		return "Failed to fetch the status. Please try again later."
	}

	notified := 0
	record, err := c.store.GetRateLimit(ctx, link.ExternalAccountID)
	switch {
	case err == nil:
		notified = record.NotifyCount
	case !errors.Is(err, types.ErrRateLimitNotFound):
		c.logger.Warn("Failed to get rate limit", zap.Uint64("accountID", link.ExternalAccountID), zap.Error(err))
	}

	return fmt.Sprintf("<@%d> is %s as of <t:%d:R>. Notifications sent: %d.",
		userID, Describe(cached), cached.LastUpdated, notified)
}

func (c *Commands) setChannel(ctx context.Context, req Request) string {
	if reply, ok := c.checkGuildAdmin(req); !ok {
		return reply
	}

	if req.ChannelID == 0 {
		return "Please choose a channel."
	}

	if err := c.store.SetDestination(ctx, req.GuildID, req.ChannelID, c.now()); err != nil {
		c.logger.Error("Failed to set destination", zap.Uint64("guildID", req.GuildID), zap.Error(err))
		return "Failed to save the channel. Please try again later."
	}

	return fmt.Sprintf("Presence updates will be posted in <#%d>.", req.ChannelID)
}

func (c *Commands) clearChannel(ctx context.Context, req Request) string {
	if reply, ok := c.checkGuildAdmin(req); !ok {
		return reply
	}

	removed, err := c.store.RemoveDestination(ctx, req.GuildID)
	if err != nil {
		c.logger.Error("Failed to remove destination", zap.Uint64("guildID", req.GuildID), zap.Error(err))
		return "Failed to clear the channel. Please try again later."
	}

	if !removed {
		return "No channel is configured for this server."
	}
	return "Presence updates will no longer be posted in this server."
}

func (c *Commands) checkGuildAdmin(req Request) (string, bool) {
	if req.GuildID == 0 {
		return "This command can only be used in a server.", false
	}
	if !req.CanManageGuild {
		return "You need the Manage Server permission to do that.", false
	}
	return "", true
}
