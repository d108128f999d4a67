package discord

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/presencerelay/internal/presence"
	"go.uber.org/zap"
)

// MessageCreator is the part of the Discord REST client used to post notifications.
type MessageCreator interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Notifier posts presence notifications to Discord channels.
type Notifier struct {
	rest   MessageCreator
	logger *zap.Logger
}

// NewNotifier creates a new notifier.
func NewNotifier(rest MessageCreator, logger *zap.Logger) *Notifier {
	return &Notifier{
		rest:   rest,
		logger: logger.Named("notifier"),
	}
}

// Send posts the notification to the channel. Delivery errors are logged and reported as false.
func (n *Notifier) Send(ctx context.Context, channelID uint64, notification *presence.Notification) bool {
	_, err := n.rest.CreateMessage(snowflake.ID(channelID), BuildMessage(notification), rest.WithCtx(ctx))
	if err != nil {
		n.logger.Warn("Failed to send notification",
			zap.Uint64("channelID", channelID),
			zap.Uint64("accountID", notification.Current.ExternalAccountID),
			zap.Error(err))
		return false
	}

	return true
}
