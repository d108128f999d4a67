package presence

import (
	"context"
	"fmt"

	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// maxConcurrentDeliveries bounds parallel requests to Discord for one event.
const maxConcurrentDeliveries = 8

// DeliveryResult is the outcome of sending to one destination.
type DeliveryResult struct {
	GuildID   uint64
	ChannelID uint64
	Delivered bool
}

// DestinationLister lists the configured destinations.
type DestinationLister interface {
	ListDestinations(ctx context.Context) ([]*types.DestinationConfig, error)
}

// Fanout delivers one notification to every configured destination.
// A failed destination never affects the others.
type Fanout struct {
	destinations DestinationLister
	notifier     Notifier
	logger       *zap.Logger
}

// NewFanout creates a new fanout.
func NewFanout(destinations DestinationLister, notifier Notifier, logger *zap.Logger) *Fanout {
	return &Fanout{
		destinations: destinations,
		notifier:     notifier,
		logger:       logger.Named("fanout"),
	}
}

// Deliver sends the notification to all destinations concurrently and waits for every attempt.
func (f *Fanout) Deliver(ctx context.Context, notification *Notification) ([]DeliveryResult, error) {
	destinations, err := f.destinations.ListDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}

	p := pool.NewWithResults[DeliveryResult]().WithMaxGoroutines(maxConcurrentDeliveries)

	for _, destination := range destinations {
		p.Go(func() DeliveryResult {
			return DeliveryResult{
				GuildID:   destination.GuildID,
				ChannelID: destination.ChannelID,
				Delivered: f.notifier.Send(ctx, destination.ChannelID, notification),
			}
		})
	}

	results := p.Wait()

	failed := 0
	for _, result := range results {
		if !result.Delivered {
			failed++
			f.logger.Warn("Failed to deliver notification",
				zap.Uint64("guildID", result.GuildID),
				zap.Uint64("channelID", result.ChannelID),
				zap.Uint64("accountID", notification.Current.ExternalAccountID))
		}
	}

	f.logger.Debug("Delivered notification",
		zap.Uint64("accountID", notification.Current.ExternalAccountID),
		zap.Int("destinations", len(results)),
		zap.Int("failed", failed))

	return results, nil
}
