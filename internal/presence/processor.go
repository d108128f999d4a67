package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/robalyx/presencerelay/internal/steam"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Processor applies change detection and rate limiting to presence events.
// Events for one account must be processed sequentially.
type Processor struct {
	store    Store
	gate     Gate
	fanout   *Fanout
	cooldown time.Duration
	now      func() time.Time
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewProcessor creates a new processor.
func NewProcessor(store Store, gate Gate, notifier Notifier, cooldown time.Duration, logger *zap.Logger) *Processor {
	return &Processor{
		store:    store,
		gate:     gate,
		fanout:   NewFanout(store, notifier, logger),
		cooldown: cooldown,
		now:      time.Now,
		tracer:   otel.Tracer("presencerelay/presence"),
		logger:   logger.Named("presence_processor"),
	}
}

// Process handles a single presence snapshot.
//
// The cache is refreshed for every changed event of a linked friend, even when
// the notification is throttled. Cache and rate limit writes are committed
// before fanout starts.
func (p *Processor) Process(ctx context.Context, snapshot steam.Snapshot) (outcome Outcome, err error) {
	ctx, span := p.tracer.Start(ctx, "presence.Process", trace.WithAttributes(
		attribute.String("steam.account_id", strconv.FormatUint(snapshot.AccountID, 10)),
		attribute.String("steam.state", snapshot.State.String()),
	))
	defer func() {
		span.SetAttributes(attribute.String("presence.outcome", outcome.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !p.gate.IsFriend(snapshot.AccountID) {
		return OutcomeIgnored, nil
	}

	link, err := p.store.LookupByExternalAccount(ctx, snapshot.AccountID)
	if err != nil {
		if errors.Is(err, types.ErrLinkNotFound) {
			return OutcomeUnlinked, nil
		}
		return OutcomeIgnored, fmt.Errorf("failed to lookup link: %w", err)
	}

	previous, err := p.store.GetCache(ctx, snapshot.AccountID)
	if err != nil {
		if !errors.Is(err, types.ErrCacheNotFound) {
			return OutcomeIgnored, fmt.Errorf("failed to get cached presence: %w", err)
		}
		previous = nil
	}

	now := p.now()
	current := &types.PresenceCacheEntry{
		ExternalAccountID: snapshot.AccountID,
		DisplayName:       snapshot.DisplayName,
		ActivityName:      snapshot.ActivityName,
		ActivityID:        snapshot.ActivityID,
		PresenceState:     snapshot.State,
		LastUpdated:       now.Unix(),
	}

	// Identical events never charge the rate limit
	if current.SameObservation(previous) {
		return OutcomeUnchanged, nil
	}

	eligible, err := p.store.IsNotifyEligible(ctx, snapshot.AccountID, p.cooldown, now)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if err := p.store.UpsertCache(ctx, current); err != nil {
		return OutcomeIgnored, fmt.Errorf("failed to update cached presence: %w", err)
	}

	if !p.gate.Online() {
		return OutcomeSuppressed, nil
	}

	if !eligible {
		p.logger.Debug("Presence change throttled",
			zap.Uint64("accountID", snapshot.AccountID),
			zap.String("state", snapshot.State.String()))
		return OutcomeThrottled, nil
	}

	if err := p.store.RecordNotify(ctx, snapshot.AccountID, now); err != nil {
		return OutcomeIgnored, fmt.Errorf("failed to record notification: %w", err)
	}

	_, err = p.fanout.Deliver(ctx, &Notification{
		ChatUserID: link.ChatUserID,
		Current:    current,
		Previous:   previous,
	})

	return OutcomeNotified, err
}
