package service

import (
	"context"
	"errors"
	"time"

	"github.com/robalyx/presencerelay/internal/database/models"
	"github.com/robalyx/presencerelay/internal/database/types"
	"go.uber.org/zap"
)

// LinkService is the store consumed by the presence pipeline and the linking commands.
// It combines links, destinations, the presence cache and rate limit bookkeeping.
type LinkService struct {
	link        *models.LinkModel
	destination *models.DestinationModel
	presence    *models.PresenceModel
	rateLimit   *models.RateLimitModel
	logger      *zap.Logger
}

// NewLink creates a new link service.
func NewLink(
	link *models.LinkModel,
	destination *models.DestinationModel,
	presence *models.PresenceModel,
	rateLimit *models.RateLimitModel,
	logger *zap.Logger,
) *LinkService {
	return &LinkService{
		link:        link,
		destination: destination,
		presence:    presence,
		rateLimit:   rateLimit,
		logger:      logger.Named("link_service"),
	}
}

// Link binds a Discord user to a Steam account.
// Fails with ErrAlreadyLinkedSelf or ErrAlreadyLinkedOther without touching existing records.
func (s *LinkService) Link(ctx context.Context, chatUserID, accountID uint64, now time.Time) (*types.LinkRecord, error) {
	record := &types.LinkRecord{
		ChatUserID:        chatUserID,
		ExternalAccountID: accountID,
		LinkedAt:          now.Unix(),
	}

	if err := s.link.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Linked account",
		zap.Uint64("chatUserID", chatUserID),
		zap.Uint64("accountID", accountID))

	return record, nil
}

// Unlink removes the link of a Discord user and returns the removed record.
func (s *LinkService) Unlink(ctx context.Context, chatUserID uint64) (*types.LinkRecord, error) {
	record, err := s.link.DeleteByChatUser(ctx, chatUserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Unlinked account",
		zap.Uint64("chatUserID", chatUserID),
		zap.Uint64("accountID", record.ExternalAccountID))

	return record, nil
}

// LookupByChatUser returns the link of a Discord user or ErrLinkNotFound.
func (s *LinkService) LookupByChatUser(ctx context.Context, chatUserID uint64) (*types.LinkRecord, error) {
	return s.link.GetByChatUser(ctx, chatUserID)
}

// LookupByExternalAccount returns the link of a Steam account or ErrLinkNotFound.
func (s *LinkService) LookupByExternalAccount(ctx context.Context, accountID uint64) (*types.LinkRecord, error) {
	return s.link.GetByExternalAccount(ctx, accountID)
}

// ListLinks returns every link.
func (s *LinkService) ListLinks(ctx context.Context) ([]*types.LinkRecord, error) {
	return s.link.List(ctx)
}

// SetDestination creates or overwrites the notification channel of a guild.
func (s *LinkService) SetDestination(ctx context.Context, guildID, channelID uint64, now time.Time) error {
	return s.destination.Save(ctx, &types.DestinationConfig{
		GuildID:   guildID,
		ChannelID: channelID,
		CreatedAt: now.Unix(),
	})
}

// RemoveDestination removes the notification channel of a guild.
func (s *LinkService) RemoveDestination(ctx context.Context, guildID uint64) (bool, error) {
	return s.destination.Delete(ctx, guildID)
}

// ListDestinations returns all configured notification channels.
func (s *LinkService) ListDestinations(ctx context.Context) ([]*types.DestinationConfig, error) {
	return s.destination.List(ctx)
}

// GetCache returns the last observed presence or ErrCacheNotFound.
func (s *LinkService) GetCache(ctx context.Context, accountID uint64) (*types.PresenceCacheEntry, error) {
	return s.presence.Get(ctx, accountID)
}

// UpsertCache stores the latest observed presence.
func (s *LinkService) UpsertCache(ctx context.Context, entry *types.PresenceCacheEntry) error {
	return s.presence.Upsert(ctx, entry)
}

// GetRateLimit returns the rate limit record or ErrRateLimitNotFound.
func (s *LinkService) GetRateLimit(ctx context.Context, accountID uint64) (*types.RateLimitRecord, error) {
	return s.rateLimit.Get(ctx, accountID)
}

// IsNotifyEligible reports whether a notification may be sent for the account at the given time.
// Accounts that were never notified about are always eligible.
func (s *LinkService) IsNotifyEligible(
	ctx context.Context, accountID uint64, cooldown time.Duration, now time.Time,
) (bool, error) {
	record, err := s.rateLimit.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, types.ErrRateLimitNotFound) {
			return true, nil
		}
		return false, err
	}

	return record.Eligible(now, cooldown), nil
}

// RecordNotify marks a notification as sent for the account at the given time.
func (s *LinkService) RecordNotify(ctx context.Context, accountID uint64, now time.Time) error {
	return s.rateLimit.Record(ctx, accountID, now.Unix())
}
