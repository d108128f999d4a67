// Package presence decides which Steam presence changes are relayed and delivers them.
package presence

import (
	"context"
	"time"

	"github.com/robalyx/presencerelay/internal/database/types"
)

// Store is the subset of the link store used while processing events.
type Store interface {
	LookupByExternalAccount(ctx context.Context, accountID uint64) (*types.LinkRecord, error)
	GetCache(ctx context.Context, accountID uint64) (*types.PresenceCacheEntry, error)
	UpsertCache(ctx context.Context, entry *types.PresenceCacheEntry) error
	IsNotifyEligible(ctx context.Context, accountID uint64, cooldown time.Duration, now time.Time) (bool, error)
	RecordNotify(ctx context.Context, accountID uint64, now time.Time) error
	ListDestinations(ctx context.Context) ([]*types.DestinationConfig, error)
}

// Gate reports the session view used to admit events.
type Gate interface {
	IsFriend(accountID uint64) bool
	Online() bool
}

// Notification is one relayed presence change.
type Notification struct {
	ChatUserID uint64
	Current    *types.PresenceCacheEntry
	// Previous is nil for the first observation of an account.
	Previous *types.PresenceCacheEntry
}

// Notifier delivers a notification to a channel. Returns false on any delivery failure.
type Notifier interface {
	Send(ctx context.Context, channelID uint64, notification *Notification) bool
}

// Outcome describes what happened to a processed event.
type Outcome int

const (
	// OutcomeIgnored means the account is not a friend.
	OutcomeIgnored Outcome = iota
	// OutcomeUnlinked means nobody linked the account.
	OutcomeUnlinked
	// OutcomeUnchanged means the event matched the cached presence.
	OutcomeUnchanged
	// OutcomeThrottled means the cache was updated but the account is cooling down.
	OutcomeThrottled
	// OutcomeSuppressed means the cache was updated while the session was offline.
	OutcomeSuppressed
	// OutcomeNotified means the change was relayed.
	OutcomeNotified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeUnlinked:
		return "unlinked"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeNotified:
		return "notified"
	default:
		return "unknown"
	}
}
