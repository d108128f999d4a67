package types

import (
	"errors"

	"github.com/robalyx/presencerelay/internal/database/types/enum"
)

// ErrCacheNotFound is returned when no presence has been observed for an account yet.
var ErrCacheNotFound = errors.New("presence cache entry not found")

// PresenceCacheEntry is the last observed presence of a Steam account.
// It is refreshed on every admitted event, whether or not a notification fires.
type PresenceCacheEntry struct {
	ExternalAccountID uint64             `bun:",pk"`
	DisplayName       string             `bun:",notnull"`
	ActivityName      string             `bun:",notnull"`
	ActivityID        uint64             `bun:",notnull"`
	PresenceState     enum.PresenceState `bun:",notnull"`
	LastUpdated       int64              `bun:",notnull"`
}

// InGame reports whether the entry carries an activity.
func (p *PresenceCacheEntry) InGame() bool {
	return p.ActivityName != ""
}

// SameObservation reports whether two entries agree on every field used for change detection.
func (p *PresenceCacheEntry) SameObservation(other *PresenceCacheEntry) bool {
	if p == nil || other == nil {
		return false
	}
	return p.PresenceState == other.PresenceState && p.ActivityName == other.ActivityName
}
