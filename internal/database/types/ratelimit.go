package types

import (
	"errors"
	"time"
)

// ErrRateLimitNotFound is returned when an account has never been notified about.
var ErrRateLimitNotFound = errors.New("rate limit record not found")

// RateLimitRecord tracks how often notifications were sent for a Steam account.
type RateLimitRecord struct {
	ExternalAccountID uint64 `bun:",pk"`
	LastNotifiedAt    int64  `bun:",notnull"`
	NotifyCount       int    `bun:",notnull"`
}

// Eligible reports whether the cooldown has fully elapsed at the given time.
func (r *RateLimitRecord) Eligible(now time.Time, cooldown time.Duration) bool {
	if r == nil {
		return true
	}
	return now.Unix()-r.LastNotifiedAt >= int64(cooldown/time.Second)
}
