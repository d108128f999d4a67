package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robalyx/presencerelay/internal/database/dbretry"
	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RateLimitModel handles database operations for notification cadence bookkeeping.
type RateLimitModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRateLimit creates a RateLimitModel with database access.
func NewRateLimit(db *bun.DB, logger *zap.Logger) *RateLimitModel {
	return &RateLimitModel{
		db:     db,
		logger: logger.Named("db_ratelimit"),
	}
}

// Get retrieves the rate limit record of an account.
// Returns ErrRateLimitNotFound if the account was never notified about.
func (r *RateLimitModel) Get(ctx context.Context, accountID uint64) (*types.RateLimitRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.RateLimitRecord, error) {
		var record types.RateLimitRecord

		err := r.db.NewSelect().Model(&record).
			Where("external_account_id = ?", accountID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrRateLimitNotFound
			}
			return nil, fmt.Errorf("failed to get rate limit: %w (accountID=%d)", err, accountID)
		}

		return &record, nil
	})
}

// Record marks a notification as sent at the given unix time.
// The counter is incremented by the database itself so concurrent writers cannot lose updates.
func (r *RateLimitModel) Record(ctx context.Context, accountID uint64, notifiedAt int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		record := &types.RateLimitRecord{
			ExternalAccountID: accountID,
			LastNotifiedAt:    notifiedAt,
			NotifyCount:       1,
		}

		_, err := r.db.NewInsert().Model(record).
			ModelTableExpr("rate_limit_records").
			On("CONFLICT (external_account_id) DO UPDATE").
			Set("last_notified_at = EXCLUDED.last_notified_at").
			Set("notify_count = rate_limit_records.notify_count + 1").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to record notification: %w (accountID=%d)", err, accountID)
		}

		return nil
	})
}
