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

// PresenceModel handles database operations for the last observed presence of accounts.
type PresenceModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPresence creates a PresenceModel with database access.
func NewPresence(db *bun.DB, logger *zap.Logger) *PresenceModel {
	return &PresenceModel{
		db:     db,
		logger: logger.Named("db_presence"),
	}
}

// Get retrieves the cached presence of an account.
// Returns ErrCacheNotFound if nothing has been observed yet.
func (r *PresenceModel) Get(ctx context.Context, accountID uint64) (*types.PresenceCacheEntry, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.PresenceCacheEntry, error) {
		var entry types.PresenceCacheEntry

		err := r.db.NewSelect().Model(&entry).
			Where("external_account_id = ?", accountID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrCacheNotFound
			}
			return nil, fmt.Errorf("failed to get presence: %w (accountID=%d)", err, accountID)
		}

		return &entry, nil
	})
}

// Upsert stores the latest observed presence of an account.
func (r *PresenceModel) Upsert(ctx context.Context, entry *types.PresenceCacheEntry) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().Model(entry).
			On("CONFLICT (external_account_id) DO UPDATE").
			Set("display_name = EXCLUDED.display_name").
			Set("activity_name = EXCLUDED.activity_name").
			Set("activity_id = EXCLUDED.activity_id").
			Set("presence_state = EXCLUDED.presence_state").
			Set("last_updated = EXCLUDED.last_updated").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert presence: %w (accountID=%d)", err, entry.ExternalAccountID)
		}

		return nil
	})
}
