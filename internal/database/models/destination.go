package models

import (
	"context"
	"fmt"

	"github.com/robalyx/presencerelay/internal/database/dbretry"
	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// DestinationModel handles database operations for per-guild notification channels.
type DestinationModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewDestination creates a DestinationModel with database access.
func NewDestination(db *bun.DB, logger *zap.Logger) *DestinationModel {
	return &DestinationModel{
		db:     db,
		logger: logger.Named("db_destination"),
	}
}

// Save creates or overwrites the destination of a guild.
func (r *DestinationModel) Save(ctx context.Context, destination *types.DestinationConfig) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().Model(destination).
			On("CONFLICT (guild_id) DO UPDATE").
			Set("channel_id = EXCLUDED.channel_id").
			Set("created_at = EXCLUDED.created_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save destination: %w (guildID=%d)", err, destination.GuildID)
		}

		return nil
	})
}

// Delete removes the destination of a guild. Returns whether a row was removed.
func (r *DestinationModel) Delete(ctx context.Context, guildID uint64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := r.db.NewDelete().Model((*types.DestinationConfig)(nil)).
			Where("guild_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete destination: %w (guildID=%d)", err, guildID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to read affected rows: %w", err)
		}

		return affected > 0, nil
	})
}

// List returns all configured destinations.
func (r *DestinationModel) List(ctx context.Context) ([]*types.DestinationConfig, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.DestinationConfig, error) {
		var destinations []*types.DestinationConfig

		err := r.db.NewSelect().Model(&destinations).
			Order("guild_id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list destinations: %w", err)
		}

		return destinations, nil
	})
}
