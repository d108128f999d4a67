package migrations

import (
	"context"
	"fmt"

	"github.com/robalyx/presencerelay/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		for _, model := range []any{
			(*types.LinkRecord)(nil),
			(*types.DestinationConfig)(nil),
			(*types.PresenceCacheEntry)(nil),
			(*types.RateLimitRecord)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for _, model := range []any{
			(*types.RateLimitRecord)(nil),
			(*types.PresenceCacheEntry)(nil),
			(*types.DestinationConfig)(nil),
			(*types.LinkRecord)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table for %T: %w", model, err)
			}
		}

		return nil
	})
}
