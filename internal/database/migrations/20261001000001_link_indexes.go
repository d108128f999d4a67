package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(
			"CREATE INDEX IF NOT EXISTS idx_link_records_linked_at ON link_records (linked_at)",
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create link index: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw("DROP INDEX IF EXISTS idx_link_records_linked_at").Exec(ctx)
		return err
	})
}
