package migrations

import (
	"context"
	"fmt"

	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*models.MeterReadingDB)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create meter_readings table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*models.MeterReadingDB)(nil)).
			IfExists().
			Exec(ctx)
		return err
	})
}
