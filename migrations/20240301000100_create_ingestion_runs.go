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
			Model((*models.IngestionRunDB)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create ingestion_runs table: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*models.IngestionRunDB)(nil)).
			Index("idx_ingestion_runs_created_at").
			Column("created_at").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create created_at index: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*models.IngestionRunDB)(nil)).
			IfExists().
			Exec(ctx)
		return err
	})
}
