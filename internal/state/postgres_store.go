package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/db"
	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/uptrace/bun"
)

type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	store := &PostgresStore{db: db.NewBunPostgresClient(connectionString)}

	ctx := context.Background()
	if err := store.InitializeDatabase(ctx); err != nil {
		store.db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) InitializeDatabase(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*models.IngestionRunDB)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create ingestion_runs table: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*models.IngestionRunDB)(nil)).
		Index("idx_ingestion_runs_created_at").
		Column("created_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.IngestionRun) error {
	_, err := s.db.NewInsert().
		Model(models.IngestionRunFromApp(run)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*models.IngestionRun, error) {
	var run models.IngestionRunDB
	err := s.db.NewSelect().
		Model(&run).
		Where("run_id = ?", runID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run.ToIngestionRun(), nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, offset, limit int) ([]*models.IngestionRun, error) {
	var rows []*models.IngestionRunDB
	query := s.db.NewSelect().
		Model(&rows).
		Order("created_at DESC")

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*models.IngestionRun, len(rows))
	for i, row := range rows {
		runs[i] = row.ToIngestionRun()
	}
	return runs, nil
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.IngestionRun) error {
	res, err := s.db.NewUpdate().
		Model((*models.IngestionRunDB)(nil)).
		Set("status = ?", run.Status).
		Set("stats = ?", run.Stats).
		Set("error = ?", run.Error).
		Set("finished_at = ?", run.FinishedAt).
		Set("updated_at = ?", time.Now()).
		Where("run_id = ?", run.RunID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.RunID)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
