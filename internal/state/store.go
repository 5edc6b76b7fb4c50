package state

import (
	"context"
	"errors"

	"github.com/blagoySimandov/nem12ingest/internal/models"
)

var ErrRunNotFound = errors.New("ingestion run not found")

type Store interface {
	CreateRun(ctx context.Context, run *models.IngestionRun) error
	GetRun(ctx context.Context, runID string) (*models.IngestionRun, error)
	ListRuns(ctx context.Context, offset, limit int) ([]*models.IngestionRun, error)
	UpdateRun(ctx context.Context, run *models.IngestionRun) error

	Close() error
}
