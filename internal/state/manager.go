package state

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/logger"
	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/blagoySimandov/nem12ingest/internal/pipeline"
	"github.com/blagoySimandov/nem12ingest/internal/script"
	"github.com/google/uuid"
)

type ManagerConfig struct {
	OutputDir    string
	OutputPrefix string
	Workers      int
	QueueSize    int
}

// Manager starts ingestion runs in the background and records their outcome.
type Manager struct {
	store  Store
	config ManagerConfig
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewManager(store Store, config ManagerConfig) *Manager {
	return &Manager{
		store:  store,
		config: config,
		now:    time.Now,
	}
}

func (m *Manager) GenerateRunID() string {
	return uuid.New().String()
}

// Start validates inputPath, records a pending run and processes it
// asynchronously. An unusable input returns pipeline.ErrInputUnavailable and
// records nothing.
func (m *Manager) Start(ctx context.Context, inputPath string) (*models.IngestionRun, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrInputUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", pipeline.ErrInputUnavailable, inputPath)
	}

	runID := m.GenerateRunID()
	now := m.now()
	run := &models.IngestionRun{
		RunID:      runID,
		InputPath:  inputPath,
		OutputPath: script.OutputPath(m.config.OutputDir, m.config.OutputPrefix+"_"+runID[:8], now),
		Status:     models.RunStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.execute(context.Background(), run)
	}()

	return run, nil
}

func (m *Manager) execute(ctx context.Context, run *models.IngestionRun) {
	run = cloneRun(run)
	run.Status = models.RunStatusRunning
	run.UpdatedAt = m.now()
	if err := m.store.UpdateRun(ctx, run); err != nil {
		logger.Log.Error("failed to mark run as running", "run_id", run.RunID, "error", err)
	}

	coordinator := pipeline.NewCoordinator(pipeline.Config{
		RunID:      run.RunID,
		OutputPath: run.OutputPath,
		Workers:    m.config.Workers,
		QueueSize:  m.config.QueueSize,
	})
	stats, err := coordinator.Run(ctx, run.InputPath)

	finished := m.now()
	run.Stats = stats
	run.FinishedAt = &finished
	run.UpdatedAt = finished
	run.Status = models.RunStatusCompleted
	if err != nil {
		msg := err.Error()
		run.Error = &msg
		run.Status = models.RunStatusFailed
	}

	if err := m.store.UpdateRun(ctx, run); err != nil {
		logger.Log.Error("failed to record run result", "run_id", run.RunID, "error", err)
	}
}

func (m *Manager) Get(ctx context.Context, runID string) (*models.IngestionRun, error) {
	return m.store.GetRun(ctx, runID)
}

func (m *Manager) List(ctx context.Context, offset, limit int) ([]*models.IngestionRun, error) {
	return m.store.ListRuns(ctx, offset, limit)
}

// Wait blocks until every started run has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) Store() Store {
	return m.store
}
