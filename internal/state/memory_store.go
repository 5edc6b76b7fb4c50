package state

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blagoySimandov/nem12ingest/internal/models"
)

// MemoryStore keeps runs for the lifetime of the process.
type MemoryStore struct {
	runs map[string]*models.IngestionRun
	mu   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*models.IngestionRun)}
}

func (s *MemoryStore) CreateRun(ctx context.Context, run *models.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.RunID]; ok {
		return fmt.Errorf("run %s already exists", run.RunID)
	}
	s.runs[run.RunID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*models.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return cloneRun(run), nil
}

func (s *MemoryStore) ListRuns(ctx context.Context, offset, limit int) ([]*models.IngestionRun, error) {
	s.mu.RLock()
	runs := make([]*models.IngestionRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, cloneRun(run))
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(runs) {
			return []*models.IngestionRun{}, nil
		}
		runs = runs[offset:]
	}
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) UpdateRun(ctx context.Context, run *models.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.RunID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.RunID)
	}
	s.runs[run.RunID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneRun(run *models.IngestionRun) *models.IngestionRun {
	c := *run
	if run.Stats != nil {
		stats := *run.Stats
		c.Stats = &stats
	}
	if run.Error != nil {
		msg := *run.Error
		c.Error = &msg
	}
	if run.FinishedAt != nil {
		finished := *run.FinishedAt
		c.FinishedAt = &finished
	}
	return &c
}
