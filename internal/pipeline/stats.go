package pipeline

import (
	"sync/atomic"

	"github.com/blagoySimandov/nem12ingest/internal/models"
)

// Stats counts what a run did. All fields are safe for concurrent use.
type Stats struct {
	BlocksFramed      atomic.Int64
	BlocksQueued      atomic.Int64
	BlocksParsed      atomic.Int64
	RowsWritten       atomic.Int64
	LinesSkipped      atomic.Int64
	Duplicates        atomic.Int64
	Statements        atomic.Int64
	ShutdownsSent     atomic.Int64
	ShutdownsConsumed atomic.Int64
}

// InFlight is the number of blocks handed to the queue that no worker has
// finished parsing yet.
func (s *Stats) InFlight() int64 {
	return s.BlocksQueued.Load() - s.BlocksParsed.Load()
}

func (s *Stats) Snapshot() *models.RunStats {
	return &models.RunStats{
		BlocksFramed:      s.BlocksFramed.Load(),
		BlocksQueued:      s.BlocksQueued.Load(),
		RowsWritten:       s.RowsWritten.Load(),
		LinesSkipped:      s.LinesSkipped.Load(),
		Duplicates:        s.Duplicates.Load(),
		Statements:        s.Statements.Load(),
		ShutdownsSent:     s.ShutdownsSent.Load(),
		ShutdownsConsumed: s.ShutdownsConsumed.Load(),
	}
}
