// Package loader applies a generated insert script to the meter_readings
// table. It runs after ingestion has finished and is independent of it.
package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/blagoySimandov/nem12ingest/internal/logger"
	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/blagoySimandov/nem12ingest/internal/script"
	"github.com/uptrace/bun"
)

const DefaultBatchSize = 500

type Inserter interface {
	InsertReadings(ctx context.Context, rows []*models.MeterReadingDB) (int64, error)
}

// BunInserter skips rows that collide on (nmi, timestamp), so reloading a
// script is harmless.
type BunInserter struct {
	db bun.IDB
}

func NewBunInserter(db bun.IDB) *BunInserter {
	return &BunInserter{db: db}
}

func (i *BunInserter) InsertReadings(ctx context.Context, rows []*models.MeterReadingDB) (int64, error) {
	res, err := i.db.NewInsert().
		Model(&rows).
		On("CONFLICT (nmi, timestamp) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert meter readings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type Result struct {
	Statements int64 `json:"statements"`
	Rows       int64 `json:"rows"`
	Inserted   int64 `json:"inserted"`
}

type Loader struct {
	inserter  Inserter
	batchSize int
}

func NewLoader(inserter Inserter, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{inserter: inserter, batchSize: batchSize}
}

// Load reads statements from r and inserts their rows in batches. Rows
// already inserted stay inserted when a later statement fails to parse.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Result, error) {
	result := &Result{}
	batch := make([]*models.MeterReadingDB, 0, l.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := l.inserter.InsertReadings(ctx, batch)
		if err != nil {
			return err
		}
		result.Inserted += n
		logger.Log.Debug("inserted batch", "rows", len(batch), "inserted", n)
		batch = make([]*models.MeterReadingDB, 0, l.batchSize)
		return nil
	}

	reader := script.NewReader(r)
	for reader.Scan() {
		result.Statements++
		for _, reading := range reader.Readings() {
			result.Rows++
			batch = append(batch, models.MeterReadingFromApp(reading))
			if len(batch) >= l.batchSize {
				if err := flush(); err != nil {
					return result, err
				}
			}
		}
	}
	if err := reader.Err(); err != nil {
		if flushErr := flush(); flushErr != nil {
			return result, flushErr
		}
		return result, err
	}

	if err := flush(); err != nil {
		return result, err
	}
	return result, nil
}
