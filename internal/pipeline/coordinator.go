package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/logger"
	"github.com/blagoySimandov/nem12ingest/internal/logging"
	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/blagoySimandov/nem12ingest/internal/nem12"
	"github.com/blagoySimandov/nem12ingest/internal/script"
	"golang.org/x/sync/errgroup"
)

const DefaultQueueSize = 50

var (
	ErrInputUnavailable = errors.New("input file unavailable")
	ErrInputRead        = errors.New("failed to read input file")
	ErrOutputWrite      = errors.New("failed to write output script")
	ErrNoOutputPath     = errors.New("output path is required")
	ErrAlreadyRun       = errors.New("coordinator has already run")
)

type BlockParser interface {
	Parse(b nem12.Block) *nem12.ParseResult
}

type Config struct {
	RunID      string
	OutputPath string
	Workers    int
	QueueSize  int
}

type Option func(*Coordinator)

func WithParser(p BlockParser) Option {
	return func(c *Coordinator) {
		c.parser = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// task is one queue entry: either a block to parse or a shutdown signal.
type task struct {
	block    nem12.Block
	shutdown bool
}

// Coordinator runs a single ingestion: one framer feeding a bounded queue,
// a fixed pool of parsing workers, and one writer that owns the output file.
type Coordinator struct {
	config  Config
	parser  BlockParser
	log     *slog.Logger
	phase   atomic.Int32
	started atomic.Bool
	stats   Stats
}

func NewCoordinator(config Config, opts ...Option) *Coordinator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}

	c := &Coordinator{
		config: config,
		parser: nem12.NewParser(),
		log:    logger.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Config() Config {
	return c.config
}

func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Coordinator) Stats() *Stats {
	return &c.stats
}

// Run processes inputPath into the configured output script. The input is
// opened before any worker starts, so an unreadable path returns
// ErrInputUnavailable without side effects. Read and write failures during the
// run are returned only after every worker has exited.
func (c *Coordinator) Run(ctx context.Context, inputPath string) (*models.RunStats, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	if c.config.OutputPath == "" {
		return nil, ErrNoOutputPath
	}

	input, err := openInput(inputPath)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	event := logging.NewWideEvent("ingestion.run")
	if traceID := logging.GetTraceID(ctx); traceID != "" {
		event.TraceID = traceID
	}
	ctx = logging.WithContext(ctx, event)
	logging.EnrichRun(ctx, c.config.RunID, inputPath, c.config.OutputPath)
	logging.EnrichWorkers(ctx, c.config.Workers)
	start := time.Now()

	err = c.run(ctx, input)

	stats := c.stats.Snapshot()
	logging.EnrichPhase(ctx, c.Phase().String())
	logging.EnrichDuration(ctx, time.Since(start))
	logging.EnrichMetadata(ctx, "stats", stats)
	logging.EnrichError(ctx, err)
	logging.Emit(ctx)

	return stats, err
}

func (c *Coordinator) run(ctx context.Context, input io.Reader) error {
	queue := make(chan task, c.config.QueueSize)
	results := make(chan []models.MeterReading, c.config.Workers)
	writer := script.NewWriter(c.config.OutputPath)

	c.setPhase(PhaseWorkersStarting)

	writeDone := make(chan error, 1)
	go func() {
		writeDone <- c.write(writer, results)
	}()

	var workers errgroup.Group
	for i := 0; i < c.config.Workers; i++ {
		i := i
		workers.Go(func() error {
			return c.work(i, queue, results)
		})
	}

	c.setPhase(PhaseStreaming)
	frameErr := c.stream(ctx, input, queue)

	c.setPhase(PhaseDraining)
	workerErr := workers.Wait()
	close(results)
	writeErr := <-writeDone

	c.setPhase(PhaseComplete)
	return errors.Join(frameErr, workerErr, writeErr)
}

// stream frames blocks into the queue and then always delivers exactly one
// shutdown signal per worker, whether framing finished, failed or was cancelled.
func (c *Coordinator) stream(ctx context.Context, input io.Reader, queue chan<- task) error {
	err := c.frame(ctx, input, queue)
	for i := 0; i < c.config.Workers; i++ {
		queue <- task{shutdown: true}
		c.stats.ShutdownsSent.Add(1)
	}
	close(queue)
	return err
}

func (c *Coordinator) frame(ctx context.Context, input io.Reader, queue chan<- task) error {
	framer := nem12.NewFramer(input)
	for framer.Scan() {
		c.stats.BlocksFramed.Add(1)
		if err := ctx.Err(); err != nil {
			c.log.Warn("framing cancelled", "error", err)
			return err
		}
		select {
		case queue <- task{block: framer.Block()}:
			c.stats.BlocksQueued.Add(1)
		case <-ctx.Done():
			c.log.Warn("framing cancelled", "error", ctx.Err())
			return ctx.Err()
		}
	}
	if err := framer.Err(); err != nil {
		c.log.Error("framing aborted", "error", err)
		return fmt.Errorf("%w: %w", ErrInputRead, err)
	}
	return nil
}

// work parses blocks until it receives its shutdown signal.
func (c *Coordinator) work(id int, queue <-chan task, results chan<- []models.MeterReading) error {
	for t := range queue {
		if t.shutdown {
			c.stats.ShutdownsConsumed.Add(1)
			c.log.Debug("worker stopped", "worker", id)
			return nil
		}

		result := c.parser.Parse(t.block)
		c.stats.BlocksParsed.Add(1)
		c.stats.LinesSkipped.Add(int64(result.Skipped))
		c.stats.Duplicates.Add(int64(result.Duplicates))

		if len(result.Readings) > 0 {
			results <- result.Readings
		}
	}
	return fmt.Errorf("worker %d: queue closed before shutdown signal", id)
}

// write is the only owner of the output file. After the first failure it
// keeps draining results without writing so workers never block on it.
func (c *Coordinator) write(writer *script.Writer, results <-chan []models.MeterReading) error {
	var writeErr error
	for readings := range results {
		if writeErr != nil {
			continue
		}
		if err := writer.Write(readings); err != nil {
			writeErr = fmt.Errorf("%w: %w", ErrOutputWrite, err)
			c.log.Error("output write failed, discarding remaining statements", "path", writer.Path(), "error", err)
			continue
		}
		c.stats.Statements.Add(1)
		c.stats.RowsWritten.Add(int64(len(readings)))
	}

	if err := writer.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return writeErr
}

func (c *Coordinator) setPhase(p Phase) {
	c.phase.Store(int32(p))
	c.log.Debug("pipeline phase", "phase", p.String(), "run_id", c.config.RunID)
}

func openInput(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputUnavailable, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	return f, nil
}
