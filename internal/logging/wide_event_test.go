package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichWithoutEventIsNoop(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		EnrichRun(ctx, "run", "in", "out")
		EnrichError(ctx, errors.New("boom"))
		Emit(ctx)
	})
	assert.Empty(t, GetTraceID(ctx))
}

func TestEnrichRun(t *testing.T) {
	event := NewWideEvent("ingestion.run")
	ctx := WithContext(context.Background(), event)

	EnrichRun(ctx, "run-1", "data.csv", "out.sql")
	EnrichRun(ctx, "", "data.csv", "out2.sql")
	EnrichPhase(ctx, "COMPLETE")
	EnrichWorkers(ctx, 4)
	EnrichDuration(ctx, 1500*time.Millisecond)
	EnrichError(ctx, nil)
	EnrichMetadata(ctx, "rows", 10)

	require.Same(t, event, FromContext(ctx))
	assert.Equal(t, event.TraceID, GetTraceID(ctx))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, "out2.sql", event.OutputPath)
	assert.Equal(t, "COMPLETE", event.Phase)
	assert.Equal(t, 4, event.Workers)
	assert.Equal(t, int64(1500), event.DurationMs)
	assert.Empty(t, event.Error)
	assert.Equal(t, 10, event.Metadata["rows"])

	EnrichError(ctx, errors.New("disk full"))
	assert.Equal(t, "disk full", event.Error)
	assert.NotPanics(t, func() { Emit(ctx) })
}
