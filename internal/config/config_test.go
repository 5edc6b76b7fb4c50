package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "SERVER_ADDR", "OUTPUT_DIR", "OUTPUT_FILE_PREFIX", "INGEST_WORKERS", "INGEST_QUEUE_SIZE", "LOAD_BATCH_SIZE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "meter_readings_insert", cfg.OutputPrefix)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 50, cfg.QueueSize)
	assert.Equal(t, 500, cfg.LoadBatchSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("INGEST_WORKERS", "3")
	t.Setenv("INGEST_QUEUE_SIZE", "7")

	cfg := Load()

	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 7, cfg.QueueSize)
}

func TestGetEnvIntRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"not a number", "abc", 9},
		{"zero", "0", 9},
		{"negative", "-4", 9},
		{"valid", "12", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			assert.Equal(t, tt.want, getEnvInt("TEST_INT", 9))
		})
	}
}
