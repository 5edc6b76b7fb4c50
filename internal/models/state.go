package models

import "time"

type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

type RunStats struct {
	BlocksFramed      int64 `json:"blocks_framed"`
	BlocksQueued      int64 `json:"blocks_queued"`
	RowsWritten       int64 `json:"rows_written"`
	LinesSkipped      int64 `json:"lines_skipped"`
	Duplicates        int64 `json:"duplicates"`
	Statements        int64 `json:"statements"`
	ShutdownsSent     int64 `json:"shutdowns_sent"`
	ShutdownsConsumed int64 `json:"shutdowns_consumed"`
}

type IngestionRun struct {
	RunID      string     `json:"run_id"`
	InputPath  string     `json:"input_path"`
	OutputPath string     `json:"output_path"`
	Status     RunStatus  `json:"status"`
	Stats      *RunStats  `json:"stats,omitempty"`
	Error      *string    `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type IngestionRequest struct {
	FilePath string `json:"file_path"`
}

type IngestionResponse struct {
	RunID      string `json:"run_id"`
	OutputPath string `json:"output_path"`
	Message    string `json:"message"`
}
