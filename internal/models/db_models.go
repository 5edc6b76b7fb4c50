package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MeterReadingDB struct {
	bun.BaseModel `bun:"table:meter_readings,alias:mr"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	NMI         string    `bun:"nmi,type:varchar(10),notnull,unique:meter_readings_nmi_timestamp" json:"nmi"`
	Timestamp   time.Time `bun:"timestamp,type:timestamp,notnull,unique:meter_readings_nmi_timestamp" json:"timestamp"`
	Consumption float64   `bun:"consumption,type:numeric(10,2),notnull" json:"consumption"`
}

func (r *MeterReadingDB) ToMeterReading() MeterReading {
	return MeterReading{
		ID:          r.ID,
		NMI:         r.NMI,
		Timestamp:   r.Timestamp,
		Consumption: r.Consumption,
	}
}

func MeterReadingFromApp(reading MeterReading) *MeterReadingDB {
	return &MeterReadingDB{
		ID:          reading.ID,
		NMI:         reading.NMI,
		Timestamp:   reading.Timestamp,
		Consumption: reading.Consumption,
	}
}

type IngestionRunDB struct {
	bun.BaseModel `bun:"table:ingestion_runs,alias:ir"`

	RunID      string     `bun:"run_id,pk" json:"run_id"`
	InputPath  string     `bun:"input_path,notnull" json:"input_path"`
	OutputPath string     `bun:"output_path,notnull" json:"output_path"`
	Status     RunStatus  `bun:"status,notnull,default:'PENDING'" json:"status"`
	Stats      *RunStats  `bun:"stats,type:jsonb" json:"stats,omitempty"`
	Error      *string    `bun:"error" json:"error,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
	FinishedAt *time.Time `bun:"finished_at" json:"finished_at,omitempty"`
}

func (r *IngestionRunDB) ToIngestionRun() *IngestionRun {
	return &IngestionRun{
		RunID:      r.RunID,
		InputPath:  r.InputPath,
		OutputPath: r.OutputPath,
		Status:     r.Status,
		Stats:      r.Stats,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		FinishedAt: r.FinishedAt,
	}
}

func IngestionRunFromApp(run *IngestionRun) *IngestionRunDB {
	return &IngestionRunDB{
		RunID:      run.RunID,
		InputPath:  run.InputPath,
		OutputPath: run.OutputPath,
		Status:     run.Status,
		Stats:      run.Stats,
		Error:      run.Error,
		CreatedAt:  run.CreatedAt,
		UpdatedAt:  run.UpdatedAt,
		FinishedAt: run.FinishedAt,
	}
}
