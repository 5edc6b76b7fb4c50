package models

import (
	"time"

	"github.com/google/uuid"
)

// MeterReading is one day's consumption total for a metering point.
// Timestamp carries the calendar date only; the time of day is always midnight UTC.
type MeterReading struct {
	ID          uuid.UUID `json:"id"`
	NMI         string    `json:"nmi"`
	Timestamp   time.Time `json:"timestamp"`
	Consumption float64   `json:"consumption"`
}

// ReadingKey identifies a reading for deduplication purposes.
type ReadingKey struct {
	NMI  string
	Date time.Time
}

func (r MeterReading) Key() ReadingKey {
	return ReadingKey{NMI: r.NMI, Date: r.Timestamp}
}
