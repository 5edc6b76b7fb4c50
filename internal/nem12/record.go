// Package nem12 frames and parses the subset of the NEM12 interval metering
// format needed to compute daily consumption: 200 (NMI data details) and
// 300 (interval data) records. Every other record type is ignored.
package nem12

import (
	"errors"
	"strings"
)

type RecordType string

const (
	RecordHeader   RecordType = "100"
	RecordNMI      RecordType = "200"
	RecordInterval RecordType = "300"
	RecordQuality  RecordType = "400"
	RecordB2B      RecordType = "500"
	RecordEnd      RecordType = "900"
)

const (
	minutesPerDay = 24 * 60

	nmiField      = 1
	intervalField = 8
	dateField     = 1
	firstReading  = 2

	dateLayout = "20060102"
)

var (
	ErrMalformedHeader   = errors.New("malformed 200 record")
	ErrMalformedInterval = errors.New("malformed 300 record")
	ErrDuplicateReading  = errors.New("duplicate nmi and date within block")
	ErrMissingHeader     = errors.New("no valid 200 record for block")
)

// Block is a 200 line followed by the 300 lines that belong to it.
type Block struct {
	Lines []string
}

func (b Block) Header() string {
	if len(b.Lines) == 0 {
		return ""
	}
	return b.Lines[0]
}

func (b Block) Intervals() []string {
	if len(b.Lines) < 2 {
		return nil
	}
	return b.Lines[1:]
}

// HeaderContext is the meter and sampling interval declared by a 200 record.
type HeaderContext struct {
	NMI             string
	IntervalMinutes int
}

// IntervalsPerDay is the number of readings a full 300 record carries.
func (h HeaderContext) IntervalsPerDay() int {
	return minutesPerDay / h.IntervalMinutes
}

// recordType returns the leading field of a line.
func recordType(line string) RecordType {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return RecordType(strings.TrimSpace(line[:i]))
	}
	return RecordType(strings.TrimSpace(line))
}
