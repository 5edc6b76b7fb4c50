package nem12

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/logger"
	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/google/uuid"
)

type ParseResult struct {
	Readings   []models.MeterReading
	Skipped    int
	Duplicates int
}

// Parser turns a block into daily consumption readings. Malformed lines are
// logged and skipped; Parse never fails as a whole.
type Parser struct {
	log   *slog.Logger
	newID func() uuid.UUID
}

func NewParser() *Parser {
	return &Parser{
		log:   logger.Log,
		newID: uuid.New,
	}
}

func (p *Parser) Parse(b Block) *ParseResult {
	result := &ParseResult{}

	header, err := ParseHeader(b.Header())
	if err != nil {
		p.log.Warn("skipping block", "line", b.Header(), "error", err)
		result.Skipped = len(b.Intervals())
		for _, line := range b.Intervals() {
			p.log.Warn("skipping 300 record", "line", line, "error", ErrMissingHeader)
		}
		return result
	}

	seen := make(map[models.ReadingKey]struct{}, len(b.Intervals()))
	for _, line := range b.Intervals() {
		reading, err := p.parseInterval(header, line)
		if err != nil {
			p.log.Warn("skipping 300 record", "nmi", header.NMI, "line", line, "error", err)
			result.Skipped++
			continue
		}

		key := reading.Key()
		if _, ok := seen[key]; ok {
			p.log.Warn("skipping 300 record", "nmi", header.NMI, "date", reading.Timestamp.Format(time.DateOnly), "error", ErrDuplicateReading)
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		result.Readings = append(result.Readings, reading)
	}

	return result
}

func (p *Parser) parseInterval(header HeaderContext, line string) (models.MeterReading, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) <= dateField {
		return models.MeterReading{}, fmt.Errorf("%w: missing interval date", ErrMalformedInterval)
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(fields[dateField]))
	if err != nil {
		return models.MeterReading{}, fmt.Errorf("%w: invalid interval date %q", ErrMalformedInterval, fields[dateField])
	}

	end := firstReading + header.IntervalsPerDay()
	if end > len(fields) {
		end = len(fields)
	}

	consumption, err := Consumption(fields[firstReading:end])
	if err != nil {
		return models.MeterReading{}, err
	}

	return models.MeterReading{
		ID:          p.newID(),
		NMI:         header.NMI,
		Timestamp:   date,
		Consumption: consumption,
	}, nil
}

// ParseHeader extracts the NMI and interval length from a 200 record. The
// interval must be a positive divisor of 1440 minutes.
func ParseHeader(line string) (HeaderContext, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if RecordType(strings.TrimSpace(fields[0])) != RecordNMI {
		return HeaderContext{}, fmt.Errorf("%w: not a 200 record", ErrMalformedHeader)
	}
	if len(fields) <= intervalField {
		return HeaderContext{}, fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformedHeader, intervalField+1, len(fields))
	}

	interval, err := strconv.Atoi(strings.TrimSpace(fields[intervalField]))
	if err != nil {
		return HeaderContext{}, fmt.Errorf("%w: invalid interval length %q", ErrMalformedHeader, fields[intervalField])
	}
	if interval <= 0 || minutesPerDay%interval != 0 {
		return HeaderContext{}, fmt.Errorf("%w: interval length %d does not divide a day", ErrMalformedHeader, interval)
	}

	return HeaderContext{
		NMI:             strings.TrimSpace(fields[nmiField]),
		IntervalMinutes: interval,
	}, nil
}

// Consumption sums interval readings and rounds the total to two decimal
// places. Rounding is done on the exact binary value of the sum, ties to even.
func Consumption(values []string) (float64, error) {
	var sum float64
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: invalid reading %q", ErrMalformedInterval, v)
		}
		sum += f
	}
	return Round2(sum), nil
}

func Round2(v float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return rounded
}
