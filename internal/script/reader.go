package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/google/uuid"
)

var ErrMalformedStatement = errors.New("malformed insert statement")

const tupleArity = 4

// ParseStatement reads back the literal values of a statement produced by Render.
func ParseStatement(line string) ([]models.MeterReading, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, insertPrefix) {
		return nil, fmt.Errorf("%w: unexpected prefix", ErrMalformedStatement)
	}
	body, ok := strings.CutSuffix(line[len(insertPrefix):], ";")
	if !ok {
		return nil, fmt.Errorf("%w: missing terminating semicolon", ErrMalformedStatement)
	}

	tuples, err := splitTuples(body)
	if err != nil {
		return nil, err
	}

	readings := make([]models.MeterReading, 0, len(tuples))
	for _, values := range tuples {
		reading, err := readingFromValues(values)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// splitTuples walks "(a, 'b', ...), (...)" honouring quoted strings with
// doubled quotes as escapes. Whitespace outside quotes is dropped.
func splitTuples(body string) ([][]string, error) {
	var (
		tuples  [][]string
		current []string
		value   strings.Builder
		inTuple bool
		quoted  bool
	)

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case quoted:
			if c == '\'' {
				if i+1 < len(body) && body[i+1] == '\'' {
					value.WriteByte('\'')
					i++
					continue
				}
				quoted = false
				continue
			}
			value.WriteByte(c)
		case c == '\'' && inTuple:
			quoted = true
		case c == '(' && !inTuple:
			inTuple = true
			current = nil
			value.Reset()
		case c == ',' && inTuple:
			current = append(current, strings.TrimSpace(value.String()))
			value.Reset()
		case c == ')' && inTuple:
			current = append(current, strings.TrimSpace(value.String()))
			value.Reset()
			tuples = append(tuples, current)
			inTuple = false
		case c == ',' || c == ' ':
		case inTuple:
			value.WriteByte(c)
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedStatement, c, i)
		}
	}

	if quoted || inTuple {
		return nil, fmt.Errorf("%w: unterminated tuple", ErrMalformedStatement)
	}
	if len(tuples) == 0 {
		return nil, fmt.Errorf("%w: no values", ErrMalformedStatement)
	}
	return tuples, nil
}

func readingFromValues(values []string) (models.MeterReading, error) {
	if len(values) != tupleArity {
		return models.MeterReading{}, fmt.Errorf("%w: expected %d values, got %d", ErrMalformedStatement, tupleArity, len(values))
	}

	id, err := uuid.Parse(values[0])
	if err != nil {
		return models.MeterReading{}, fmt.Errorf("%w: id: %v", ErrMalformedStatement, err)
	}
	ts, err := time.Parse(timestampLayout, values[2])
	if err != nil {
		return models.MeterReading{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedStatement, err)
	}
	consumption, err := strconv.ParseFloat(values[3], 64)
	if err != nil {
		return models.MeterReading{}, fmt.Errorf("%w: consumption: %v", ErrMalformedStatement, err)
	}

	return models.MeterReading{
		ID:          id,
		NMI:         values[1],
		Timestamp:   ts,
		Consumption: consumption,
	}, nil
}

// Reader iterates the statements of a script, one per line.
type Reader struct {
	scanner  *bufio.Scanner
	readings []models.MeterReading
	line     int
	err      error
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	return &Reader{scanner: scanner}
}

func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}
		readings, err := ParseStatement(text)
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.line, err)
			return false
		}
		r.readings = readings
		return true
	}
	r.err = r.scanner.Err()
	return false
}

func (r *Reader) Readings() []models.MeterReading {
	return r.readings
}

func (r *Reader) Err() error {
	return r.err
}
