// Package script renders meter readings as SQL insert statements and reads
// them back.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/models"
)

const (
	Table           = "meter_readings"
	insertPrefix    = "INSERT INTO " + Table + " (id, nmi, timestamp, consumption) VALUES "
	timestampLayout = "2006-01-02 15:04:05"
	fileTimeLayout  = "20060102_150405"
)

var ErrNoRows = errors.New("no rows to render")

// Render builds a single INSERT statement with one tuple per reading, in order.
func Render(readings []models.MeterReading) (string, error) {
	if len(readings) == 0 {
		return "", ErrNoRows
	}

	var b strings.Builder
	b.WriteString(insertPrefix)
	for i, r := range readings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(quote(r.ID.String()))
		b.WriteString(", ")
		b.WriteString(quote(r.NMI))
		b.WriteString(", ")
		b.WriteString(quote(r.Timestamp.Format(time.DateOnly) + " 00:00:00"))
		b.WriteString(", ")
		b.WriteString(strconv.FormatFloat(r.Consumption, 'f', 2, 64))
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// OutputPath names a run's script after the time it was generated.
func OutputPath(dir, prefix string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.sql", prefix, now.Format(fileTimeLayout)))
}

// Writer appends statements to a script file. The file is opened in append
// mode on the first non-empty write, so earlier content is never replaced.
type Writer struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Path() string {
	return w.path
}

// Write renders readings and appends the statement plus a newline in a single
// write call. An empty slice is a no-op.
func (w *Writer) Write(readings []models.MeterReading) error {
	if len(readings) == 0 {
		return nil
	}

	stmt, err := Render(readings)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		f, err := openAppend(w.path)
		if err != nil {
			return err
		}
		w.file = f
	}

	if _, err := w.file.WriteString(stmt + "\n"); err != nil {
		return fmt.Errorf("failed to append to %s: %w", w.path, err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// AppendFile opens path, appends one statement for readings and closes it.
func AppendFile(path string, readings []models.MeterReading) error {
	w := NewWriter(path)
	if err := w.Write(readings); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, nil
}
