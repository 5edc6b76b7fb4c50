package script_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/blagoySimandov/nem12ingest/internal/script"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(nmi string, day int, consumption float64) models.MeterReading {
	return models.MeterReading{
		ID:          uuid.New(),
		NMI:         nmi,
		Timestamp:   time.Date(2005, 3, day, 0, 0, 0, 0, time.UTC),
		Consumption: consumption,
	}
}

func TestRender(t *testing.T) {
	id := uuid.MustParse("0b6c8f2e-9f57-4b8e-8f51-4c2d8a1e2f10")
	r := models.MeterReading{
		ID:          id,
		NMI:         "NEM1201009",
		Timestamp:   time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC),
		Consumption: 31.44,
	}
	second := r
	second.Timestamp = time.Date(2005, 3, 2, 0, 0, 0, 0, time.UTC)
	second.Consumption = 7

	stmt, err := script.Render([]models.MeterReading{r, second})

	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO meter_readings (id, nmi, timestamp, consumption) VALUES "+
			"('0b6c8f2e-9f57-4b8e-8f51-4c2d8a1e2f10', 'NEM1201009', '2005-03-01 00:00:00', 31.44), "+
			"('0b6c8f2e-9f57-4b8e-8f51-4c2d8a1e2f10', 'NEM1201009', '2005-03-02 00:00:00', 7.00);",
		stmt)
}

func TestRenderEmpty(t *testing.T) {
	_, err := script.Render(nil)
	assert.ErrorIs(t, err, script.ErrNoRows)
}

func TestRoundTrip(t *testing.T) {
	readings := []models.MeterReading{
		reading("NEM1201009", 1, 31.44),
		reading("O'BRIEN01", 2, 0),
		reading("NEM1201009", 3, 1234.5),
	}

	stmt, err := script.Render(readings)
	require.NoError(t, err)

	got, err := script.ParseStatement(stmt)
	require.NoError(t, err)
	assert.Equal(t, readings, got)
}

func TestParseStatementRejectsGarbage(t *testing.T) {
	tests := []string{
		"DELETE FROM meter_readings;",
		"INSERT INTO meter_readings (id, nmi, timestamp, consumption) VALUES ('x', 'NMI', '2005-03-01 00:00:00', 1.00);",
		"INSERT INTO meter_readings (id, nmi, timestamp, consumption) VALUES ('0b6c8f2e-9f57-4b8e-8f51-4c2d8a1e2f10', 'NMI', '2005-03-01 00:00:00', 1.00)",
		"INSERT INTO meter_readings (id, nmi, timestamp, consumption) VALUES ('0b6c8f2e-9f57-4b8e-8f51-4c2d8a1e2f10', 'NMI', 1.00);",
		"INSERT INTO meter_readings (id, nmi, timestamp, consumption) VALUES ('0b6c8f2e-9f57-4b8e-8f51-4c2d8a1e2f10', 'NMI;",
		"INSERT INTO meter_readings (id, nmi, timestamp, consumption) VALUES ;",
	}
	for _, stmt := range tests {
		_, err := script.ParseStatement(stmt)
		assert.ErrorIs(t, err, script.ErrMalformedStatement, stmt)
	}
}

func TestWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sql")
	require.NoError(t, os.WriteFile(path, []byte("-- existing\n"), 0o644))

	w := script.NewWriter(path)
	require.NoError(t, w.Write([]models.MeterReading{reading("A", 1, 1)}))
	require.NoError(t, w.Write([]models.MeterReading{reading("B", 2, 2), reading("B", 3, 3)}))
	require.NoError(t, w.Close())

	require.NoError(t, script.AppendFile(path, []models.MeterReading{reading("C", 4, 4)}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "-- existing", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "INSERT INTO meter_readings"), line)
		assert.True(t, strings.HasSuffix(line, ");"), line)
	}
}

func TestWriterEmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sql")

	w := script.NewWriter(path)
	require.NoError(t, w.Write(nil))
	require.NoError(t, w.Close())
	require.NoError(t, script.AppendFile(path, nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriterOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.sql")

	err := script.NewWriter(path).Write([]models.MeterReading{reading("A", 1, 1)})
	assert.Error(t, err)
}

func TestWriterConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sql")
	w := script.NewWriter(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, w.Write([]models.MeterReading{reading("NMI", i%28+1, float64(i))}))
		}(i)
	}
	wg.Wait()
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := script.NewReader(f)
	statements := 0
	for r.Scan() {
		require.Len(t, r.Readings(), 1)
		statements++
	}
	require.NoError(t, r.Err())
	assert.Equal(t, 20, statements)
}

func TestReaderReportsLine(t *testing.T) {
	stmt, err := script.Render([]models.MeterReading{reading("A", 1, 1)})
	require.NoError(t, err)

	r := script.NewReader(strings.NewReader(stmt + "\n\nnot sql\n"))
	require.True(t, r.Scan())
	assert.False(t, r.Scan())
	assert.ErrorContains(t, r.Err(), "line 3")
}

func TestOutputPath(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)
	assert.Equal(t, filepath.Join("out", "meter_readings_insert_20261017_090503.sql"),
		script.OutputPath("out", "meter_readings_insert", now))
}
