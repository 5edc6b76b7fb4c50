package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationsRegistered(t *testing.T) {
	ms := Migrations.Sorted()

	if assert.Len(t, ms, 2) {
		assert.Equal(t, "20240301000000", ms[0].Name)
		assert.Equal(t, "create_meter_readings", ms[0].Comment)
		assert.Equal(t, "20240301000100", ms[1].Name)
		assert.Equal(t, "create_ingestion_runs", ms[1].Comment)
	}
}
