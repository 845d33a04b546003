package pipeline

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func TestReportSinkWritesAlerts(t *testing.T) {
	dir := t.TempDir()
	days, stale := 1, 45
	snapshot := &domain.DashboardSnapshot{
		Alerts: []domain.Alert{
			{Kind: domain.AlertImminentStockout, Product: "A", CurrentQuantity: 1, DaysRemaining: &days},
			{Kind: domain.AlertExcessStock, Product: "F", CurrentQuantity: 200, DaysStale: &stale},
		},
		Forecasts: []domain.ForecastResult{
			{Product: "A", ProjectedDailyDemand: 22, DaysUntilExhausted: 1.0 / 22},
			{Product: "F", ProjectedDailyDemand: 0, DaysUntilExhausted: math.Inf(1)},
		},
	}
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	path, err := NewReportSink(dir).Save(context.Background(), date, snapshot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240304_alertas.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, reportHeader, records[0])
	assert.Equal(t, []string{"Ruptura Iminente", "A", "1", "1", "", "22.00", "0.0"}, records[1])
	assert.Equal(t, []string{"Excesso de Estoque", "F", "200", "", "45", "0.00", ""}, records[2])
}

func TestMultiSinkReportsFirstPath(t *testing.T) {
	dir := t.TempDir()
	sink := MultiSink{NewFileSink(dir), NewReportSink(dir)}
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	path, err := sink.Save(context.Background(), date, &domain.DashboardSnapshot{ID: "x"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240304.json"), path)
	assert.FileExists(t, filepath.Join(dir, "20240304_alertas.csv"))

	_, err = MultiSink{}.Save(context.Background(), date, nil)
	assert.Error(t, err)
}
