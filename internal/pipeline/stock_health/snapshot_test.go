package stock_health

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func snapshotTables() (*domain.RawTable, *domain.RawTable) {
	sales := table([]string{"data", "produto", "quantidade"},
		[]interface{}{"2024-03-01", "A", 10.0},
		[]interface{}{"2024-03-02", "A", 12.0},
		[]interface{}{"2024-03-03", "A", 14.0},
		[]interface{}{"2024-03-01", "B", 5.0},
		[]interface{}{"??", "B", 3.0},
	)
	stock := table([]string{"produto", "estoque", "validade"},
		[]interface{}{"A", 1.0, "2024-03-10"},
		[]interface{}{"B", 5.0, "2024-02-01"},
		[]interface{}{"C", 8.0, "2024-06-01"},
		[]interface{}{"D", 50.0, nil},
		[]interface{}{"E", 120.0, nil},
		[]interface{}{"F", "x", nil},
		[]interface{}{"G", 200.0, nil},
	)
	return sales, stock
}

func TestBuildSnapshot(t *testing.T) {
	sales, stock := snapshotTables()

	snap, err := BuildSnapshot(sales, stock, SnapshotOptions{ID: "s1", Source: "test", AsOf: day(2024, 3, 4)})
	require.NoError(t, err)

	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, 7, snap.Counts.StockItems)
	assert.Equal(t, 4, snap.Counts.SalesRecords)
	assert.Equal(t, 1, snap.RejectedSalesRows)
	assert.Equal(t, 1, snap.SubstitutedStockQty)
	// quantities 0,1,5,8,50,120,200
	assert.Equal(t, 1, snap.Counts.AtRisk)
	assert.Equal(t, []string{"F"}, snap.SuggestedProducts)
	assert.Equal(t, snap.Counts.AtRisk, snap.Counts.PurchaseSuggestions)
	assert.Equal(t, 1, snap.Counts.Excess)
	assert.Equal(t, 7, snap.Counts.AtRisk+snap.Counts.Attention+snap.Counts.Normal+snap.Counts.Excess)
	// A expires within the window, B already expired, C beyond it
	assert.Equal(t, 2, snap.Counts.Expiring)
	assert.Equal(t, 1, snap.Counts.Opportunities)

	require.Len(t, snap.Forecasts, 2)
	assert.Equal(t, "A", snap.Forecasts[0].Product)
	assert.Equal(t, domain.ForecastLinearTrend, snap.Forecasts[0].Method)
	assert.Equal(t, domain.ForecastMean, snap.Forecasts[1].Method)

	assert.Equal(t, []string{"01/03", "02/03", "03/03"}, snap.Sales.Labels)
	assert.Equal(t, []float64{15, 12, 14}, snap.Sales.Values)

	assert.Len(t, snap.Forecast.Labels, 3+ForecastHorizonDays)
	assert.Equal(t, "04/03", snap.Forecast.Labels[3])
	assert.Nil(t, snap.Forecast.Projected[0])
	assert.Nil(t, snap.Forecast.Actual[3])
	for _, p := range snap.Forecast.Projected[3:] {
		require.NotNil(t, p)
		assert.GreaterOrEqual(t, *p, 0.0)
	}

	assert.Equal(t, Variation(1, RiskVariationScale), snap.Variations.Risk)
	assert.Equal(t, Variation(2, ExpiryVariationScale), snap.Variations.Expiry)

	_, err = json.Marshal(snap)
	assert.NoError(t, err)
}

func TestBuildSnapshotEmptyTables(t *testing.T) {
	sales := table([]string{"data", "produto", "quantidade"})
	stock := table([]string{"produto", "estoque"})

	snap, err := BuildSnapshot(sales, stock, SnapshotOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Zero(t, snap.Counts.StockItems)
	assert.Empty(t, snap.Alerts)
	assert.NotNil(t, snap.Alerts)
	assert.Empty(t, snap.Forecasts)
	assert.Empty(t, snap.Sales.Labels)
	assert.Equal(t, string(domain.ForecastMean), snap.Forecast.Method)
	assert.Equal(t, domain.Variations{}, snap.Variations)
}

func TestBuildSnapshotSwappedInputs(t *testing.T) {
	sales, stock := snapshotTables()

	_, err := BuildSnapshot(stock, sales, SnapshotOptions{})
	var inverted *InvertedInputError
	assert.True(t, errors.As(err, &inverted))
}

func TestSalesChartKeepsMostRecentDays(t *testing.T) {
	var sales []domain.SalesRecord
	for d := 1; d <= 10; d++ {
		sales = append(sales, sale("A", day(2024, 3, d), float64(d)))
	}
	dates, totals := DailyTotals(sales)

	series := SalesChart(dates, totals)
	require.Len(t, series.Labels, SalesChartDays)
	assert.Equal(t, "04/03", series.Labels[0])
	assert.Equal(t, 10.0, series.Values[SalesChartDays-1])
}
