package stock_health

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func sale(product string, d time.Time, qty float64) domain.SalesRecord {
	return domain.SalesRecord{Product: product, Date: d, Quantity: qty}
}

func TestFitTrend(t *testing.T) {
	tr := FitTrend([]float64{0, 1, 2}, []float64{10, 12, 14})
	assert.InDelta(t, 2.0, tr.Slope, 1e-9)
	assert.InDelta(t, 10.0, tr.Intercept, 1e-9)

	flat := FitTrend([]float64{3, 3, 3}, []float64{1, 2, 6})
	assert.Zero(t, flat.Slope)
	assert.InDelta(t, 3.0, flat.Intercept, 1e-9)
}

func TestForecastLinearTrend(t *testing.T) {
	sales := []domain.SalesRecord{
		sale("A", day(2024, 3, 3), 14),
		sale("A", day(2024, 3, 1), 10),
		sale("A", day(2024, 3, 2), 12),
	}
	stock := []domain.StockRecord{{Product: "A", QuantityOnHand: 100}}

	results := Forecast(sales, stock)
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, domain.ForecastLinearTrend, r.Method)
	assert.InDelta(t, 2.0, r.Slope, 1e-9)
	assert.InDelta(t, 22.0, r.ProjectedDailyDemand, 1e-9)
	assert.InDelta(t, 100.0/22.0, r.DaysUntilExhausted, 1e-9)
	assert.Equal(t, 3, r.SampleSize)
	assert.True(t, r.Exhausts())
}

func TestForecastSampleBoundary(t *testing.T) {
	stock := []domain.StockRecord{{Product: "A", QuantityOnHand: 30}}

	two := Forecast([]domain.SalesRecord{
		sale("A", day(2024, 3, 1), 10),
		sale("A", day(2024, 3, 5), 20),
	}, stock)
	require.Len(t, two, 1)
	assert.Equal(t, domain.ForecastMean, two[0].Method)
	assert.InDelta(t, 15.0, two[0].ProjectedDailyDemand, 1e-9)
	assert.InDelta(t, 2.0, two[0].DaysUntilExhausted, 1e-9)

	three := Forecast([]domain.SalesRecord{
		sale("A", day(2024, 3, 1), 10),
		sale("A", day(2024, 3, 5), 20),
		sale("A", day(2024, 3, 5), 30),
	}, stock)
	require.Len(t, three, 1)
	assert.Equal(t, domain.ForecastLinearTrend, three[0].Method)
}

func TestForecastNonPositiveDemand(t *testing.T) {
	results := Forecast([]domain.SalesRecord{
		sale("A", day(2024, 3, 1), 30),
		sale("A", day(2024, 3, 2), 20),
		sale("A", day(2024, 3, 3), 0),
	}, []domain.StockRecord{{Product: "A", QuantityOnHand: 5}})
	require.Len(t, results, 1)

	assert.LessOrEqual(t, results[0].ProjectedDailyDemand, 0.0)
	assert.True(t, math.IsInf(results[0].DaysUntilExhausted, 1))
	assert.False(t, results[0].Exhausts())

	payload, err := json.Marshal(results[0])
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Nil(t, decoded["days_until_exhausted"])
	assert.Equal(t, false, decoded["exhausts"])
}

func TestForecastSkipsProductsWithoutHistoryAndUsesFirstStockRow(t *testing.T) {
	sales := []domain.SalesRecord{sale("B", day(2024, 3, 1), 4)}
	stock := []domain.StockRecord{
		{Product: "A", QuantityOnHand: 10},
		{Product: "B", QuantityOnHand: 8},
		{Product: "B", QuantityOnHand: 999},
	}

	results := Forecast(sales, stock)
	require.Len(t, results, 1)
	assert.Equal(t, "B", results[0].Product)
	assert.Equal(t, 8.0, results[0].CurrentStock)
	assert.InDelta(t, 2.0, results[0].DaysUntilExhausted, 1e-9)

	assert.NotNil(t, Forecast(nil, nil))
}

func TestDailyTotals(t *testing.T) {
	dates, values := DailyTotals([]domain.SalesRecord{
		sale("A", day(2024, 3, 2), 1),
		sale("B", day(2024, 3, 1), 2),
		sale("A", day(2024, 3, 1), 3),
	})
	assert.Equal(t, []time.Time{day(2024, 3, 1), day(2024, 3, 2)}, dates)
	assert.Equal(t, []float64{5, 1}, values)
}
