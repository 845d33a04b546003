package stock_health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func TestQuantile(t *testing.T) {
	values := []float64{200, 1, 50, 8, 120, 5}

	assert.InDelta(t, 3.0, Quantile(values, 0.10), 1e-9)
	assert.InDelta(t, 5.75, Quantile(values, 0.25), 1e-9)
	assert.InDelta(t, 160.0, Quantile(values, 0.90), 1e-9)
	assert.Equal(t, []float64{200, 1, 50, 8, 120, 5}, values, "input must not be reordered")

	assert.Zero(t, Quantile(nil, 0.5))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.9))
	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 200.0, Quantile(values, 1))
}

func TestComputeThresholdsAndClassify(t *testing.T) {
	records := stockRecords(1, 5, 8, 50, 120, 200)

	th := ComputeThresholds(records)
	assert.InDelta(t, 3.0, th.CriticalCutoff, 1e-9)
	assert.InDelta(t, 5.75, th.AttentionCutoff, 1e-9)
	assert.InDelta(t, 160.0, th.ExcessCutoff, 1e-9)
	assert.Equal(t, 6, th.SampleSize)

	statuses := Classify(records, th)
	assert.Equal(t, []domain.StockStatus{
		domain.StatusCritical,
		domain.StatusAttention,
		domain.StatusNormal,
		domain.StatusNormal,
		domain.StatusNormal,
		domain.StatusExcess,
	}, statuses)

	assert.Equal(t, statuses, Classify(records, ComputeThresholds(records)), "classification is idempotent")
}

func TestClassifyDegenerateDistribution(t *testing.T) {
	records := stockRecords(5, 5, 5, 5)
	th := ComputeThresholds(records)

	for _, s := range Classify(records, th) {
		assert.Equal(t, domain.StatusCritical, s)
	}

	// excess cutoff at or below attention cutoff: EXCESS wins over ATTENTION
	collapsed := domain.Thresholds{CriticalCutoff: 1, AttentionCutoff: 10, ExcessCutoff: 8}
	assert.Equal(t, domain.StatusExcess, ClassifyQuantity(9, collapsed))
	assert.Equal(t, domain.StatusCritical, ClassifyQuantity(1, collapsed))
}

func TestComputeThresholdsEmpty(t *testing.T) {
	th := ComputeThresholds(nil)
	assert.True(t, th.Empty())
	assert.Empty(t, Classify(nil, th))
}

func TestCountStatuses(t *testing.T) {
	counts := CountStatuses([]domain.StockStatus{domain.StatusExcess, domain.StatusCritical, domain.StatusCritical})
	require.Len(t, counts, 4)
	assert.Equal(t, domain.StatusNormal, counts[0].Status)
	assert.Equal(t, 0, counts[0].Count)
	assert.Equal(t, domain.StatusCritical, counts[2].Status)
	assert.Equal(t, 2, counts[2].Count)
	assert.Equal(t, "Excesso", counts[3].Label)
}

func TestGenerateAlerts(t *testing.T) {
	records := stockRecords(200, 1, 10, 0, 150)
	statuses := []domain.StockStatus{
		domain.StatusExcess,
		domain.StatusCritical,
		domain.StatusNormal,
		domain.StatusCritical,
		domain.StatusExcess,
	}

	alerts := GenerateAlerts(records, statuses)
	require.Len(t, alerts, 4)

	assert.Equal(t, domain.AlertImminentStockout, alerts[0].Kind)
	assert.Equal(t, "B", alerts[0].Product)
	assert.Equal(t, 1, *alerts[0].DaysRemaining)
	assert.Equal(t, "D", alerts[1].Product)
	assert.Nil(t, alerts[1].DaysStale)

	assert.Equal(t, domain.AlertExcessStock, alerts[2].Kind)
	assert.Equal(t, "A", alerts[2].Product)
	assert.Equal(t, ExcessDaysStale, *alerts[2].DaysStale)
	assert.Equal(t, "E", alerts[3].Product)

	assert.NotNil(t, GenerateAlerts(nil, nil))
}

func TestStockoutDays(t *testing.T) {
	assert.Equal(t, 1, StockoutDays(0))
	assert.Equal(t, 1, StockoutDays(5))
	assert.Equal(t, 2, StockoutDays(6))
	assert.Equal(t, 33, StockoutDays(100))
}

func TestVariation(t *testing.T) {
	assert.Zero(t, Variation(0, RiskVariationScale))
	assert.Zero(t, Variation(-3, RiskVariationScale))
	assert.Equal(t, 6.3, Variation(1, RiskVariationScale))
	assert.Equal(t, 7.2, Variation(9, ExcessVariationScale))
	assert.Less(t, Variation(1e9, ExpiryVariationScale), ExpiryVariationScale+0.01)
}
