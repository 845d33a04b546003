package stock_health

import (
	"math"
	"sort"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

// Percentiles of quantity on hand used as classification cutoffs.
const (
	CriticalPercentile  = 0.10
	AttentionPercentile = 0.25
	ExcessPercentile    = 0.90
)

// Quantile returns the q-th empirical quantile of values using linear
// interpolation between the closest ranks at position q*(n-1).
// An empty sample yields 0. The input slice is not modified.
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sortedQuantile(sorted, q)
}

func sortedQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	q = math.Max(0, math.Min(1, q))

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ComputeThresholds derives the cutoffs from the on-hand quantities of the
// current dataset. They are recomputed on every call and never stored.
func ComputeThresholds(records []domain.StockRecord) domain.Thresholds {
	if len(records) == 0 {
		return domain.Thresholds{}
	}

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.QuantityOnHand
	}
	sort.Float64s(values)

	return domain.Thresholds{
		CriticalCutoff:  sortedQuantile(values, CriticalPercentile),
		AttentionCutoff: sortedQuantile(values, AttentionPercentile),
		ExcessCutoff:    sortedQuantile(values, ExcessPercentile),
		SampleSize:      len(values),
	}
}

// ClassifyQuantity maps a quantity to exactly one status. Rules are evaluated
// in order CRITICAL, EXCESS, ATTENTION, NORMAL, so when the distribution
// collapses and the excess cutoff falls at or below the attention cutoff,
// EXCESS wins over ATTENTION while CRITICAL still wins over both.
func ClassifyQuantity(qty float64, t domain.Thresholds) domain.StockStatus {
	switch {
	case qty <= t.CriticalCutoff:
		return domain.StatusCritical
	case qty >= t.ExcessCutoff:
		return domain.StatusExcess
	case qty <= t.AttentionCutoff:
		return domain.StatusAttention
	default:
		return domain.StatusNormal
	}
}

// Classify returns one status per record, aligned by index.
func Classify(records []domain.StockRecord, t domain.Thresholds) []domain.StockStatus {
	statuses := make([]domain.StockStatus, len(records))
	for i, r := range records {
		statuses[i] = ClassifyQuantity(r.QuantityOnHand, t)
	}
	return statuses
}

// CountStatuses tallies statuses in display order.
func CountStatuses(statuses []domain.StockStatus) []domain.StatusCount {
	tally := make(map[domain.StockStatus]int, len(domain.AllStockStatuses))
	for _, s := range statuses {
		tally[s]++
	}

	out := make([]domain.StatusCount, 0, len(domain.AllStockStatuses))
	for _, s := range domain.AllStockStatuses {
		out = append(out, domain.StatusCount{
			Status: s,
			Label:  domain.StockStatusLabel(s),
			Count:  tally[s],
		})
	}
	return out
}
