package stock_health

import (
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

const (
	// DefaultExpiryWindowDays is how far ahead an expiry date counts as expiring.
	DefaultExpiryWindowDays = 30
	// SalesChartDays is how many of the most recent sale dates are charted.
	SalesChartDays = 7

	chartLabelLayout = "02/01"
)

// SnapshotOptions carries the request-level inputs of BuildSnapshot.
type SnapshotOptions struct {
	ID               string
	Source           string
	AsOf             time.Time
	ExpiryWindowDays int
}

// BuildSnapshot runs the whole analysis over one sales/stock table pair and
// assembles the dashboard payload.
func BuildSnapshot(sales, stock *domain.RawTable, opts SnapshotOptions) (*domain.DashboardSnapshot, error) {
	if err := CheckInputs(sales, stock); err != nil {
		return nil, err
	}

	cls, err := ResolveAndClassify(stock)
	if err != nil {
		return nil, err
	}
	salesData, err := ResolveSales(sales)
	if err != nil {
		return nil, err
	}

	return Assemble(cls, salesData, Forecast(salesData.Records, cls.Records), opts), nil
}

// Assemble turns already computed results into a snapshot.
func Assemble(cls *Classification, sales *SalesData, forecasts []domain.ForecastResult, opts SnapshotOptions) *domain.DashboardSnapshot {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}
	if opts.ExpiryWindowDays <= 0 {
		opts.ExpiryWindowDays = DefaultExpiryWindowDays
	}

	suggested := make([]string, 0)
	for i, r := range cls.Records {
		if cls.Statuses[i] == domain.StatusCritical {
			suggested = append(suggested, r.Product)
		}
	}

	opportunities := 0
	for _, f := range forecasts {
		if f.Method == domain.ForecastLinearTrend && f.Slope > 0 {
			opportunities++
		}
	}

	counts := domain.DashboardCounts{
		AtRisk:              cls.Count(domain.StatusCritical),
		Attention:           cls.Count(domain.StatusAttention),
		Normal:              cls.Count(domain.StatusNormal),
		Excess:              cls.Count(domain.StatusExcess),
		PurchaseSuggestions: len(suggested),
		Expiring:            CountExpiring(cls.Records, opts.AsOf, opts.ExpiryWindowDays),
		Opportunities:       opportunities,
		StockItems:          len(cls.Records),
		SalesRecords:        len(sales.Records),
	}

	dates, totals := DailyTotals(sales.Records)
	salesSeries := SalesChart(dates, totals)

	return &domain.DashboardSnapshot{
		ID:                  opts.ID,
		Source:              opts.Source,
		GeneratedAt:         opts.AsOf,
		Counts:              counts,
		Thresholds:          cls.Thresholds,
		StatusBreakdown:     CountStatuses(cls.Statuses),
		SuggestedProducts:   suggested,
		Alerts:              cls.Alerts,
		Forecasts:           forecasts,
		Sales:               salesSeries,
		Forecast:            ForecastChart(dates, totals),
		Variations:          ComputeVariations(counts),
		RejectedSalesRows:   len(sales.Report.RejectedRows()),
		SubstitutedStockQty: len(cls.Report.Substituted),
	}
}

// CountExpiring counts records whose expiry falls on or before asOf plus the window.
// Already expired items are included.
func CountExpiring(records []domain.StockRecord, asOf time.Time, windowDays int) int {
	limit := calendarDate(asOf).AddDate(0, 0, windowDays)
	n := 0
	for _, r := range records {
		if r.ExpiryDate != nil && !r.ExpiryDate.After(limit) {
			n++
		}
	}
	return n
}

// SalesChart keeps the most recent sale dates with their summed quantities.
func SalesChart(dates []time.Time, totals []float64) domain.SalesSeries {
	start := len(dates) - SalesChartDays
	if start < 0 {
		start = 0
	}

	series := domain.SalesSeries{
		Labels: make([]string, 0, len(dates)-start),
		Values: make([]float64, 0, len(dates)-start),
	}
	for i := start; i < len(dates); i++ {
		series.Labels = append(series.Labels, dates[i].Format(chartLabelLayout))
		series.Values = append(series.Values, roundFloat(totals[i], 2))
	}
	return series
}

// ForecastChart lays the recent actual totals next to the projected horizon
// on one label axis. Actual points are nil on projected days and vice versa.
func ForecastChart(dates []time.Time, totals []float64) domain.ForecastSeries {
	start := len(dates) - SalesChartDays
	if start < 0 {
		start = 0
	}

	series := domain.ForecastSeries{
		Labels:    make([]string, 0),
		Actual:    make([]*float64, 0),
		Projected: make([]*float64, 0),
	}
	if len(dates) == 0 {
		series.Method = string(domain.ForecastMean)
		return series
	}

	for i := start; i < len(dates); i++ {
		v := roundFloat(totals[i], 2)
		series.Labels = append(series.Labels, dates[i].Format(chartLabelLayout))
		series.Actual = append(series.Actual, &v)
		series.Projected = append(series.Projected, nil)
	}

	proj := ProjectTotals(dates[start:], totals[start:])
	series.Method = string(proj.Method)
	last := dates[len(dates)-1]
	for i, p := range proj.Next {
		v := roundFloat(maxFloat(p, 0), 2)
		series.Labels = append(series.Labels, last.AddDate(0, 0, i+1).Format(chartLabelLayout))
		series.Actual = append(series.Actual, nil)
		series.Projected = append(series.Projected, &v)
	}
	return series
}

// ComputeVariations derives the indicator shown next to each KPI card.
func ComputeVariations(c domain.DashboardCounts) domain.Variations {
	return domain.Variations{
		Risk:        Variation(float64(c.AtRisk), RiskVariationScale),
		Excess:      Variation(float64(c.Excess), ExcessVariationScale),
		Suggestion:  Variation(float64(c.PurchaseSuggestions), SuggestionVariationScale),
		Opportunity: Variation(float64(c.Opportunities), OpportunityVariationScale),
		Expiry:      Variation(float64(c.Expiring), ExpiryVariationScale),
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
