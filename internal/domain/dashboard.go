package domain

import "time"

// DashboardCounts are the headline KPI cards.
type DashboardCounts struct {
	AtRisk              int `json:"at_risk"`
	Attention           int `json:"attention"`
	Normal              int `json:"normal"`
	Excess              int `json:"excess"`
	PurchaseSuggestions int `json:"purchase_suggestions"`
	Expiring            int `json:"expiring"`
	Opportunities       int `json:"opportunities"`
	StockItems          int `json:"stock_items"`
	SalesRecords        int `json:"sales_records"`
}

// StatusCount is one slice of the stock status doughnut chart.
type StatusCount struct {
	Status StockStatus `json:"status"`
	Label  string      `json:"label"`
	Count  int         `json:"count"`
}

// SalesSeries is the recent-sales bar chart.
type SalesSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// ForecastSeries is the real-vs-projected line chart.
type ForecastSeries struct {
	Labels    []string   `json:"labels"`
	Actual    []*float64 `json:"actual"`
	Projected []*float64 `json:"projected"`
	Method    string     `json:"method"`
}

// Variations are the synthetic, saturating percent-like indicators shown next
// to each KPI. They are derived from the KPI's own magnitude, not from a prior period.
type Variations struct {
	Risk        float64 `json:"risk"`
	Excess      float64 `json:"excess"`
	Suggestion  float64 `json:"suggestion"`
	Opportunity float64 `json:"opportunity"`
	Expiry      float64 `json:"expiry"`
}

// DashboardSnapshot aggregates everything the dashboard renders for one request.
type DashboardSnapshot struct {
	ID                  string           `json:"id"`
	Source              string           `json:"source"`
	GeneratedAt         time.Time        `json:"generated_at"`
	Counts              DashboardCounts  `json:"counts"`
	Thresholds          Thresholds       `json:"thresholds"`
	StatusBreakdown     []StatusCount    `json:"status_breakdown"`
	SuggestedProducts   []string         `json:"suggested_products"`
	Alerts              []Alert          `json:"alerts"`
	Forecasts           []ForecastResult `json:"forecasts"`
	Sales               SalesSeries      `json:"sales"`
	Forecast            ForecastSeries   `json:"forecast"`
	Variations          Variations       `json:"variations"`
	RejectedSalesRows   int              `json:"rejected_sales_rows"`
	SubstitutedStockQty int              `json:"substituted_stock_quantities"`
}

// ClassifiedStockItem is a stock row with its computed status, for listing pages.
type ClassifiedStockItem struct {
	StockRecord
	Status      StockStatus `json:"status"`
	StatusLabel string      `json:"status_label"`
}

// AnalysisRun is the persisted summary of one dashboard computation.
type AnalysisRun struct {
	ID              string    `json:"id" db:"id"`
	Source          string    `json:"source" db:"source"`
	StockItems      int       `json:"stock_items" db:"stock_items"`
	SalesRecords    int       `json:"sales_records" db:"sales_records"`
	AtRisk          int       `json:"at_risk" db:"at_risk"`
	Excess          int       `json:"excess" db:"excess"`
	AlertCount      int       `json:"alert_count" db:"alert_count"`
	CriticalCutoff  float64   `json:"critical_cutoff" db:"critical_cutoff"`
	AttentionCutoff float64   `json:"attention_cutoff" db:"attention_cutoff"`
	ExcessCutoff    float64   `json:"excess_cutoff" db:"excess_cutoff"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
