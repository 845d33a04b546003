// backend-go/internal/domain/models.go
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// FieldRole is the semantic meaning of a column, independent of its header text.
type FieldRole string

const (
	RoleDate        FieldRole = "date"
	RoleProductID   FieldRole = "product_id"
	RoleProductName FieldRole = "product_name"
	RoleQtySold     FieldRole = "qty_sold"
	RoleQtyOnHand   FieldRole = "qty_on_hand"
	RoleExpiryDate  FieldRole = "expiry_date"
	RoleCategory    FieldRole = "category"
)

// ColumnBinding maps semantic roles to the normalized column names of one table.
type ColumnBinding map[FieldRole]string

// Column returns the bound column and whether the role was resolved.
func (b ColumnBinding) Column(role FieldRole) (string, bool) {
	col, ok := b[role]
	return col, ok
}

// DatasetKind is the detected nature of an uploaded table.
type DatasetKind string

const (
	DatasetSales     DatasetKind = "sales"
	DatasetStock     DatasetKind = "stock"
	DatasetAmbiguous DatasetKind = "ambiguous"
	DatasetUnknown   DatasetKind = "unknown"
)

// SalesRecord is one normalized sale event.
type SalesRecord struct {
	Date     time.Time `json:"date"`
	Product  string    `json:"product"`
	Quantity float64   `json:"quantity"`
}

// StockRecord is one normalized stock snapshot row.
type StockRecord struct {
	Product        string     `json:"product"`
	Name           string     `json:"name,omitempty"`
	QuantityOnHand float64    `json:"quantity_on_hand"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	Category       string     `json:"category,omitempty"`
}

// Thresholds are the percentile cutoffs derived from the current stock distribution.
type Thresholds struct {
	CriticalCutoff  float64 `json:"critical_cutoff"`
	AttentionCutoff float64 `json:"attention_cutoff"`
	ExcessCutoff    float64 `json:"excess_cutoff"`
	SampleSize      int     `json:"sample_size"`
}

// Empty reports whether the thresholds were computed from no data.
func (t Thresholds) Empty() bool {
	return t.SampleSize == 0
}

// AlertKind identifies the alert family.
type AlertKind string

const (
	AlertImminentStockout AlertKind = "IMMINENT_STOCKOUT"
	AlertExcessStock      AlertKind = "EXCESS_STOCK"
)

// Alert is a structured inventory alert. Exactly one of DaysRemaining
// (stockout) or DaysStale (excess) is set.
type Alert struct {
	Kind            AlertKind `json:"kind"`
	Product         string    `json:"product"`
	CurrentQuantity float64   `json:"current_quantity"`
	DaysRemaining   *int      `json:"days_remaining,omitempty"`
	DaysStale       *int      `json:"days_stale,omitempty"`
}

// ForecastMethod names how projected demand was obtained.
type ForecastMethod string

const (
	ForecastLinearTrend ForecastMethod = "linear_trend"
	ForecastMean        ForecastMethod = "mean"
)

// ForecastResult is the per-product demand projection.
// DaysUntilExhausted is +Inf when projected demand is not positive.
type ForecastResult struct {
	Product              string
	CurrentStock         float64
	ProjectedDailyDemand float64
	DaysUntilExhausted   float64
	Method               ForecastMethod
	SampleSize           int
	Slope                float64
}

// Exhausts reports whether stock is projected to run out at all.
func (f ForecastResult) Exhausts() bool {
	return !math.IsInf(f.DaysUntilExhausted, 1)
}

type forecastResultJSON struct {
	Product              string         `json:"product"`
	CurrentStock         float64        `json:"current_stock"`
	ProjectedDailyDemand float64        `json:"projected_daily_demand"`
	DaysUntilExhausted   *float64       `json:"days_until_exhausted"`
	Exhausts             bool           `json:"exhausts"`
	Method               ForecastMethod `json:"method"`
	SampleSize           int            `json:"sample_size"`
	Slope                float64        `json:"slope"`
}

// MarshalJSON rounds figures for display and encodes an infinite horizon as null.
func (f ForecastResult) MarshalJSON() ([]byte, error) {
	out := forecastResultJSON{
		Product:              f.Product,
		CurrentStock:         f.CurrentStock,
		ProjectedDailyDemand: round(f.ProjectedDailyDemand, 2),
		Exhausts:             f.Exhausts(),
		Method:               f.Method,
		SampleSize:           f.SampleSize,
		Slope:                round(f.Slope, 4),
	}
	if out.Exhausts {
		days := round(f.DaysUntilExhausted, 1)
		out.DaysUntilExhausted = &days
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a persisted forecast; a null horizon becomes +Inf.
func (f *ForecastResult) UnmarshalJSON(data []byte) error {
	var in forecastResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*f = ForecastResult{
		Product:              in.Product,
		CurrentStock:         in.CurrentStock,
		ProjectedDailyDemand: in.ProjectedDailyDemand,
		DaysUntilExhausted:   math.Inf(1),
		Method:               in.Method,
		SampleSize:           in.SampleSize,
		Slope:                in.Slope,
	}
	if in.DaysUntilExhausted != nil {
		f.DaysUntilExhausted = *in.DaysUntilExhausted
	}
	return nil
}

func round(v float64, decimals int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
