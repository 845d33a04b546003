package stock_health

import (
	"math"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

const (
	// Fixed burn rate (units per day) behind the stockout estimate. This is a
	// rough placeholder and is independent of the demand forecast.
	StockoutBurnRate = 3.0
	// Placeholder age reported for every excess alert.
	ExcessDaysStale = 45
)

// StockoutDays estimates days remaining as max(1, floor(qty / burn rate)).
func StockoutDays(qty float64) int {
	days := int(math.Floor(qty / StockoutBurnRate))
	if days < 1 {
		return 1
	}
	return days
}

// GenerateAlerts emits stockout alerts for CRITICAL records followed by excess
// alerts for EXCESS records, each group in record order. statuses must be
// aligned with records.
func GenerateAlerts(records []domain.StockRecord, statuses []domain.StockStatus) []domain.Alert {
	alerts := make([]domain.Alert, 0)

	for i, r := range records {
		if i >= len(statuses) || statuses[i] != domain.StatusCritical {
			continue
		}
		days := StockoutDays(r.QuantityOnHand)
		alerts = append(alerts, domain.Alert{
			Kind:            domain.AlertImminentStockout,
			Product:         r.Product,
			CurrentQuantity: r.QuantityOnHand,
			DaysRemaining:   &days,
		})
	}

	for i, r := range records {
		if i >= len(statuses) || statuses[i] != domain.StatusExcess {
			continue
		}
		stale := ExcessDaysStale
		alerts = append(alerts, domain.Alert{
			Kind:            domain.AlertExcessStock,
			Product:         r.Product,
			CurrentQuantity: r.QuantityOnHand,
			DaysStale:       &stale,
		})
	}

	return alerts
}
