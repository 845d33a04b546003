package domain

import "strings"

// StockStatus is the health category assigned to a stock row.
type StockStatus string

const (
	StatusCritical  StockStatus = "CRITICAL"
	StatusAttention StockStatus = "ATTENTION"
	StatusNormal    StockStatus = "NORMAL"
	StatusExcess    StockStatus = "EXCESS"
)

// AllStockStatuses lists statuses in dashboard display order.
var AllStockStatuses = []StockStatus{StatusNormal, StatusAttention, StatusCritical, StatusExcess}

var stockStatusLabels = map[StockStatus]string{
	StatusCritical:  "Crítico",
	StatusAttention: "Atenção",
	StatusNormal:    "Normal",
	StatusExcess:    "Excesso",
}

var alertKindLabels = map[AlertKind]string{
	AlertImminentStockout: "Ruptura Iminente",
	AlertExcessStock:      "Excesso de Estoque",
}

// StockStatusLabel returns the dashboard label for a status.
func StockStatusLabel(status StockStatus) string {
	if label, ok := stockStatusLabels[status]; ok {
		return label
	}

	return string(status)
}

// AlertKindLabel returns the dashboard label for an alert kind.
func AlertKindLabel(kind AlertKind) string {
	if label, ok := alertKindLabels[kind]; ok {
		return label
	}

	return string(kind)
}

// ParseStockStatus accepts either the enum value or its label (case-insensitive).
func ParseStockStatus(value string) (StockStatus, bool) {
	value = strings.TrimSpace(value)
	for status, label := range stockStatusLabels {
		if strings.EqualFold(value, string(status)) || strings.EqualFold(value, label) {
			return status, true
		}
	}

	return "", false
}
