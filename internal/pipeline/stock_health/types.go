package stock_health

import "github.com/andresuchdata/stocksense/backend-go/internal/domain"

// NormalizeReport describes what happened to the input rows of one table.
type NormalizeReport struct {
	InputRows int
	Kept      int
	// Rejected rows were excluded from the output.
	Rejected []*UnparsableInputError
	// Substituted cells were replaced by a default (stock quantity -> 0).
	Substituted []*UnparsableInputError
}

// RejectedRows returns the distinct row indexes that were excluded.
func (r NormalizeReport) RejectedRows() []int {
	rows := make([]int, 0, len(r.Rejected))
	seen := make(map[int]bool, len(r.Rejected))
	for _, e := range r.Rejected {
		if seen[e.Row] {
			continue
		}
		seen[e.Row] = true
		rows = append(rows, e.Row)
	}
	return rows
}

// Classification is the full result of resolving and classifying a stock table.
// Records, Statuses are index-aligned.
type Classification struct {
	Binding    domain.ColumnBinding
	Records    []domain.StockRecord
	Thresholds domain.Thresholds
	Statuses   []domain.StockStatus
	Alerts     []domain.Alert
	Report     NormalizeReport
}

// Items pairs each record with its status and label.
func (c *Classification) Items() []domain.ClassifiedStockItem {
	items := make([]domain.ClassifiedStockItem, len(c.Records))
	for i, r := range c.Records {
		items[i] = domain.ClassifiedStockItem{
			StockRecord: r,
			Status:      c.Statuses[i],
			StatusLabel: domain.StockStatusLabel(c.Statuses[i]),
		}
	}
	return items
}

// Count returns how many records carry the given status.
func (c *Classification) Count(status domain.StockStatus) int {
	n := 0
	for _, s := range c.Statuses {
		if s == status {
			n++
		}
	}
	return n
}

// SalesData is a resolved and normalized sales table.
type SalesData struct {
	Binding domain.ColumnBinding
	Records []domain.SalesRecord
	Report  NormalizeReport
}
