package stock_health

import (
	"time"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func table(header []string, rows ...[]interface{}) *domain.RawTable {
	return domain.NewRawTable(header, rows)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stockRecords(qtys ...float64) []domain.StockRecord {
	out := make([]domain.StockRecord, len(qtys))
	for i, q := range qtys {
		out[i] = domain.StockRecord{Product: string(rune('A' + i)), QuantityOnHand: q}
	}
	return out
}
