package stock_health

import (
	"strings"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

const (
	reasonBadDate     = "unparsable date"
	reasonBadQuantity = "unparsable quantity"
	reasonNegative    = "negative quantity"
	reasonNoProduct   = "blank product"
)

// NormalizeSales turns a bound sales table into sale events. A row is
// excluded when its date or quantity cannot be parsed, its quantity is
// negative or its product is blank. Row indexes in the report are
// zero-based data row positions.
func NormalizeSales(table *domain.RawTable, binding domain.ColumnBinding) ([]domain.SalesRecord, NormalizeReport) {
	report := NormalizeReport{InputRows: table.Len()}
	records := make([]domain.SalesRecord, 0, table.Len())

	dateCol, _ := binding.Column(domain.RoleDate)
	qtyCol, _ := binding.Column(domain.RoleQtySold)
	productCol, _ := binding.Column(domain.RoleProductID)

	for i := 0; i < table.Len(); i++ {
		rawDate := table.Value(i, dateCol)
		date, ok := parseDate(rawDate)
		if !ok {
			report.Rejected = append(report.Rejected, &UnparsableInputError{Row: i, Column: dateCol, Value: rawDate, Reason: reasonBadDate})
			continue
		}

		rawQty := table.Value(i, qtyCol)
		qty, ok := parseNumber(rawQty)
		if !ok {
			report.Rejected = append(report.Rejected, &UnparsableInputError{Row: i, Column: qtyCol, Value: rawQty, Reason: reasonBadQuantity})
			continue
		}
		if qty < 0 {
			report.Rejected = append(report.Rejected, &UnparsableInputError{Row: i, Column: qtyCol, Value: rawQty, Reason: reasonNegative})
			continue
		}

		product := cellString(table.Value(i, productCol))
		if product == "" {
			report.Rejected = append(report.Rejected, &UnparsableInputError{Row: i, Column: productCol, Value: nil, Reason: reasonNoProduct})
			continue
		}

		records = append(records, domain.SalesRecord{Date: date, Product: product, Quantity: qty})
	}

	report.Kept = len(records)
	return records, report
}

// NormalizeStock turns a bound stock table into snapshot rows. No row is ever
// dropped: a missing, unparsable or negative quantity becomes 0 and is
// listed as a substitution, so every row still counts toward the
// distribution. An unparsable expiry date is left unset.
func NormalizeStock(table *domain.RawTable, binding domain.ColumnBinding) ([]domain.StockRecord, NormalizeReport) {
	report := NormalizeReport{InputRows: table.Len()}
	records := make([]domain.StockRecord, 0, table.Len())

	qtyCol, _ := binding.Column(domain.RoleQtyOnHand)
	productCol, _ := binding.Column(domain.RoleProductID)
	nameCol, hasName := binding.Column(domain.RoleProductName)
	expiryCol, hasExpiry := binding.Column(domain.RoleExpiryDate)
	categoryCol, hasCategory := binding.Column(domain.RoleCategory)

	for i := 0; i < table.Len(); i++ {
		rec := domain.StockRecord{Product: cellString(table.Value(i, productCol))}

		rawQty := table.Value(i, qtyCol)
		qty, ok := parseNumber(rawQty)
		switch {
		case !ok:
			report.Substituted = append(report.Substituted, &UnparsableInputError{Row: i, Column: qtyCol, Value: rawQty, Reason: reasonBadQuantity})
			qty = 0
		case qty < 0:
			report.Substituted = append(report.Substituted, &UnparsableInputError{Row: i, Column: qtyCol, Value: rawQty, Reason: reasonNegative})
			qty = 0
		}
		rec.QuantityOnHand = qty

		rec.Name = rec.Product
		if hasName && nameCol != productCol {
			if name := cellString(table.Value(i, nameCol)); name != "" {
				rec.Name = name
			}
		}
		if hasExpiry {
			if d, ok := parseDate(table.Value(i, expiryCol)); ok {
				rec.ExpiryDate = &d
			}
		}
		if hasCategory && categoryCol != productCol {
			rec.Category = strings.TrimSpace(cellString(table.Value(i, categoryCol)))
		}

		records = append(records, rec)
	}

	report.Kept = len(records)
	return records, report
}
