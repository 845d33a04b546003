package stock_health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

func TestNormalizeSalesExcludesBadRows(t *testing.T) {
	tbl := table([]string{"data", "produto", "quantidade"},
		[]interface{}{"2024-03-01", "A", "10"},
		[]interface{}{"not a date", "A", "5"},
		[]interface{}{"02/03/2024", "B", "1.234,5"},
		[]interface{}{"2024-03-03", "B", "-2"},
		[]interface{}{"2024-03-03", "", "4"},
		[]interface{}{"2024-03-03", "C", "abc"},
		[]interface{}{45355.0, 1001.0, 3.0},
	)
	binding, err := ResolveColumns(tbl, domain.DatasetSales)
	require.NoError(t, err)

	records, report := NormalizeSales(tbl, binding)
	require.Len(t, records, 3)
	assert.Equal(t, domain.SalesRecord{Date: day(2024, 3, 1), Product: "A", Quantity: 10}, records[0])
	assert.Equal(t, day(2024, 3, 2), records[1].Date)
	assert.Equal(t, 1234.5, records[1].Quantity)
	assert.Equal(t, "1001", records[2].Product)
	assert.Equal(t, day(2024, 3, 4), records[2].Date)

	assert.Equal(t, 7, report.InputRows)
	assert.Equal(t, 3, report.Kept)
	assert.Equal(t, []int{1, 3, 4, 5}, report.RejectedRows())
	assert.Equal(t, reasonBadDate, report.Rejected[0].Reason)
	assert.Equal(t, reasonNegative, report.Rejected[1].Reason)
	assert.Equal(t, reasonNoProduct, report.Rejected[2].Reason)
	assert.Equal(t, reasonBadQuantity, report.Rejected[3].Reason)
}

func TestNormalizeSalesOnlyDateFailuresWhenQuantitiesValid(t *testing.T) {
	tbl := table([]string{"data", "produto", "quantidade"},
		[]interface{}{"2024-03-01", "A", 1.0},
		[]interface{}{"", "A", 2.0},
		[]interface{}{"amanhã", "A", 3.0},
	)
	binding, err := ResolveColumns(tbl, domain.DatasetSales)
	require.NoError(t, err)

	records, report := NormalizeSales(tbl, binding)
	assert.Len(t, records, 1)
	assert.Equal(t, []int{1, 2}, report.RejectedRows())
	assert.Equal(t, report.InputRows, report.Kept+len(report.RejectedRows()))
}

func TestNormalizeStockNeverDropsRows(t *testing.T) {
	tbl := table([]string{"produto", "nome", "estoque", "validade", "categoria"},
		[]interface{}{"A", "Arroz", "10", "15/03/2024", " Grãos "},
		[]interface{}{"B", nil, "n/a", "sem validade", nil},
		[]interface{}{"C", "Café", -4.0, nil, "Bebidas"},
		[]interface{}{"D", "", nil, nil, nil},
	)
	binding, err := ResolveColumns(tbl, domain.DatasetStock)
	require.NoError(t, err)

	records, report := NormalizeStock(tbl, binding)
	require.Len(t, records, 4)
	assert.Equal(t, 4, report.Kept)
	assert.Empty(t, report.Rejected)
	require.Len(t, report.Substituted, 3)
	assert.Equal(t, 1, report.Substituted[0].Row)
	assert.Equal(t, reasonNegative, report.Substituted[1].Reason)

	assert.Equal(t, "Arroz", records[0].Name)
	assert.Equal(t, "Grãos", records[0].Category)
	require.NotNil(t, records[0].ExpiryDate)
	assert.Equal(t, day(2024, 3, 15), *records[0].ExpiryDate)

	assert.Equal(t, "B", records[1].Name)
	assert.Zero(t, records[1].QuantityOnHand)
	assert.Nil(t, records[1].ExpiryDate)
	assert.Zero(t, records[2].QuantityOnHand)
	assert.Equal(t, "D", records[3].Name)
}

func TestNormalizeStockNameFallsBackToProduct(t *testing.T) {
	tbl := table([]string{"produto", "estoque"}, []interface{}{"SKU-1", 3.0})
	binding, err := ResolveColumns(tbl, domain.DatasetStock)
	require.NoError(t, err)

	records, _ := NormalizeStock(tbl, binding)
	require.Len(t, records, 1)
	assert.Equal(t, "SKU-1", records[0].Name)
	assert.Equal(t, 3.0, records[0].QuantityOnHand)
}
