package stock_health

import (
	"strings"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

// columnRule binds one role to an ordered list of substring patterns.
// Patterns are tried in order; for each pattern the columns are scanned in
// table order and the first containing column wins. Because pattern lists
// overlap across roles ("quantidade" is both a sales and a stock quantity),
// the binding depends on which dataset kind is being resolved.
type columnRule struct {
	Role     domain.FieldRole
	Patterns []string
	Required bool
}

var productPatterns = []string{"produto", "item", "descricao", "nome"}

var salesRules = []columnRule{
	{Role: domain.RoleDate, Patterns: []string{"data", "dia", "dt_venda", "emissao"}, Required: true},
	{Role: domain.RoleQtySold, Patterns: []string{"quantidade", "qtd", "qtde", "volume", "vendida"}, Required: true},
	{Role: domain.RoleProductID, Patterns: productPatterns, Required: true},
}

var stockRules = []columnRule{
	{Role: domain.RoleQtyOnHand, Patterns: []string{"quantidade", "estoque", "qtd", "saldo", "disponivel"}, Required: true},
	{Role: domain.RoleProductID, Patterns: productPatterns, Required: true},
	{Role: domain.RoleProductName, Patterns: []string{"nome", "descricao", "produto", "item"}},
	{Role: domain.RoleExpiryDate, Patterns: []string{"validade", "vencimento", "expira"}},
	{Role: domain.RoleCategory, Patterns: []string{"categoria", "grupo", "familia", "departamento", "secao"}},
}

// Keyword families used to detect which kind of file was uploaded.
var (
	salesKeywords = []string{"data", "dia", "dt_venda", "emissao", "quantidade", "vendida"}
	stockKeywords = []string{"estoque", "saldo", "disponivel", "qtd_estoque"}
)

// FindColumn returns the first column matching the ordered patterns.
func FindColumn(table *domain.RawTable, patterns []string) (string, bool) {
	columns := table.Columns()
	for _, pattern := range patterns {
		for _, col := range columns {
			if strings.Contains(col, pattern) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveColumns binds every role of the dataset kind. Optional roles are
// omitted from the binding when absent; a missing required role fails.
func ResolveColumns(table *domain.RawTable, kind domain.DatasetKind) (domain.ColumnBinding, error) {
	rules := stockRules
	if kind == domain.DatasetSales {
		rules = salesRules
	}

	binding := make(domain.ColumnBinding, len(rules))
	for _, rule := range rules {
		col, ok := FindColumn(table, rule.Patterns)
		if !ok {
			if rule.Required {
				return nil, &SchemaResolutionError{
					Dataset:  kind,
					Role:     rule.Role,
					Patterns: append([]string(nil), rule.Patterns...),
					Columns:  table.Columns(),
				}
			}
			continue
		}
		binding[rule.Role] = col
	}

	return binding, nil
}

// DetectDatasetKind guesses whether a table holds sales or stock data.
func DetectDatasetKind(table *domain.RawTable) domain.DatasetKind {
	columns := table.Columns()
	hasSales := containsAny(columns, salesKeywords)
	hasStock := containsAny(columns, stockKeywords)

	switch {
	case hasSales && !hasStock:
		return domain.DatasetSales
	case hasStock && !hasSales:
		return domain.DatasetStock
	case hasSales && hasStock:
		return domain.DatasetAmbiguous
	default:
		return domain.DatasetUnknown
	}
}

// CheckInputs is the pre-check run before resolution. Swapped inputs are
// reported before unknown ones so the caller can give a targeted message.
func CheckInputs(sales, stock *domain.RawTable) error {
	salesKind := DetectDatasetKind(sales)
	stockKind := DetectDatasetKind(stock)

	if salesKind == domain.DatasetStock && stockKind == domain.DatasetSales {
		return &InvertedInputError{SalesDetected: salesKind, StockDetected: stockKind}
	}
	if salesKind == domain.DatasetUnknown {
		return &UnrecognizedInputError{Input: domain.DatasetSales}
	}
	if stockKind == domain.DatasetUnknown {
		return &UnrecognizedInputError{Input: domain.DatasetStock}
	}

	return nil
}

func containsAny(columns, keywords []string) bool {
	for _, col := range columns {
		for _, kw := range keywords {
			if strings.Contains(col, kw) {
				return true
			}
		}
	}
	return false
}
