package stock_health

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

// SchemaResolutionError means a required role could not be bound to any column.
type SchemaResolutionError struct {
	Dataset  domain.DatasetKind
	Role     domain.FieldRole
	Patterns []string
	Columns  []string
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("column mapping: no %s column found for %s among patterns [%s] (columns: [%s])",
		e.Dataset, e.Role, strings.Join(e.Patterns, ", "), strings.Join(e.Columns, ", "))
}

// InvertedInputError means the sales and stock inputs look swapped.
type InvertedInputError struct {
	SalesDetected domain.DatasetKind
	StockDetected domain.DatasetKind
}

func (e *InvertedInputError) Error() string {
	return "the sales and stock files appear to be swapped: check that each file was sent to the right field"
}

// UnrecognizedInputError means an input matched neither the sales nor the stock keyword family.
type UnrecognizedInputError struct {
	Input domain.DatasetKind
}

func (e *UnrecognizedInputError) Error() string {
	return fmt.Sprintf("could not identify the %s file from its columns: check that it is in the expected format", e.Input)
}

// UnparsableInputError describes one cell that failed coercion. These are
// recovered locally (row exclusion or zero substitution) and reported, never returned.
type UnparsableInputError struct {
	Row    int
	Column string
	Value  interface{}
	Reason string
}

func (e *UnparsableInputError) Error() string {
	return fmt.Sprintf("row %d, column %q: %s (value %v)", e.Row, e.Column, e.Reason, e.Value)
}
