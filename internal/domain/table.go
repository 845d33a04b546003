package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RawTable is an immutable view over loosely structured tabular data.
// Column names are normalized once, at construction, so column bindings
// computed against Columns stay valid for every later lookup.
type RawTable struct {
	columns []string
	index   map[string]int
	rows    [][]interface{}
}

// NewRawTable copies header and rows into a RawTable. Rows shorter than the
// header are padded with nil cells; extra cells are dropped.
func NewRawTable(header []string, rows [][]interface{}) *RawTable {
	t := &RawTable{
		columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
		rows:    make([][]interface{}, 0, len(rows)),
	}

	for i, h := range header {
		name := NormalizeColumnName(h)
		t.columns[i] = name
		// first occurrence wins for duplicated headers
		if _, ok := t.index[name]; !ok {
			t.index[name] = i
		}
	}

	for _, r := range rows {
		row := make([]interface{}, len(header))
		copy(row, r)
		t.rows = append(t.rows, row)
	}

	return t
}

// NormalizeColumnName lowercases, trims and strips diacritics so that
// "Descrição " and "descricao" compare equal.
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		return name
	}
	return folded
}

// Columns returns the normalized column names in table order.
func (t *RawTable) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Value returns the raw cell at row for column, or nil when either is unknown.
func (t *RawTable) Value(row int, column string) interface{} {
	if t == nil || row < 0 || row >= len(t.rows) {
		return nil
	}
	idx, ok := t.index[column]
	if !ok {
		return nil
	}
	return t.rows[row][idx]
}
