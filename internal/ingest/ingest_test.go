package ingest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"a.csv":  FormatCSV,
		"a.TXT":  FormatCSV,
		"a.xlsx": FormatXLSX,
		"a.xlsm": FormatXLSX,
		"a.json": FormatJSON,
	} {
		got, err := DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := DetectFormat("report.pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = Load("report.xls", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', SniffDelimiter("a,b,c"))
	assert.Equal(t, ';', SniffDelimiter("a;b;c,d"))
	assert.Equal(t, '\t', SniffDelimiter("a\tb\tc"))
	assert.Equal(t, '|', SniffDelimiter("a|b"))
	assert.Equal(t, ',', SniffDelimiter("single"))
}

func TestLoadCSV(t *testing.T) {
	content := "\xEF\xBB\xBFProduto;Descrição;Estoque\n\nA;\"Arroz; tipo 1\";10\nB;;\n;;\nC;Café;1.234,5;extra\n"

	table, err := LoadCSV(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"produto", "descricao", "estoque"}, table.Columns())
	require.Equal(t, 3, table.Len())
	assert.Equal(t, "Arroz; tipo 1", table.Value(0, "descricao"))
	assert.Nil(t, table.Value(1, "descricao"))
	assert.Nil(t, table.Value(1, "estoque"))
	assert.Equal(t, "1.234,5", table.Value(2, "estoque"))
}

func TestLoadCSVHeaderOnlyAndEmpty(t *testing.T) {
	table, err := LoadCSV(strings.NewReader("data,produto,quantidade\n"))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
	assert.Len(t, table.Columns(), 3)

	_, err = LoadCSV(strings.NewReader("  \n\n"))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestLoadJSONLayouts(t *testing.T) {
	records := `[{"produto": "A", "estoque": 3}, {"estoque": 5.5, "produto": "B", "validade": null}]`
	columns := `{"produto": ["A", "B"], "estoque": [3, 5.5]}`
	indexed := `{"produto": {"0": "A", "1": "B"}, "estoque": {"1": 5.5, "0": 3}}`

	for name, doc := range map[string]string{"records": records, "columns": columns, "indexed": indexed} {
		t.Run(name, func(t *testing.T) {
			table, err := Load("stock.json", strings.NewReader(doc))
			require.NoError(t, err)
			assert.Equal(t, []string{"produto", "estoque"}, table.Columns()[:2])
			require.Equal(t, 2, table.Len())
			assert.Equal(t, "A", table.Value(0, "produto"))
			assert.Equal(t, 3.0, table.Value(0, "estoque"))
			assert.Equal(t, 5.5, table.Value(1, "estoque"))
		})
	}

	_, err := LoadJSON(strings.NewReader(`"nope"`))
	assert.Error(t, err)
	_, err = LoadJSON(strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrEmptyTable)
	_, err = LoadJSON(strings.NewReader(`{"a": {"x": 1}}`))
	assert.Error(t, err)
}

func TestLoadJSONSparseIndex(t *testing.T) {
	doc := `{"produto": {"20000000": "X", "7": "B", "0": "A"}, "estoque": {"0": 1, "20000000": 9}}`

	table, err := LoadJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, "A", table.Value(0, "produto"))
	assert.Equal(t, 1.0, table.Value(0, "estoque"))
	assert.Equal(t, "B", table.Value(1, "produto"))
	assert.Nil(t, table.Value(1, "estoque"))
	assert.Equal(t, "X", table.Value(2, "produto"))
	assert.Equal(t, 9.0, table.Value(2, "estoque"))
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Data", "Produto", "Quantidade"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{45366, "A", 4}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2024-03-16", 1001, 2.5}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	table, err := Load("vendas.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"data", "produto", "quantidade"}, table.Columns())
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "45366", table.Value(0, "data"))
	assert.Equal(t, "1001", table.Value(1, "produto"))
	assert.Equal(t, "2.5", table.Value(1, "quantidade"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estoque.csv")
	require.NoError(t, os.WriteFile(path, []byte("produto,estoque\nA,1\n"), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
