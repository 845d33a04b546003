package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/andresuchdata/stocksense/backend-go/internal/domain"
)

// LoadJSON accepts three layouts:
//
//	[{"col": v, ...}, ...]              records
//	{"col": [v, ...], ...}              column arrays
//	{"col": {"0": v, "1": v}, ...}      column maps keyed by row index
//
// Column order follows first appearance in the document.
func LoadJSON(r io.Reader) (*domain.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, ErrEmptyTable
	}

	switch data[0] {
	case '[':
		return loadJSONRecords(data)
	case '{':
		return loadJSONColumns(data)
	default:
		return nil, fmt.Errorf("json table must be an array or an object")
	}
}

func loadJSONRecords(data []byte) (*domain.RawTable, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse json records: %w", err)
	}

	var header []string
	position := make(map[string]int)
	objects := make([]map[string]json.RawMessage, 0, len(items))
	for i, item := range items {
		keys, obj, err := orderedObject(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := position[k]; !ok {
				position[k] = len(header)
				header = append(header, k)
			}
		}
		objects = append(objects, obj)
	}
	if len(header) == 0 {
		return nil, ErrEmptyTable
	}

	rows := make([][]interface{}, len(objects))
	for i, obj := range objects {
		row := make([]interface{}, len(header))
		for k, raw := range obj {
			v, err := jsonCell(raw)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %q: %w", i, k, err)
			}
			row[position[k]] = v
		}
		rows[i] = row
	}

	return domain.NewRawTable(header, rows), nil
}

func loadJSONColumns(data []byte) (*domain.RawTable, error) {
	header, columns, err := orderedObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse json columns: %w", err)
	}
	if len(header) == 0 {
		return nil, ErrEmptyTable
	}

	values := make([]map[int]interface{}, len(header))
	seen := make(map[int]struct{})
	for ci, col := range header {
		cells, err := columnCells(columns[col])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		values[ci] = cells
		for idx := range cells {
			seen[idx] = struct{}{}
		}
	}

	// Rows follow the row indexes present in any column, ascending. Gaps in
	// the index are not materialized.
	indexes := make([]int, 0, len(seen))
	for idx := range seen {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	rows := make([][]interface{}, len(indexes))
	for i, idx := range indexes {
		row := make([]interface{}, len(header))
		for ci := range header {
			row[ci] = values[ci][idx]
		}
		rows[i] = row
	}

	return domain.NewRawTable(header, rows), nil
}

// columnCells decodes either an array or an index-keyed object of cells.
func columnCells(raw json.RawMessage) (map[int]interface{}, error) {
	raw = bytes.TrimSpace(raw)
	cells := make(map[int]interface{})
	if len(raw) == 0 {
		return cells, nil
	}

	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		for i, item := range items {
			v, err := jsonCell(item)
			if err != nil {
				return nil, err
			}
			cells[i] = v
		}
		return cells, nil
	}

	var byIndex map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byIndex); err != nil {
		return nil, fmt.Errorf("expected an array or an index-keyed object: %w", err)
	}
	for k := range byIndex {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid row index %q", k)
		}
		v, err := jsonCell(byIndex[k])
		if err != nil {
			return nil, err
		}
		cells[idx] = v
	}
	return cells, nil
}

// orderedObject decodes a JSON object keeping the key order.
func orderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a json object")
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	return keys, values, nil
}

// jsonCell converts a JSON scalar into a raw cell. Numbers become float64;
// nested values are kept as their JSON text.
func jsonCell(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String(), nil
		}
		return f, nil
	case string, bool, nil:
		return x, nil
	default:
		return string(bytes.TrimSpace(raw)), nil
	}
}
