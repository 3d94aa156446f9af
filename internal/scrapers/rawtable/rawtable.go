// Package rawtable decodes source payloads into tables that keep the
// source's own column names.
package rawtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"covidexit/internal/table"

	"github.com/tidwall/gjson"
)

// FromJSON decodes an array of flat objects found at path ("" for the
// document itself). Columns appear in the order keys are first seen, keys
// missing from an object are Empty.
func FromJSON(body []byte, path string) (*table.Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid json")
	}
	result := gjson.ParseBytes(body)
	if path != "" {
		result = result.Get(path)
	}
	return FromResult(result)
}

// FromResult is FromJSON for an already parsed array.
func FromResult(result gjson.Result) (*table.Table, error) {
	if !result.IsArray() {
		return nil, fmt.Errorf("expected an array of objects, got %s", result.Type)
	}

	var columns []string
	seen := map[string]bool{}
	var records []map[string]table.Value

	var err error
	result.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = fmt.Errorf("record %d is not an object", len(records)+1)
			return false
		}
		record := map[string]table.Value{}
		item.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
			record[name] = cell(value)
			return true
		})
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, err
	}

	out := table.New(columns...)
	for _, r := range records {
		err := out.AppendMap(r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func cell(value gjson.Result) table.Value {
	switch value.Type {
	case gjson.Null:
		return table.Empty()
	case gjson.Number:
		return table.Number(value.Num)
	case gjson.String:
		return table.String(value.Str)
	case gjson.True, gjson.False:
		return table.String(value.Raw)
	}
	// nested values are kept as their json text
	return table.String(value.Raw)
}

// FromCSV reads a csv with a header row after skipping `skip` preamble lines.
// Cells are parsed with table.Parse.
func FromCSV(r io.Reader, skip int) (*table.Table, error) {
	reader := csv.NewReader(r)
	// preamble lines do not have as many fields as the header
	reader.FieldsPerRecord = -1

	for i := 0; i < skip; i++ {
		_, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("skip line %d: %w", i+1, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	seen := map[string]bool{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if seen[h] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[h] = true
		header[i] = h
	}

	out := table.New(header...)
	line := skip + 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: has %d fields, header has %d", line, len(record), len(header))
		}
		values := make([]table.Value, len(record))
		for i, raw := range record {
			values[i] = table.Parse(raw)
		}
		err = out.Append(values...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
