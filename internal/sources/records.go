package sources

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
)

const (
	// MaxRecords is how many records of a list-shaped response reach the excerpt.
	MaxRecords = 20
	// MaxExcerptChars bounds the rendered excerpt, counted in characters.
	MaxExcerptChars = 2000
)

// Field is one "key: value" pair of a rendered record.
type Field struct {
	Key   string
	Value string
}

// Record is an ordered list of fields. Order follows the upstream document.
type Record []Field

// String renders the record as "k: v, k2: v2".
func (r Record) String() string {
	parts := make([]string, len(r))
	for i, f := range r {
		parts[i] = f.Key + ": " + f.Value
	}
	return strings.Join(parts, ", ")
}

// Excerpt renders one record per line and truncates the result to MaxExcerptChars.
func Excerpt(records []Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return truncate(strings.Join(lines, "\n"), MaxExcerptChars)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// objectList reads up to limit objects from the array at keys (the whole document when no
// keys are given). It reports false only when there is no such array.
func objectList(data []byte, limit int, keys ...string) ([]Record, bool) {
	value, dataType, _, err := jsonparser.Get(data, keys...)
	if err != nil || dataType != jsonparser.Array {
		return nil, false
	}
	var records []Record
	_, _ = jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, err error) {
		if err != nil || itemType != jsonparser.Object || len(records) >= limit {
			return
		}
		records = append(records, objectRecord(item))
	})
	return records, true
}

// objectRecord renders an object's members in document order.
func objectRecord(obj []byte) Record {
	var record Record
	_ = jsonparser.ObjectEach(obj, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			name = string(key)
		}
		record = append(record, Field{Key: name, Value: renderValue(value, dataType)})
		return nil
	})
	return record
}

// stringRow renders every element of a JSON array as a plain string.
func stringRow(arr []byte) []string {
	var row []string
	_, _ = jsonparser.ArrayEach(arr, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil {
			return
		}
		row = append(row, renderValue(value, dataType))
	})
	return row
}

// renderValue prints strings unquoted, scalars as written and containers as compact JSON.
func renderValue(value []byte, dataType jsonparser.ValueType) string {
	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return string(value)
		}
		return s
	case jsonparser.Null:
		return "null"
	case jsonparser.Object, jsonparser.Array:
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return string(value)
		}
		return buf.String()
	default:
		return string(value)
	}
}
