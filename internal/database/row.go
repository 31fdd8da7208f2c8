package database

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// RowReader pulls typed columns out of a record and keeps the first decoding error.
// Null columns read as zero values.
type RowReader struct {
	record *neo4j.Record
	err    error
}

func NewRowReader(record *neo4j.Record) *RowReader {
	return &RowReader{record: record}
}

// Err returns the first missing column or type mismatch seen so far.
func (r *RowReader) Err() error {
	return r.err
}

func (r *RowReader) value(key string) any {
	if r.err != nil {
		return nil
	}
	v, ok := r.record.Get(key)
	if !ok {
		r.err = fmt.Errorf("column %q missing from result", key)
		return nil
	}
	return v
}

func (r *RowReader) Str(key string) string {
	switch v := r.value(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (r *RowReader) Int(key string) int64 {
	switch v := r.value(key).(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		r.fail(key, v)
		return 0
	}
}

func (r *RowReader) Float(key string) float64 {
	switch v := r.value(key).(type) {
	case nil:
		return 0
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		r.fail(key, v)
		return 0
	}
}

// Strings reads a list column, skipping null items.
func (r *RowReader) Strings(key string) []string {
	switch v := r.value(key).(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	default:
		r.fail(key, v)
		return nil
	}
}

func (r *RowReader) fail(key string, v any) {
	if r.err == nil {
		r.err = fmt.Errorf("column %q has unexpected type %T", key, v)
	}
}
