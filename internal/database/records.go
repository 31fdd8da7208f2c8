package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Neo4jRecordsToJSON renders records as an indented JSON array of objects keyed by column.
func (s *Neo4jService) Neo4jRecordsToJSON(records []*neo4j.Record) (string, error) {
	return RecordsToJSON(records)
}

func RecordsToJSON(records []*neo4j.Record) (string, error) {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, RecordToMap(record))
	}

	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format records as JSON: %w", err)
	}
	return string(out), nil
}

// RecordToMap converts one record into a JSON-safe map.
func RecordToMap(record *neo4j.Record) map[string]any {
	row := make(map[string]any, len(record.Keys))
	for i, key := range record.Keys {
		if i < len(record.Values) {
			row[key] = SanitizeValue(record.Values[i])
		}
	}
	return row
}

// SanitizeValue turns driver values into plain scalars, maps and lists.
// Graph entities keep their element ids, labels and properties. Temporal and spatial
// values become strings.
func SanitizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64:
		return val
	case []byte:
		return string(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = SanitizeValue(item)
		}
		return out
	case []string:
		return val
	case map[string]any:
		return SanitizeProps(val)
	case dbtype.Node:
		return map[string]any{
			"elementId":  val.ElementId,
			"labels":     val.Labels,
			"properties": SanitizeProps(val.Props),
		}
	case dbtype.Relationship:
		return map[string]any{
			"elementId":      val.ElementId,
			"type":           val.Type,
			"startElementId": val.StartElementId,
			"endElementId":   val.EndElementId,
			"properties":     SanitizeProps(val.Props),
		}
	case dbtype.Path:
		nodes := make([]any, len(val.Nodes))
		for i, n := range val.Nodes {
			nodes[i] = SanitizeValue(n)
		}
		rels := make([]any, len(val.Relationships))
		for i, r := range val.Relationships {
			rels[i] = SanitizeValue(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func SanitizeProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = SanitizeValue(v)
	}
	return out
}
