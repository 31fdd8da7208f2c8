package claims

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile decodes raw claim payloads from a .json or .csv file.
func ReadFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open claims file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DecodeCSV(f)
	case ".json":
		return DecodeJSON(f)
	default:
		return nil, fmt.Errorf("unsupported claims file extension %q (want .json or .csv)", filepath.Ext(path))
	}
}

// DecodeJSON reads either a single claim object or an array of them.
func DecodeJSON(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read claims JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("claims JSON is empty")
	}

	if data[0] == '[' {
		var payloads []map[string]any
		if err := json.Unmarshal(data, &payloads); err != nil {
			return nil, fmt.Errorf("failed to parse claims JSON array: %w", err)
		}
		return payloads, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse claim JSON object: %w", err)
	}
	return []map[string]any{payload}, nil
}

// DecodeCSV reads one payload per row keyed by the header row. Empty cells are omitted.
func DecodeCSV(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("claims CSV has no header row")
		}
		return nil, fmt.Errorf("failed to read claims CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimPrefix(strings.TrimSpace(header[i]), "\uFEFF")
	}

	var payloads []map[string]any
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read claims CSV line %d: %w", line, err)
		}

		payload := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) || strings.TrimSpace(cell) == "" {
				continue
			}
			payload[header[i]] = cell
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}
