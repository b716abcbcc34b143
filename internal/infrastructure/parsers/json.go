package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser reads a single JSON object or an array of objects.
type JSONParser struct{}

// Parse reads JSON from the reader and returns the documents it holds.
func (p *JSONParser) Parse(r io.Reader) ([]RawDocument, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return []RawDocument{{Data: raw, LineNum: 1}}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parsing JSON: expected an object or an array of objects: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	docs := make([]RawDocument, 0, len(items))
	for i, item := range items {
		if !isObject(item) {
			return nil, fmt.Errorf("item %d: not a JSON object", i+1)
		}
		docs = append(docs, RawDocument{Data: item, LineNum: i + 1})
	}
	return docs, nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
