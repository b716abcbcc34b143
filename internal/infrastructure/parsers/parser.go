// Package parsers splits document input files into individual encoded
// documents.
package parsers

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
)

// RawDocument is one encoded document read from an input file, not yet decoded.
type RawDocument struct {
	Data    json.RawMessage
	LineNum int // Line (JSONL) or array position (JSON), 1-indexed
}

// Parser defines the interface for splitting an input into documents.
type Parser interface {
	Parse(r io.Reader) ([]RawDocument, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "jsonl".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "jsonl", "ndjson":
		return &JSONLParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".jsonl", ".ndjson":
		return &JSONLParser{}
	default:
		return nil
	}
}
