package parsers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineSize bounds a single JSONL document.
const maxLineSize = 16 << 20

// JSONLParser reads one JSON object per line, as printed by osl bundle.
// Blank lines are skipped.
type JSONLParser struct{}

// Parse reads JSONL from the reader and returns one document per line.
func (p *JSONLParser) Parse(r io.Reader) ([]RawDocument, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var docs []RawDocument
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !isObject(line) || !json.Valid(line) {
			return nil, fmt.Errorf("line %d: not a JSON object", lineNum)
		}
		data := make(json.RawMessage, len(line))
		copy(data, line)
		docs = append(docs, RawDocument{Data: data, LineNum: lineNum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNum+1, err)
	}
	return docs, nil
}
