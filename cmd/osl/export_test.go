package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/osl-core/internal/domain/entities"
	"github.com/ersonp/osl-core/internal/infrastructure/parsers"
)

func testDocs() []*entities.StoredDocument {
	return []*entities.StoredDocument{
		{
			ID:      "p1",
			Type:    "cim.2.designing.project",
			Name:    "CMIP6",
			Version: 1,
			Body:    []byte("{\n  \"_meta\": {\"uid\": \"p1\"},\n  \"name\": \"CMIP6\"\n}"),
		},
		{
			ID:      "e1",
			Type:    "cim.2.designing.numerical_experiment",
			Name:    "amip | historical",
			Version: 3,
			Body:    []byte(`{"_meta": {"uid": "e1"}, "name": "amip | historical"}`),
		},
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	err := formatJSON(&buf, testDocs())
	require.NoError(t, err)

	// Verify it's valid JSON
	var parsed []map[string]any
	err = json.Unmarshal(buf.Bytes(), &parsed)
	require.NoError(t, err)

	require.Len(t, parsed, 2)
	assert.Equal(t, "CMIP6", parsed[0]["name"])
	assert.Equal(t, "e1", parsed[1]["_meta"].(map[string]any)["uid"])
}

func TestFormatJSON_EmptyDocuments(t *testing.T) {
	var buf bytes.Buffer
	err := formatJSON(&buf, []*entities.StoredDocument{})
	require.NoError(t, err)
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatJSONL(t *testing.T) {
	var buf bytes.Buffer
	err := formatJSONL(&buf, testDocs())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"_meta":{"uid":"p1"},"name":"CMIP6"}`, lines[0])

	// the output reads back as one document per line
	docs, err := (&parsers.JSONLParser{}).Parse(&buf)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestFormatJSONL_BadBody(t *testing.T) {
	docs := []*entities.StoredDocument{{ID: "x", Body: []byte("{")}}

	var buf bytes.Buffer
	err := formatJSONL(&buf, docs)
	assert.ErrorContains(t, err, "document x")
}

func TestFormatMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := formatMarkdown(&buf, testDocs())
	require.NoError(t, err)

	result := buf.String()
	assert.Contains(t, result, "# Exported Documents")
	assert.Contains(t, result, "Total: 2 documents")
	assert.Contains(t, result, "| ID | Type | Name | Version |")
	assert.Contains(t, result, "| p1 | cim.2.designing.project | CMIP6 | 1 |")
	assert.Contains(t, result, "amip \\| historical")
}

func TestFormatDocuments_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := formatDocuments(&buf, testDocs(), "csv")
	assert.Error(t, err)
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "pipe escaped",
			input:    "value|with|pipes",
			expected: "value\\|with\\|pipes",
		},
		{
			name:     "newline replaced",
			input:    "line1\nline2",
			expected: "line1 line2",
		},
		{
			name:     "no change needed",
			input:    "simple text",
			expected: "simple text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := escapeMarkdown(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, contains(validFormats, "json"))
	assert.True(t, contains(validFormats, "jsonl"))
	assert.True(t, contains(validFormats, "markdown"))
	assert.False(t, contains(validFormats, "csv"))
	assert.False(t, contains(validFormats, "JSON")) // case sensitive
}
