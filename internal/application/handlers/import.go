package handlers

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/osl-core/internal/infrastructure/codec"
	"github.com/ersonp/osl-core/internal/infrastructure/parsers"
)

// ConflictStrategy determines how to handle documents already in the store.
type ConflictStrategy string

const (
	ConflictSkip      ConflictStrategy = "skip"
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ImportHandler handles importing documents from files into the store.
type ImportHandler struct {
	documents *DocumentHandler
}

// NewImportHandler creates a new import handler.
func NewImportHandler(documents *DocumentHandler) *ImportHandler {
	return &ImportHandler{
		documents: documents,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string           // "json", "jsonl", or "auto"
	From       string           // dialect of the documents, default native
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing documents
}

// ImportError represents an error for a specific document during import.
type ImportError struct {
	Line    int // Line number (1-indexed)
	Message string
}

func (e ImportError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// Handle imports every document of a file. Each document is sharded, so
// documents nested inline are stored on their own. Documents that fail to
// decode are reported and skipped.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	store := h.documents.store
	if store == nil {
		return nil, errNoStore
	}

	// Get parser
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	// Open file
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	raws, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	from := opts.From
	if from == "" {
		from = string(codec.DialectNative)
	}
	native := codec.NewNative(h.documents.factory, codec.WithLogger(h.documents.logger))

	result := &ImportResult{}
	for _, raw := range raws {
		inst, err := h.documents.HandleDecode(raw.Data, from)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Line: raw.LineNum, Message: err.Error()})
			continue
		}
		_, members, err := native.Shard(inst)
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Line: raw.LineNum, Message: err.Error()})
			continue
		}

		for _, member := range members {
			doc, err := storedDocument(member)
			if err != nil {
				result.Errors = append(result.Errors, ImportError{Line: raw.LineNum, Message: err.Error()})
				continue
			}

			if opts.OnConflict != ConflictOverwrite {
				existing, err := store.FindDocument(ctx, doc.ID)
				if err != nil {
					return nil, fmt.Errorf("checking %s: %w", doc.ID, err)
				}
				if existing != nil {
					result.Skipped++
					continue
				}
			}

			if !opts.DryRun {
				if err := store.SaveDocument(ctx, doc); err != nil {
					return nil, fmt.Errorf("storing %s: %w", doc.ID, err)
				}
				h.documents.logger.Debug("imported document", zap.String("id", doc.ID), zap.Int("line", raw.LineNum))
			}
			result.Imported++
		}
	}

	return result, nil
}
