package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/osl-core/internal/domain/entities"
)

type exportFlags struct {
	format  string
	output  string
	docType string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored documents to file",
		Long:  "Exports stored documents as a JSON array, JSONL (re-importable with 'osl import') or a markdown index.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "jsonl", "Output format (json, jsonl, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&flags.docType, "type", "t", "", "Only export documents of this entity")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	ctx := cmd.Context()

	return withStore(func(d *Deps) error {
		docs, err := d.DocumentHandler.HandleListStored(ctx, flags.docType)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no documents found to export")
		}
		return export(docs, flags.format, flags.output)
	})
}

func export(docs []*entities.StoredDocument, format, output string) (err error) {
	var w io.Writer

	if output != "" {
		f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	} else {
		w = os.Stdout
	}

	if err := formatDocuments(w, docs, format); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Printf("Exported %d documents to %s\n", len(docs), output)
	}

	return nil
}

func formatDocuments(w io.Writer, docs []*entities.StoredDocument, format string) error {
	switch format {
	case "json":
		return formatJSON(w, docs)
	case "jsonl":
		return formatJSONL(w, docs)
	case "markdown":
		return formatMarkdown(w, docs)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatJSON(w io.Writer, docs []*entities.StoredDocument) error {
	bodies := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		bodies = append(bodies, d.Body)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(bodies)
}

func formatJSONL(w io.Writer, docs []*entities.StoredDocument) error {
	for _, d := range docs {
		var buf bytes.Buffer
		if err := json.Compact(&buf, d.Body); err != nil {
			return fmt.Errorf("document %s: %w", d.ID, err)
		}
		buf.WriteByte('\n')
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func formatMarkdown(w io.Writer, docs []*entities.StoredDocument) error {
	if _, err := fmt.Fprintf(w, "# Exported Documents\n\nTotal: %d documents\n\n", len(docs)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| ID | Type | Name | Version |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|----|------|------|---------|\n"); err != nil {
		return err
	}

	for _, d := range docs {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %d |\n",
			d.ID,
			d.Type,
			escapeMarkdown(d.Name),
			d.Version,
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
