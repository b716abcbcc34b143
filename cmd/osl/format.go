package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ersonp/osl-core/internal/application/handlers"
	"github.com/ersonp/osl-core/internal/domain/entities"
)

var (
	flagColor = color.New(color.FgCyan)
	headColor = color.New(color.Bold)
)

// writeEntityTable prints one row per entity.
func writeEntityTable(w io.Writer, list []handlers.EntitySummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tTYPE\tBASE\tFLAGS")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, e.Type, e.Base, strings.Join(flags(e.IsDocument, e.IsAbstract, false), ","))
	}
	return tw.Flush()
}

// writeDescription prints a resolved entity.
func writeDescription(w io.Writer, desc *handlers.EntityDescription) error {
	headColor.Fprintf(w, "%s", desc.FullTypeKey)
	if f := flags(desc.IsDocument, desc.IsAbstract, desc.IsOpen); len(f) > 0 {
		flagColor.Fprintf(w, " [%s]", strings.Join(f, ", "))
	}
	fmt.Fprintln(w)
	if desc.Doc != "" {
		fmt.Fprintf(w, "  %s\n", desc.Doc)
	}
	if len(desc.Hierarchy) > 0 {
		fmt.Fprintf(w, "  inherits: %s\n", strings.Join(desc.Hierarchy, " > "))
	}

	if desc.Type == entities.RecordEnum {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MEMBER\tDESCRIPTION")
		for _, m := range desc.Members {
			fmt.Fprintf(tw, "%s\t%s\n", m.Value, m.Description)
		}
		return tw.Flush()
	}

	defaults := make(map[string]any, len(desc.Defaults))
	for _, c := range desc.Defaults {
		defaults[c.Property] = c.Value
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPERTY\tTARGET\tCARDINALITY\tDEFAULT\tDOC")
	for _, p := range desc.Properties {
		def := ""
		if v, ok := defaults[p.Name]; ok {
			def = fmt.Sprint(v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Target, p.Cardinality, def, truncate(p.Doc, 50))
	}
	return tw.Flush()
}

// writeDocumentTable prints one row per stored document.
func writeDocumentTable(w io.Writer, docs []*entities.StoredDocument) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tVERSION\tUPDATED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.ID, d.Type, d.Name, d.Version, d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func flags(document, abstract, open bool) []string {
	var out []string
	if document {
		out = append(out, "document")
	}
	if abstract {
		out = append(out, "abstract")
	}
	if open {
		out = append(out, "open")
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
