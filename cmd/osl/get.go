package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var (
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored document",
		Long:  "Prints a stored document as saved (native dialect, references unresolved), or converted with --to.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args[0], to, output)
		},
	}

	cmd.Flags().StringVar(&to, "to", "native", "Output dialect (native, legacy)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGet(cmd *cobra.Command, id, to, output string) error {
	ctx := cmd.Context()

	return withStore(func(d *Deps) error {
		doc, err := d.DocumentHandler.HandleGet(ctx, id)
		if err != nil {
			return err
		}

		body := doc.Body
		if to != "native" {
			body, err = d.DocumentHandler.HandleConvert(body, "native", to)
			if err != nil {
				return err
			}
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return fmt.Errorf("formatting document: %w", err)
		}
		buf.WriteByte('\n')
		return writeOutput(output, buf.Bytes())
	})
}
