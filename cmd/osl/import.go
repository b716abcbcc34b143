package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/osl-core/internal/application/handlers"
)

type importFlags struct {
	format     string
	from       string
	dryRun     bool
	onConflict string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import documents from JSON or JSONL",
		Long:  "Stores every document of a file, one JSON document, a JSON array, or one document per line as printed by 'osl bundle'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, jsonl, auto)")
	cmd.Flags().StringVar(&flags.from, "from", "native", "Input dialect (native, legacy)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	// Validate on-conflict flag
	if flags.onConflict != string(handlers.ConflictSkip) && flags.onConflict != string(handlers.ConflictOverwrite) {
		return fmt.Errorf("invalid --on-conflict value %q (valid: skip, overwrite)", flags.onConflict)
	}

	ctx := cmd.Context()

	return withStore(func(d *Deps) error {
		handler := handlers.NewImportHandler(d.DocumentHandler)
		opts := handlers.ImportOptions{
			Format:     flags.format,
			From:       flags.from,
			DryRun:     flags.dryRun,
			OnConflict: handlers.ConflictStrategy(flags.onConflict),
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := handler.Handle(ctx, filePath, opts)
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		// Display errors
		if len(result.Errors) > 0 {
			fmt.Printf("\nErrors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		// Display summary
		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d documents would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d documents", result.Imported)
		}

		if result.Skipped > 0 {
			fmt.Printf(", %d skipped (already exist)", result.Skipped)
		}

		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}

		fmt.Println()

		return nil
	})
}
