package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Rebuild a document from the store",
		Long:  "Loads a stored document and every stored document it references, links them together and reports what could not be found.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0])
		},
	}
}

func runResolve(cmd *cobra.Command, id string) error {
	ctx := cmd.Context()

	return withStore(func(d *Deps) error {
		result, err := d.DocumentHandler.HandleResolve(ctx, id)
		if err != nil {
			return err
		}

		root := result.Root
		fmt.Printf("%s %s\n", root.Descriptor().FullTypeKey, root.GetString("name"))
		fmt.Printf("  Linked documents: %d\n", result.Linked)

		if len(result.Unresolved) > 0 {
			warn := color.New(color.FgYellow)
			warn.Printf("  Unresolved references: %d\n", len(result.Unresolved))
			for _, u := range result.Unresolved {
				warn.Printf("    %s\n", u)
			}
		}
		return nil
	})
}
