package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [package]",
		Short: "List ontology entities",
		Long:  "Lists the entities of one package, or of the whole ontology.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := ""
			if len(args) == 1 {
				pkg = args[0]
			}
			return runList(pkg)
		},
	}
}

func runList(pkg string) error {
	return withDeps(func(d *Deps) error {
		list, err := d.OntologyHandler.HandleList(pkg)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No entities found.")
			return nil
		}

		return writeEntityTable(os.Stdout, list)
	})
}
