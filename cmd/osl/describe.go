package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <entity>",
		Short: "Describe an ontology entity",
		Long:  "Shows the resolved properties of a class (inherited ones included) or the members of an enumeration.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(args[0])
		},
	}
}

func runDescribe(key string) error {
	return withDeps(func(d *Deps) error {
		desc, err := d.OntologyHandler.HandleDescribe(key)
		if err != nil {
			return err
		}
		return writeDescription(os.Stdout, desc)
	})
}
