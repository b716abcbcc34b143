package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/osl-core/internal/application/handlers"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize an osl workspace",
		Long:  "Creates a .osl directory with default configuration and an empty document store.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	basePath, err := workspace()
	if err != nil {
		return err
	}

	result, err := handlers.NewInitHandler(openStore).Handle(cmd.Context(), basePath)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created document store: %s\n", result.StorePath)
	fmt.Println("Point ontology.path at your schema, then run 'osl list'.")

	return nil
}
