package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDocumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents [entity]",
		Short: "List stored documents",
		Long:  "Lists the documents in the store, optionally only those of one entity type.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType := ""
			if len(args) == 1 {
				docType = args[0]
			}
			return runDocuments(cmd, docType)
		},
	}
}

func runDocuments(cmd *cobra.Command, docType string) error {
	ctx := cmd.Context()

	return withStore(func(d *Deps) error {
		docs, err := d.DocumentHandler.HandleListStored(ctx, docType)
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			fmt.Println("No documents found.")
			return nil
		}

		return writeDocumentTable(os.Stdout, docs)
	})
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return withStore(func(d *Deps) error {
				for _, id := range args {
					if err := d.DocumentHandler.HandleDelete(ctx, id); err != nil {
						return err
					}
					fmt.Printf("Deleted %s\n", id)
				}
				return nil
			})
		},
	}
}
