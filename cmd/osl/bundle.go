package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newBundleCmd() *cobra.Command {
	var (
		from   string
		store  bool
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "bundle <file>",
		Short: "Split a document into its sub-documents",
		Long: `Shards a document into a bundle: the document itself plus every document it
contains, each with nested documents replaced by references. Members are
printed one per line, written to --out-dir as <uid>.json, or saved to the
document store with --store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			if store {
				return runBundleStore(cmd, data, from)
			}
			return runBundle(data, from, outDir)
		},
	}

	cmd.Flags().StringVar(&from, "from", "native", "Input dialect (native, legacy)")
	cmd.Flags().BoolVarP(&store, "store", "s", false, "Save the bundle to the document store")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Write one file per bundle member")

	return cmd
}

func runBundle(data []byte, from, outDir string) error {
	return withDeps(func(d *Deps) error {
		bundle, err := d.DocumentHandler.HandleBundle(data, from)
		if err != nil {
			return err
		}

		if outDir == "" {
			for _, member := range bundle {
				fmt.Println(member)
			}
			return nil
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		for _, member := range bundle {
			uid, err := memberUID(member)
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, uid+".json")
			if err := os.WriteFile(path, []byte(member+"\n"), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Printf("Wrote %s\n", path)
		}
		return nil
	})
}

func runBundleStore(cmd *cobra.Command, data []byte, from string) error {
	ctx := cmd.Context()

	return withStore(func(d *Deps) error {
		result, err := d.DocumentHandler.HandleStoreBundle(ctx, data, from)
		if err != nil {
			return err
		}

		fmt.Printf("Stored %d documents (root %s):\n", len(result.Documents), result.RootID)
		return writeDocumentTable(os.Stdout, result.Documents)
	})
}

// memberUID reads _meta.uid out of an encoded bundle member.
func memberUID(member string) (string, error) {
	var doc struct {
		Meta struct {
			UID string `json:"uid"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal([]byte(member), &doc); err != nil {
		return "", fmt.Errorf("reading bundle member: %w", err)
	}
	if doc.Meta.UID == "" {
		return "", fmt.Errorf("bundle member has no uid")
	}
	return doc.Meta.UID, nil
}
