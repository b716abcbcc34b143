package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		from   string
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document between dialects",
		Long:  "Decodes a JSON document written in one dialect and re-encodes it in another. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], from, to, output)
		},
	}

	cmd.Flags().StringVar(&from, "from", "native", "Input dialect (native, legacy)")
	cmd.Flags().StringVar(&to, "to", "", "Output dialect (default: codec.dialect from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runConvert(path, from, to, output string) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	return withDeps(func(d *Deps) error {
		if to == "" {
			to = d.Config.Codec.Dialect
		}

		out, err := d.DocumentHandler.HandleConvert(data, from, to)
		if err != nil {
			return err
		}
		return writeOutput(output, append(out, '\n'))
	})
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// writeOutput writes data to a file, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
