package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unit-scripts/cobc/pkg/compiler"
	"github.com/unit-scripts/cobc/pkg/objectfile"
)

func decodeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decode <file.cob>",
		Short: "Disassemble a COB object file back to a listing",
		Long: `Decode reads a compiled COB object file and prints a disassembly
listing: the static-variable count, every piece and function name, and
the raw bytecode with operands resolved per opcode arity.

Example:
  cobc decode unit.cob
  cobc decode -o unit.lst unit.cob`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the listing to this file instead of stdout")

	return cmd
}

func runDecode(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	obj, err := objectfile.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode object file: %w", err)
	}

	listing := compiler.Disassemble(obj)

	if outputPath == "" {
		fmt.Print(listing)
		return nil
	}

	if err := os.WriteFile(outputPath, []byte(listing), 0644); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}
	return nil
}
