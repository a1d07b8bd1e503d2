package main

import (
	"context"
	"fmt"
	"os"

	"github.com/actiflow/actiflow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Check a document for consistency",
	Long: `Compiles the document and reports diagnostics: skipped constructs,
auto-closed blocks and referential integrity of the resulting graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one document path")
		}
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	eng := actiflow.New(actiflow.WithLogger(newLogger(cmd)))
	def, diags, err := eng.CompileWithDiagnostics(context.Background(), string(text), "validate", "validate")
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}

	startID, err := eng.StartNode(def)
	if err != nil {
		return err
	}

	fmt.Printf("Document is valid: %d nodes, %d transitions, start at %q", len(def.Nodes), len(def.Transitions), startID)
	if len(diags) > 0 {
		fmt.Printf(" (%d warnings)", len(diags))
	}
	fmt.Println()
	return nil
}
