package main

import (
	"context"
	"fmt"
	"os"

	"github.com/actiflow/actiflow"
	"github.com/actiflow/actiflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the compiled graph as Mermaid",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one document path")
		}
		return runGraph(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	eng := actiflow.New(actiflow.WithLogger(newLogger(cmd)))
	def, err := eng.Compile(context.Background(), string(text), "graph", "graph")
	if err != nil {
		return err
	}

	fmt.Print(graph.GenerateMermaid(def, nil))
	return nil
}
