package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/actiflow/actiflow"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var compileCmd = &cobra.Command{
	Use:   "compile <document>",
	Short: "Compile an activity-diagram document into a workflow definition",
	Long: `Parses the document and prints the compiled definition (nodes, transitions
and start points) as JSON or YAML. Unrecognized constructs are skipped and
reported as diagnostics on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		id, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		return runCompile(cmd, args[0], id, name, output)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	compileCmd.Flags().String("id", "", "Definition id (default: document file name)")
	compileCmd.Flags().String("name", "", "Definition name (default: definition id)")
}

func runCompile(cmd *cobra.Command, path, id, name, output string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if name == "" {
		name = id
	}

	eng := actiflow.New(actiflow.WithLogger(newLogger(cmd)))
	def, diags, err := eng.CompileWithDiagnostics(context.Background(), string(text), id, name)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}

	switch output {
	case "yaml":
		data, err := yaml.Marshal(def)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	return nil
}
