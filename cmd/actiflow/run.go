package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/actiflow/actiflow"
	"github.com/actiflow/actiflow/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run <document>",
	Short: "Run a workflow interactively",
	Long: `Compiles the document and walks it turn by turn: messages are printed,
choices are offered as numbered options, and embedded actions are dispatched
against the built-in demo registry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		instanceID, _ := cmd.Flags().GetString("instance")
		return runInteractive(cmd, args[0], instanceID, headless)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Suppress banner and plain-print notes (no ANSI rendering)")
	runCmd.Flags().String("instance", "local", "Instance id to run under")
}

func runInteractive(cmd *cobra.Command, path, instanceID string, headless bool) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	eng := actiflow.New(actiflow.WithLogger(newLogger(cmd)))
	registerDemoActions(eng.Registry())

	def, err := eng.Compile(context.Background(), string(text), id, id)
	if err != nil {
		return err
	}

	interactive := !headless && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		tui.PrintBanner()
	}

	runner := actiflow.NewRunner()
	runner.Input = os.Stdin
	runner.Output = os.Stdout
	runner.Headless = !interactive
	if interactive {
		runner.Renderer = tui.NewRenderer()
	}

	return runner.Run(context.Background(), eng, def, instanceID)
}
