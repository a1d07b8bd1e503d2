package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/actiflow/actiflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "actiflow",
	Short: "actiflow compiles activity diagrams into runnable chat workflows",
	Long: `actiflow parses PlantUML-style activity-diagram documents into a graph of
nodes and conditional transitions, then walks that graph turn by turn,
producing prompts and choices and dispatching embedded actions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// newLogger builds the CLI logger honoring --verbose.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}
