package main

import (
	"fmt"
	"strings"

	"github.com/actiflow/actiflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of actiflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("actiflow version %s\n", strings.TrimSpace(actiflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
