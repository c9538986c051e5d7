package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/snowball/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "snowball %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
