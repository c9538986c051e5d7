// Command snowball builds candidate relation tuples from annotated sentences.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/snowball/internal/config"
)

var (
	envName    string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "snowball",
	Short: "Bootstrapped relation extraction",
	Long: `snowball loads a run (parameters, seed pairs, annotated sentences),
builds the term-weighting model of the corpus and turns entity pairs into
candidate tuples with weighted context vectors.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "environment name, selects config/<env>.yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "explicit config file (overrides --env lookup)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
