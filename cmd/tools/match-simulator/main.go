// Package main provides match-simulator, an offline tool for running the
// matching engine against JSON snapshots and checking config files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "match-simulator",
	Short: "Offline expert matching runs and config checks",
	Long:  "match-simulator scores candidate snapshots against an opportunity without a database or broker, and validates scoring configs and the activity registry before they are deployed.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr (debug, info, warn, error)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
