// Package main provides the matcher CLI for ranking candidates against job
// openings and detecting copied employment histories.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matcher",
	Short: "Candidate matching and employment-history similarity engine",
	Long: "Ranks a candidate pool against a job opening using title, skill, location, client and seniority scores, " +
		"and flags candidates whose employment history resembles someone else's.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath  string
	dataPath    string
	databaseURL string
	catalogPath string
	verbose     bool
	logJSON     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Path to a JSON dataset (used when no database is configured)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to a catalog override YAML")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
