package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables",
	Long:  "Creates any missing tables and indexes in the database named by --database-url or DATABASE_URL.",
	RunE:  runMigrate,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a JSON dataset into the database",
	Long:  "Migrates the database, then upserts every job, candidate and employment history from the --data file.",
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
}

// connectForWrite opens and migrates the configured database.
func connectForWrite(cmd *cobra.Command) (*db.DB, *zap.Logger, string, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	if settings.DatabaseURL == "" {
		return nil, nil, "", fmt.Errorf("DATABASE_URL environment variable or --database-url is required")
	}

	log, err := newLogger(settings)
	if err != nil {
		return nil, nil, "", err
	}

	database, err := db.Connect(cmd.Context(), settings.DatabaseURL)
	if err != nil {
		return nil, nil, "", err
	}
	if err := database.Migrate(cmd.Context()); err != nil {
		database.Close()
		return nil, nil, "", err
	}
	return database, log, settings.Data, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	database, log, _, err := connectForWrite(cmd)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = log.Sync() }()

	log.Info("database schema is up to date")
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	database, log, dataFile, err := connectForWrite(cmd)
	if err != nil {
		return err
	}
	defer database.Close()
	defer func() { _ = log.Sync() }()

	if dataFile == "" {
		return fmt.Errorf("--data or MATCHER_DATA is required")
	}
	store, err := loadDataset(dataFile, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	records := store.Snapshot()
	for i := range records.Jobs {
		if _, err := database.CreateJob(ctx, &records.Jobs[i]); err != nil {
			return err
		}
	}
	for i := range records.Candidates {
		if _, err := database.CreateCandidate(ctx, &records.Candidates[i]); err != nil {
			return err
		}
	}
	for i := range records.Histories {
		if err := database.UpsertEmploymentHistory(ctx, &records.Histories[i]); err != nil {
			return err
		}
	}

	log.Info("dataset imported",
		zap.String("path", dataFile),
		zap.Int("jobs", len(records.Jobs)),
		zap.Int("candidates", len(records.Candidates)),
		zap.Int("histories", len(records.Histories)))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d jobs, %d candidates and %d histories\n",
		len(records.Jobs), len(records.Candidates), len(records.Histories))
	return nil
}
