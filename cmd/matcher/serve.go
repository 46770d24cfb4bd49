package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/server"
	"github.com/jonathan/candidate-matcher/internal/similarity"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes ranking and similarity endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		settings.Port = servePort
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	policy, err := settings.Policy()
	if err != nil {
		return err
	}

	log, err := newLogger(settings)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, settings, log)
	if err != nil {
		return err
	}
	defer store.Close()

	cat, err := loadCatalog(settings.Catalog)
	if err != nil {
		return err
	}

	scorer, err := ranking.NewScorer(store, ranking.Config{
		Weights: settings.Weights,
		Workers: settings.Workers,
		Catalog: cat,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to create scorer: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:       settings.Port,
		Ranker:     scorer,
		Similarity: similarity.NewService(store, policy, log),
		Logger:     log,
		RateLimit:  settings.RateLimit,
		RateBurst:  settings.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
