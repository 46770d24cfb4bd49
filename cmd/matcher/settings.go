package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/dataset"
	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/similarity"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// loadSettings merges the config file, the environment and the command's flags,
// in increasing order of precedence.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	envCfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}

	settings := envCfg.MergeWithDefaults(fileCfg)
	settings.Verbose = fileCfg.Verbose
	settings.LogJSON = fileCfg.LogJSON

	flags := cmd.Flags()
	if flags.Changed("data") {
		settings.Data = dataPath
	}
	if flags.Changed("database-url") {
		settings.DatabaseURL = databaseURL
	}
	if flags.Changed("catalog") {
		settings.Catalog = catalogPath
	}
	if flags.Changed("verbose") {
		settings.Verbose = verbose
	}
	if flags.Changed("log-json") {
		settings.LogJSON = logJSON
	}

	return settings, nil
}

// newLogger builds the command logger from the settings.
func newLogger(settings config.Config) (*zap.Logger, error) {
	log, err := logger.New(settings.LogJSON, settings.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// loadCatalog returns the catalog at path, or the built-in one when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// loadDataset loads a dataset file, checking it against the dataset schema
// when the schema file can be found.
func loadDataset(path string, log *zap.Logger) (*dataset.Store, error) {
	schema, err := schemas.Load(schemas.Dataset)
	if err != nil {
		log.Debug("dataset schema unavailable, skipping input validation", zap.Error(err))
		return dataset.Load(path)
	}
	return dataset.LoadChecked(path, schema)
}

// recordStore is everything the commands read from and write to a store.
type recordStore interface {
	ranking.Store
	similarity.HistoryStore
	InvalidateCandidate(ctx context.Context, candidateID string) error
}

// backend is an open store, either PostgreSQL or a dataset file.
type backend struct {
	recordStore

	db       *db.DB
	dataset  *dataset.Store
	dataPath string
}

// openStore connects to the database when a URL is configured and falls back
// to the dataset file otherwise.
func openStore(ctx context.Context, settings config.Config, log *zap.Logger) (*backend, error) {
	switch {
	case settings.DatabaseURL != "":
		database, err := db.Connect(ctx, settings.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Debug("using database store")
		return &backend{recordStore: database, db: database}, nil

	case settings.Data != "":
		store, err := loadDataset(settings.Data, log)
		if err != nil {
			return nil, err
		}
		log.Debug("using dataset store", zap.String("path", settings.Data))
		return &backend{recordStore: store, dataset: store, dataPath: settings.Data}, nil

	default:
		return nil, fmt.Errorf("no data source: set --database-url, DATABASE_URL, --data or MATCHER_DATA")
	}
}

// Close releases the database pool, if any.
func (b *backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
}

// invalidate flags a candidate and persists the change for file-backed stores.
func (b *backend) invalidate(ctx context.Context, candidateID string) error {
	if err := b.InvalidateCandidate(ctx, candidateID); err != nil {
		return fmt.Errorf("failed to invalidate candidate %s: %w", candidateID, err)
	}
	if b.dataset != nil {
		if err := b.dataset.Save(b.dataPath); err != nil {
			return err
		}
	}
	return nil
}

// saveMatchResults caches a ranking in the database. It reports false when the
// store has no cache.
func (b *backend) saveMatchResults(ctx context.Context, jobID string, results []types.MatchResult) (bool, error) {
	if b.db == nil {
		return false, nil
	}
	return true, b.db.SaveMatchResults(ctx, jobID, results)
}

// matchResults reads a cached ranking from the database. It reports false
// when the store has no cache.
func (b *backend) matchResults(ctx context.Context, jobID string) ([]types.MatchResult, bool, error) {
	if b.db == nil {
		return nil, false, nil
	}
	results, err := b.db.GetMatchResults(ctx, jobID)
	if err != nil {
		return nil, true, err
	}
	return results, true, nil
}

// saveSimilarityMatches caches similarity matches in the database. It reports
// false when the store has no cache.
func (b *backend) saveSimilarityMatches(ctx context.Context, candidateID string, matches []types.SimilarityMatch) (bool, error) {
	if b.db == nil {
		return false, nil
	}
	return true, b.db.SaveSimilarityMatches(ctx, candidateID, matches)
}
