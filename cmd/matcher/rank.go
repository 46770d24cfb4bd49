package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates against a job opening",
	Long: "Scores every active candidate against a job opening and prints the best matches, " +
		"sorted by score, as a RankingReport JSON.",
	RunE: runRank,
}

var (
	rankJobID        string
	rankMinThreshold float64
	rankLimit        int
	rankWorkers      int
	rankSave         bool
	rankCached       bool
	rankOutput       string
)

func init() {
	rankCmd.Flags().StringVarP(&rankJobID, "job", "j", "", "Job opening ID (required)")
	rankCmd.Flags().Float64Var(&rankMinThreshold, "min-threshold", types.DefaultMinThreshold, "Minimum composite score in [0, 1]")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", types.DefaultLimit, "Maximum number of results")
	rankCmd.Flags().IntVar(&rankWorkers, "workers", 0, "Concurrent candidate scorers (default GOMAXPROCS)")
	rankCmd.Flags().BoolVar(&rankSave, "save", false, "Cache the results in the database")
	rankCmd.Flags().BoolVar(&rankCached, "cached", false, "Print the results cached by an earlier --save run instead of scoring")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to output RankingReport JSON file (default stdout)")

	if err := rankCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	rankCmd.MarkFlagsMutuallyExclusive("cached", "save")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("min-threshold") {
		settings.MinThreshold = &rankMinThreshold
	}
	if cmd.Flags().Changed("limit") {
		settings.Limit = rankLimit
	}
	if cmd.Flags().Changed("workers") {
		settings.Workers = rankWorkers
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	req := types.RankRequest{JobID: rankJobID, MinThreshold: settings.Threshold(), Limit: settings.Limit}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid rank request: %w", err)
	}

	log, err := newLogger(settings)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	store, err := openStore(ctx, settings, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var results []types.MatchResult
	if rankCached {
		results, err = cachedResults(ctx, store, req)
	} else {
		results, err = scoreCandidates(cmd, store, settings, req, log)
	}
	if err != nil {
		return err
	}

	report := types.RankingReport{
		JobID:        req.JobID,
		MinThreshold: req.MinThreshold,
		Limit:        req.Limit,
		Results:      results,
	}
	if err := writeOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), rankOutput, schemas.MatchResults, report); err != nil {
		return err
	}

	log.Info("ranking complete",
		zap.String("job_id", req.JobID),
		zap.Int("results", len(results)))
	if rankOutput != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully ranked %d candidates to %s\n", len(results), rankOutput)
	}
	return nil
}

// scoreCandidates runs a fresh ranking pass and caches it when --save is set.
func scoreCandidates(cmd *cobra.Command, store *backend, settings config.Config, req types.RankRequest, log *zap.Logger) ([]types.MatchResult, error) {
	ctx := cmd.Context()
	cat, err := loadCatalog(settings.Catalog)
	if err != nil {
		return nil, err
	}

	scorer, err := ranking.NewScorer(store, ranking.Config{
		Weights: settings.Weights,
		Workers: settings.Workers,
		Catalog: cat,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	results, err := scorer.RankCandidates(ctx, req.JobID, ranking.Options{
		MinThreshold: req.MinThreshold,
		Limit:        req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	if settings.Verbose {
		job, err := store.GetJob(ctx, req.JobID)
		if err == nil && job != nil {
			printer := observability.NewPrinter(cmd.ErrOrStderr())
			printer.PrintJob(job)
			printer.PrintSkillTargets(scorer.SkillTargets(job))
			printer.PrintMatchResults(results)
		}
	}

	if rankSave {
		saved, err := store.saveMatchResults(ctx, req.JobID, results)
		if err != nil {
			return nil, err
		}
		if !saved {
			log.Warn("--save ignored: results are only cached in a database")
		}
	}
	return results, nil
}

// cachedResults reads a saved ranking, applying the request's threshold and limit.
func cachedResults(ctx context.Context, store *backend, req types.RankRequest) ([]types.MatchResult, error) {
	cached, ok, err := store.matchResults(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("--cached requires a database: set --database-url or DATABASE_URL")
	}
	return filterResults(cached, req.MinThreshold, req.Limit), nil
}

// filterResults keeps results at or above threshold, at most limit of them.
// Input order is preserved.
func filterResults(results []types.MatchResult, threshold float64, limit int) []types.MatchResult {
	kept := make([]types.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Composite < threshold {
			continue
		}
		if limit > 0 && len(kept) == limit {
			break
		}
		kept = append(kept, r)
	}
	return kept
}
