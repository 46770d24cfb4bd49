package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/similarity"
	"github.com/jonathan/candidate-matcher/internal/types"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find employment histories similar to a candidate's or to given ones",
	Long: "Compares an employment history against every stored history and reports likely copies. " +
		"Pass --candidate to check a stored candidate, or --org and --date (repeatable, most recent first) " +
		"to check an arbitrary history.",
	RunE: runSimilar,
}

var (
	similarCandidate string
	similarOrgs      []string
	similarDates     []string
	similarExclude   string
	similarFlag      bool
	similarSave      bool
	similarOutput    string
)

func init() {
	similarCmd.Flags().StringVarP(&similarCandidate, "candidate", "c", "", "Stored candidate ID to check")
	similarCmd.Flags().StringArrayVar(&similarOrgs, "org", nil, "Organization name (repeatable)")
	similarCmd.Flags().StringArrayVar(&similarDates, "date", nil, "Date phrase (repeatable)")
	similarCmd.Flags().StringVar(&similarExclude, "exclude", "", "Candidate ID to leave out of the comparison")
	similarCmd.Flags().BoolVar(&similarFlag, "flag", false, "Invalidate the checked candidate when the report is suspicious")
	similarCmd.Flags().BoolVar(&similarSave, "save", false, "Cache the matches in the database")
	similarCmd.Flags().StringVarP(&similarOutput, "out", "o", "", "Path to output SimilarityReport JSON file (default stdout)")

	similarCmd.MarkFlagsMutuallyExclusive("candidate", "org")
	similarCmd.MarkFlagsMutuallyExclusive("candidate", "date")
	similarCmd.MarkFlagsOneRequired("candidate", "org", "date")

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, _ []string) error {
	subject := similarCandidate
	if subject == "" {
		subject = similarExclude
	}
	if (similarFlag || similarSave) && subject == "" {
		return fmt.Errorf("--flag and --save need --candidate or --exclude to name the checked candidate")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
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

	ctx := cmd.Context()
	store, err := openStore(ctx, settings, log)
	if err != nil {
		return err
	}
	defer store.Close()

	service := similarity.NewService(store, policy, log)

	var report *types.SimilarityReport
	if similarCandidate != "" {
		report, err = service.CheckCandidate(ctx, similarCandidate)
	} else {
		var matches []types.SimilarityMatch
		matches, err = service.DetectSimilarHistories(ctx, types.SimilarityRequest{
			Organizations:      similarOrgs,
			Dates:              similarDates,
			ExcludeCandidateID: similarExclude,
		})
		report = similarity.NewReport(similarExclude, matches)
	}
	if err != nil {
		return fmt.Errorf("failed to check similarity: %w", err)
	}

	if settings.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintSimilarity(report)
	}

	if similarSave {
		saved, err := store.saveSimilarityMatches(ctx, subject, report.Matches)
		if err != nil {
			return err
		}
		if !saved {
			log.Warn("--save ignored: matches are only cached in a database")
		}
	}

	if similarFlag && report.Suspicious {
		if err := store.invalidate(ctx, subject); err != nil {
			return err
		}
		log.Info("candidate invalidated", zap.String("candidate_id", subject))
	}

	return writeOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), similarOutput, schemas.SimilarityReport, report)
}
