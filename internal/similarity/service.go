package similarity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// ErrHistoryNotFound is matched by errors.Is when a candidate has no stored history.
var ErrHistoryNotFound = errors.New("employment history not found")

// NotFoundError reports the candidate whose history could not be found
type NotFoundError struct {
	CandidateID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("candidate %s: %v", e.CandidateID, ErrHistoryNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrHistoryNotFound
}

// HistorySource lists every stored employment history in one bulk read.
type HistorySource interface {
	ListEmploymentHistories(ctx context.Context) ([]types.EmploymentHistory, error)
}

// HistoryStore adds point reads of a single candidate's history.
// GetEmploymentHistory returns (nil, nil) when the candidate has none.
type HistoryStore interface {
	HistorySource
	GetEmploymentHistory(ctx context.Context, candidateID string) (*types.EmploymentHistory, error)
}

// Service loads histories from a store and runs the detector over them.
type Service struct {
	source HistorySource
	policy parsing.OrganizationPolicy
	logger *zap.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(source HistorySource, policy parsing.OrganizationPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, policy: policy, logger: logger}
}

// DetectSimilarHistories finds stored histories similar to the requested organizations and dates.
func (s *Service) DetectSimilarHistories(ctx context.Context, req types.SimilarityRequest) ([]types.SimilarityMatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	histories, err := s.source.ListEmploymentHistories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employment histories: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detector := NewDetector(histories, s.policy)
	matches := detector.FindSimilarHistories(req.Organizations, req.Dates, req.ExcludeCandidateID)

	s.logger.Info("similarity check complete",
		zap.String("exclude_candidate_id", req.ExcludeCandidateID),
		zap.Int("pool", detector.Len()),
		zap.Int("matches", len(matches)),
		zap.Bool("suspicious", Suspicious(matches)))
	return matches, nil
}

// CheckCandidate compares a stored candidate's history with everyone else's.
func (s *Service) CheckCandidate(ctx context.Context, candidateID string) (*types.SimilarityReport, error) {
	store, ok := s.source.(HistoryStore)
	if !ok {
		return nil, fmt.Errorf("history source does not support point reads")
	}

	history, err := store.GetEmploymentHistory(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employment history for %s: %w", candidateID, err)
	}
	if history == nil || history.IsEmpty() {
		return nil, &NotFoundError{CandidateID: candidateID}
	}

	matches, err := s.DetectSimilarHistories(ctx, types.SimilarityRequest{
		Organizations:      history.Organizations,
		Dates:              history.DatePhrases,
		ExcludeCandidateID: candidateID,
	})
	if err != nil {
		return nil, err
	}
	return NewReport(candidateID, matches), nil
}

// NewReport wraps matches in a report envelope.
func NewReport(excludeCandidateID string, matches []types.SimilarityMatch) *types.SimilarityReport {
	if matches == nil {
		matches = []types.SimilarityMatch{}
	}
	return &types.SimilarityReport{
		ExcludeCandidateID: excludeCandidateID,
		Suspicious:         Suspicious(matches),
		Matches:            matches,
	}
}
