package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

type fakeStore struct {
	histories []types.EmploymentHistory
	err       error
}

func (f *fakeStore) ListEmploymentHistories(_ context.Context) ([]types.EmploymentHistory, error) {
	return f.histories, f.err
}

func (f *fakeStore) GetEmploymentHistory(_ context.Context, candidateID string) (*types.EmploymentHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.histories {
		if f.histories[i].CandidateID == candidateID {
			return &f.histories[i], nil
		}
	}
	return nil, nil
}

type listOnly struct {
	histories []types.EmploymentHistory
}

func (l *listOnly) ListEmploymentHistories(_ context.Context) ([]types.EmploymentHistory, error) {
	return l.histories, nil
}

func pool() []types.EmploymentHistory {
	return []types.EmploymentHistory{
		{CandidateID: "orig", Organizations: []string{"Acme Corp", "Globex"}, DatePhrases: []string{"2021 - 2023", "2018 - 2021"}},
		{CandidateID: "copy", Organizations: []string{"Acme Inc", "Globex LLC"}, DatePhrases: []string{"Jan 2021 - Dec 2023", "2018 - 2021"}},
		{CandidateID: "other", Organizations: []string{"Initech"}, DatePhrases: []string{"2010 - 2015"}},
	}
}

func TestDetectSimilarHistories(t *testing.T) {
	svc := NewService(&fakeStore{histories: pool()}, parsing.FirstWordPolicy, nil)

	matches, err := svc.DetectSimilarHistories(context.Background(), types.SimilarityRequest{
		Organizations:      []string{"Acme", "Globex"},
		Dates:              []string{"2021 - 2023", "2018 - 2021"},
		ExcludeCandidateID: "orig",
	})

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "copy", matches[0].CandidateID)
	assert.True(t, matches[0].HighSimilarity)
	assert.True(t, matches[0].IdenticalChronology)
}

func TestDetectSimilarHistories_InvalidRequest(t *testing.T) {
	svc := NewService(&fakeStore{histories: pool()}, parsing.FirstWordPolicy, nil)

	_, err := svc.DetectSimilarHistories(context.Background(), types.SimilarityRequest{})
	assert.Error(t, err)
}

func TestDetectSimilarHistories_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&fakeStore{err: boom}, parsing.FirstWordPolicy, nil)

	_, err := svc.DetectSimilarHistories(context.Background(), types.SimilarityRequest{Organizations: []string{"Acme"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to list employment histories")
}

func TestDetectSimilarHistories_CancelledContext(t *testing.T) {
	svc := NewService(&fakeStore{histories: pool()}, parsing.FirstWordPolicy, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.DetectSimilarHistories(ctx, types.SimilarityRequest{Organizations: []string{"Acme"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckCandidate(t *testing.T) {
	svc := NewService(&fakeStore{histories: pool()}, parsing.FirstWordPolicy, nil)

	report, err := svc.CheckCandidate(context.Background(), "copy")

	require.NoError(t, err)
	assert.Equal(t, "copy", report.ExcludeCandidateID)
	assert.True(t, report.Suspicious)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, "orig", report.Matches[0].CandidateID)
}

func TestCheckCandidate_NoMatches(t *testing.T) {
	svc := NewService(&fakeStore{histories: pool()}, parsing.FirstWordPolicy, nil)

	report, err := svc.CheckCandidate(context.Background(), "other")

	require.NoError(t, err)
	assert.False(t, report.Suspicious)
	assert.NotNil(t, report.Matches)
	assert.Empty(t, report.Matches)
}

func TestCheckCandidate_NotFound(t *testing.T) {
	svc := NewService(&fakeStore{histories: pool()}, parsing.FirstWordPolicy, nil)

	_, err := svc.CheckCandidate(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHistoryNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.CandidateID)
}

func TestCheckCandidate_RequiresPointReads(t *testing.T) {
	svc := NewService(&listOnly{histories: pool()}, parsing.FirstWordPolicy, nil)

	_, err := svc.CheckCandidate(context.Background(), "copy")
	assert.Error(t, err)
}

func TestNewReport_NilMatches(t *testing.T) {
	report := NewReport("c1", nil)

	assert.NotNil(t, report.Matches)
	assert.False(t, report.Suspicious)
}
