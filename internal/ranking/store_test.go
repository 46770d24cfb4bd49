package ranking

import (
	"context"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// memoryStore is a Store over fixed slices.
type memoryStore struct {
	jobs       map[string]types.JobOpening
	candidates []types.CandidateProfile
	histories  []types.EmploymentHistory
	err        error
}

func (m *memoryStore) GetJob(_ context.Context, id string) (*types.JobOpening, error) {
	if m.err != nil {
		return nil, m.err
	}
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (m *memoryStore) ListCandidates(_ context.Context) ([]types.CandidateProfile, error) {
	return m.candidates, m.err
}

func (m *memoryStore) ListEmploymentHistories(_ context.Context) ([]types.EmploymentHistory, error) {
	return m.histories, m.err
}
