// Package dataset provides an in-memory record store loaded from a JSON file,
// for running the matcher without a database.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// File is the on-disk layout of a dataset.
type File struct {
	Jobs       []types.JobOpening        `json:"jobs"`
	Candidates []types.CandidateProfile  `json:"candidates"`
	Histories  []types.EmploymentHistory `json:"histories"`
}

// Store serves jobs, candidates and employment histories from memory.
// It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	jobs       map[string]types.JobOpening
	candidates []types.CandidateProfile
	histories  []types.EmploymentHistory
	byID       map[string]int // candidate ID -> index into histories
}

// Checker validates raw dataset bytes before they are decoded.
// *schemas.Schema satisfies it.
type Checker interface {
	Document(data []byte) error
}

// Load reads and parses a dataset file.
func Load(path string) (*Store, error) {
	return LoadChecked(path, nil)
}

// LoadChecked is Load with the raw file also run through check once it parses.
// A nil check skips it.
func LoadChecked(path string, check Checker) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	s, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	if check != nil {
		if err := check.Document(data); err != nil {
			return nil, &LoadError{Path: path, Message: "does not match dataset schema", Cause: err}
		}
	}
	return s, nil
}

// Parse builds a store from JSON.
func Parse(data []byte) (*Store, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Message: "invalid JSON", Cause: err}
	}
	return New(f)
}

// New builds a store from already-decoded records. IDs must be non-empty and unique
// per record kind; a candidate has at most one history.
func New(f File) (*Store, error) {
	s := &Store{
		jobs:       make(map[string]types.JobOpening, len(f.Jobs)),
		candidates: make([]types.CandidateProfile, 0, len(f.Candidates)),
		byID:       make(map[string]int, len(f.Histories)),
	}

	for i, job := range f.Jobs {
		id := strings.TrimSpace(job.ID)
		if id == "" {
			return nil, &LoadError{Message: fmt.Sprintf("jobs[%d]: missing id", i)}
		}
		if _, dup := s.jobs[id]; dup {
			return nil, &LoadError{Message: fmt.Sprintf("duplicate job id %q", id)}
		}
		job.ID = id
		job.Mode = types.ParseJobMode(string(job.Mode))
		s.jobs[id] = job
	}

	seen := make(map[string]bool, len(f.Candidates))
	for i, c := range f.Candidates {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, &LoadError{Message: fmt.Sprintf("candidates[%d]: missing id", i)}
		}
		if seen[id] {
			return nil, &LoadError{Message: fmt.Sprintf("duplicate candidate id %q", id)}
		}
		seen[id] = true
		c.ID = id
		s.candidates = append(s.candidates, c)
	}

	for i, h := range f.Histories {
		id := strings.TrimSpace(h.CandidateID)
		if id == "" {
			return nil, &LoadError{Message: fmt.Sprintf("histories[%d]: missing candidate_id", i)}
		}
		if _, dup := s.byID[id]; dup {
			return nil, &LoadError{Message: fmt.Sprintf("duplicate history for candidate %q", id)}
		}
		h.CandidateID = id
		s.byID[id] = len(s.histories)
		s.histories = append(s.histories, h)
	}

	return s, nil
}

// GetJob returns the job with the given ID, or (nil, nil) when there is none.
func (s *Store) GetJob(_ context.Context, id string) (*types.JobOpening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

// ListJobs returns every job sorted by ID.
func (s *Store) ListJobs(_ context.Context) ([]types.JobOpening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]types.JobOpening, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// ListCandidates returns the candidates that have not been invalidated, in file order.
func (s *Store) ListCandidates(_ context.Context) ([]types.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.CandidateProfile, 0, len(s.candidates))
	for _, c := range s.candidates {
		if !c.Invalidated {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetEmploymentHistory returns a candidate's history, or (nil, nil) when there is none.
func (s *Store) GetEmploymentHistory(_ context.Context, candidateID string) (*types.EmploymentHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[candidateID]
	if !ok {
		return nil, nil
	}
	h := s.histories[idx]
	return &h, nil
}

// ListEmploymentHistories returns every stored history, including those of
// invalidated candidates, so copies of a flagged history are still detected.
func (s *Store) ListEmploymentHistories(_ context.Context) ([]types.EmploymentHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.EmploymentHistory, len(s.histories))
	copy(out, s.histories)
	return out, nil
}

// InvalidateCandidate flags a candidate so it leaves the ranking pool.
func (s *Store) InvalidateCandidate(_ context.Context, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.candidates {
		if s.candidates[i].ID == candidateID {
			s.candidates[i].Invalidated = true
			return nil
		}
	}
	return fmt.Errorf("candidate %s not found", candidateID)
}

// Snapshot returns a copy of every record, including invalidated candidates.
func (s *Store) Snapshot() File {
	jobs, _ := s.ListJobs(context.Background())

	s.mu.RLock()
	defer s.mu.RUnlock()
	return File{
		Jobs:       jobs,
		Candidates: append([]types.CandidateProfile(nil), s.candidates...),
		Histories:  append([]types.EmploymentHistory(nil), s.histories...),
	}
}

// Save writes the current records, including invalidation flags, to path.
func (s *Store) Save(path string) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return nil
}
