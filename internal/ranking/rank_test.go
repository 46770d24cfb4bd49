package ranking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-matcher/internal/types"
)

var fixedNow = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }

func javaJob() types.JobOpening {
	return types.JobOpening{
		ID:          "job-1",
		Title:       "Java Engineer",
		Description: "Java, Spring and AWS on the client's payment platform",
		ClientName:  "Acme Bank",
		ClientFocus: "AWS",
		City:        "Seattle",
		State:       "WA",
		Mode:        types.JobModeOnsite,
	}
}

func testStore() *memoryStore {
	return &memoryStore{
		jobs: map[string]types.JobOpening{"job-1": javaJob()},
		candidates: []types.CandidateProfile{
			{ID: "bob", Name: "Bob", Location: "Boston, MA"},
			{ID: "alice", Name: "Alice", Location: "Seattle, WA"},
			{ID: "carol", Name: "Carol", Location: "Bellevue, WA"},
		},
		histories: []types.EmploymentHistory{
			{
				CandidateID:   "alice",
				Organizations: []string{"Acme Bank, Seattle", "Initech"},
				Titles:        []string{"Java Developer", "Junior Developer"},
				DatePhrases:   []string{"2018 - Present", "2012 - 2018"},
				Skills:        []string{"Java", "Spring", "AWS"},
			},
			{
				CandidateID:   "bob",
				Organizations: []string{"Initech"},
				Titles:        []string{"Accountant"},
				DatePhrases:   []string{"2019 - Present"},
				Skills:        []string{"Bookkeeping"},
			},
			{
				CandidateID:   "carol",
				Organizations: []string{"First Capital Banking"},
				Titles:        []string{"Senior Software Engineer"},
				DatePhrases:   []string{"2016 - Present"},
				Skills:        []string{"C#", "Azure"},
			},
		},
	}
}

func newTestScorer(t *testing.T, store Store, cfg Config) *Scorer {
	t.Helper()
	if cfg.Now == nil {
		cfg.Now = fixedNow
	}
	s, err := NewScorer(store, cfg)
	require.NoError(t, err)
	return s
}

func TestRankCandidates_RanksAndFilters(t *testing.T) {
	s := newTestScorer(t, testStore(), Config{})

	results, err := s.RankCandidates(context.Background(), "job-1", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 2, "bob falls below the default threshold")

	assert.Equal(t, "alice", results[0].CandidateID)
	assert.Equal(t, "Alice", results[0].CandidateName)
	assert.Equal(t, "carol", results[1].CandidateID)

	alice := results[0]
	assert.Equal(t, 1.0, alice.SubScores.Title)
	assert.Equal(t, 1.0, alice.SubScores.Location)
	assert.Equal(t, 1.0, alice.SubScores.Client)
	assert.Contains(t, alice.Reasons, "Title match: Java Developer")
	assert.Contains(t, alice.Reasons, "Previous experience with Acme Bank, Seattle")
	assert.NotContains(t, alice.Reasons, "Leadership experience", "neither title is a leadership title")
	assert.InDelta(t, s.Weights().Composite(alice.SubScores), alice.Composite, 1e-12)
	assert.Equal(t, ToScore(alice.Composite), alice.Score)

	carol := results[1]
	assert.Equal(t, 0.8, carol.SubScores.Client)
	assert.Equal(t, "financial", carol.Client.Industry)
	assert.NotEmpty(t, carol.Skills.PartialMatches)
}

func TestRankCandidates_Properties(t *testing.T) {
	store := testStore()
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("gen-%02d", i)
		store.candidates = append(store.candidates, types.CandidateProfile{ID: id, Location: []string{"Seattle", "Tacoma, WA", "Austin, TX", ""}[i%4]})
		store.histories = append(store.histories, types.EmploymentHistory{
			CandidateID:   id,
			Organizations: []string{"Acme", "Globex", "Bank of Somewhere"}[:1+i%3],
			Titles:        []string{"Java Developer", "Manager", "Software Engineer"}[:1+i%3],
			DatePhrases:   []string{"2020", "2011 - 2020", ""}[:1+i%3],
			Skills:        []string{"Java", "AWS", "Spring", "Kotlin"}[:i%5],
		})
	}

	for _, threshold := range []float64{0, 0.3, 0.55, 0.8, 1} {
		t.Run(fmt.Sprintf("threshold %.2f", threshold), func(t *testing.T) {
			s := newTestScorer(t, store, Config{Workers: 4})
			results, err := s.RankCandidates(context.Background(), "job-1", Options{MinThreshold: threshold, Limit: 100})
			require.NoError(t, err)

			for i, r := range results {
				for _, sub := range []float64{r.SubScores.Title, r.SubScores.Skill, r.SubScores.Location, r.SubScores.Client, r.SubScores.Seniority} {
					assert.GreaterOrEqual(t, sub, 0.0)
					assert.LessOrEqual(t, sub, 1.0)
				}
				assert.GreaterOrEqual(t, r.Score, 0)
				assert.LessOrEqual(t, r.Score, 100)
				assert.GreaterOrEqual(t, float64(r.Score), threshold*100-1e-9)
				assert.GreaterOrEqual(t, r.Composite, threshold)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].Composite, r.Composite, "results must be sorted non-increasing")
				}
			}
		})
	}
}

func TestRankCandidates_TieBreakByCandidateID(t *testing.T) {
	history := func(id string) types.EmploymentHistory {
		return types.EmploymentHistory{CandidateID: id, Titles: []string{"Java Developer"}, Skills: []string{"Java"}}
	}
	store := &memoryStore{
		jobs:       map[string]types.JobOpening{"job-1": javaJob()},
		candidates: []types.CandidateProfile{{ID: "c-3", Location: "Seattle"}, {ID: "c-1", Location: "Seattle"}, {ID: "c-2", Location: "Seattle"}},
		histories:  []types.EmploymentHistory{history("c-3"), history("c-1"), history("c-2")},
	}
	s := newTestScorer(t, store, Config{Workers: 3})

	results, err := s.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"c-1", "c-2", "c-3"}, []string{results[0].CandidateID, results[1].CandidateID, results[2].CandidateID})
}

func TestRankCandidates_Limit(t *testing.T) {
	s := newTestScorer(t, testStore(), Config{})

	results, err := s.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].CandidateID)
}

func TestRankCandidates_MissingHistoryStillScored(t *testing.T) {
	store := testStore()
	store.candidates = append(store.candidates, types.CandidateProfile{ID: "dave", Location: "Seattle"})
	s := newTestScorer(t, store, Config{})

	results, err := s.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 10})
	require.NoError(t, err)

	var dave *types.MatchResult
	for i := range results {
		if results[i].CandidateID == "dave" {
			dave = &results[i]
		}
	}
	require.NotNil(t, dave)
	assert.Equal(t, 1.0, dave.SubScores.Location)
	assert.Equal(t, 0.0, dave.SubScores.Title)
	assert.Equal(t, 0.0, dave.SubScores.Skill)
}

func TestRankCandidates_PanicDegradesCandidate(t *testing.T) {
	s := newTestScorer(t, testStore(), Config{Workers: 2})
	extract := s.extract
	s.extract = func(job *types.JobOpening, targets []types.SkillTarget, c *types.CandidateProfile, h *types.EmploymentHistory) extraction {
		if c.ID == "alice" {
			panic("malformed record")
		}
		return extract(job, targets, c, h)
	}

	results, err := s.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "alice", results[2].CandidateID)
	assert.Equal(t, 0, results[2].Score)
	assert.Empty(t, results[2].Reasons)

	results, err = s.RankCandidates(context.Background(), "job-1", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "carol", results[0].CandidateID)
}

func TestRankCandidates_WorkerCountDoesNotChangeResults(t *testing.T) {
	serial := newTestScorer(t, testStore(), Config{Workers: 1})
	parallel := newTestScorer(t, testStore(), Config{Workers: 8})

	a, err := serial.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 10})
	require.NoError(t, err)
	b, err := parallel.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRankCandidates_Errors(t *testing.T) {
	t.Run("job not found", func(t *testing.T) {
		s := newTestScorer(t, testStore(), Config{})
		_, err := s.RankCandidates(context.Background(), "missing", DefaultOptions())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrJobNotFound)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.JobID)
	})

	invalid := []struct {
		name  string
		jobID string
		opts  Options
		field string
	}{
		{"zero limit", "job-1", Options{MinThreshold: 0.3, Limit: 0}, "limit"},
		{"negative limit", "job-1", Options{MinThreshold: 0.3, Limit: -5}, "limit"},
		{"threshold above one", "job-1", Options{MinThreshold: 1.5, Limit: 10}, "min_threshold"},
		{"negative threshold", "job-1", Options{MinThreshold: -0.1, Limit: 10}, "min_threshold"},
		{"empty job id", " ", DefaultOptions(), "job_id"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScorer(t, testStore(), Config{})
			_, err := s.RankCandidates(context.Background(), tt.jobID, tt.opts)
			var invalidErr *InvalidInputError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, tt.field, invalidErr.Field)
		})
	}

	t.Run("store failure is wrapped", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		store := testStore()
		store.err = storeErr
		s := newTestScorer(t, store, Config{})

		_, err := s.RankCandidates(context.Background(), "job-1", DefaultOptions())
		assert.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := newTestScorer(t, testStore(), Config{})

		_, err := s.RankCandidates(ctx, "job-1", DefaultOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewScorer(t *testing.T) {
	_, err := NewScorer(nil, Config{})
	assert.Error(t, err)

	_, err = NewScorer(testStore(), Config{Weights: Weights{Title: 0.5, Skill: 0.6}})
	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "weights", invalidErr.Field)

	s, err := NewScorer(testStore(), Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), s.Weights())
}

func TestRankCandidates_CustomWeights(t *testing.T) {
	s := newTestScorer(t, testStore(), Config{Weights: Weights{Location: 1.0}})

	results, err := s.RankCandidates(context.Background(), "job-1", Options{MinThreshold: 0, Limit: 10})
	require.NoError(t, err)
	for _, r := range results {
		assert.InDelta(t, r.SubScores.Location, r.Composite, 1e-12)
	}
}
