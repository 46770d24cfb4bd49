//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-matcher/internal/types"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, db.Migrate(ctx))
	return db
}

func cleanupCandidates(t *testing.T, db *DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, _ = db.pool.Exec(context.Background(), "DELETE FROM candidates WHERE id = $1", id)
	}
}

func TestIntegration_Migrate_Idempotent(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	assert.NoError(t, db.Migrate(context.Background()))
}

func TestIntegration_Records(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	suffix := uuid.New().String()
	activeID, flaggedID := "test-active-"+suffix, "test-flagged-"+suffix
	defer cleanupCandidates(t, db, activeID, flaggedID)

	jobID, err := db.CreateJob(ctx, &types.JobOpening{
		Title: "Java Engineer", Description: "Java and Spring", City: "Seattle", State: "WA", Mode: types.JobModeOnsite,
	})
	require.NoError(t, err)
	defer func() { _, _ = db.pool.Exec(ctx, "DELETE FROM job_openings WHERE id = $1", jobID) }()
	_, err = uuid.Parse(jobID)
	assert.NoError(t, err, "generated job IDs are UUIDs")

	t.Run("get job", func(t *testing.T) {
		job, err := db.GetJob(ctx, jobID)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, "Java Engineer", job.Title)
		assert.Equal(t, "", job.ClientName)
		assert.Equal(t, types.JobModeOnsite, job.Mode)

		missing, err := db.GetJob(ctx, "missing-"+suffix)
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	years := 7
	for _, c := range []types.CandidateProfile{
		{ID: activeID, Name: "Active", Location: "Seattle, WA", YearsExperience: &years},
		{ID: flaggedID, Name: "Flagged"},
	} {
		_, err := db.CreateCandidate(ctx, &c)
		require.NoError(t, err)
	}
	require.NoError(t, db.UpsertEmploymentHistory(ctx, &types.EmploymentHistory{
		CandidateID:   activeID,
		Organizations: []string{"Acme Corp"},
		DatePhrases:   []string{"2020 - Present"},
	}))
	require.NoError(t, db.UpsertEmploymentHistory(ctx, &types.EmploymentHistory{
		CandidateID:   flaggedID,
		Organizations: []string{"Acme Inc"},
	}))

	t.Run("invalidate removes candidate from pool", func(t *testing.T) {
		require.NoError(t, db.InvalidateCandidate(ctx, flaggedID))
		assert.Error(t, db.InvalidateCandidate(ctx, "missing-"+suffix))

		candidates, err := db.ListCandidates(ctx)
		require.NoError(t, err)
		ids := map[string]types.CandidateProfile{}
		for _, c := range candidates {
			ids[c.ID] = c
		}
		require.Contains(t, ids, activeID)
		assert.NotContains(t, ids, flaggedID)
		require.NotNil(t, ids[activeID].YearsExperience)
		assert.Equal(t, 7, *ids[activeID].YearsExperience)
	})

	t.Run("histories", func(t *testing.T) {
		h, err := db.GetEmploymentHistory(ctx, flaggedID)
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, []string{"Acme Inc"}, h.Organizations)
		assert.Empty(t, h.Titles)

		all, err := db.ListEmploymentHistories(ctx)
		require.NoError(t, err)
		found := 0
		for _, h := range all {
			if h.CandidateID == activeID || h.CandidateID == flaggedID {
				found++
			}
		}
		assert.Equal(t, 2, found)
	})

	t.Run("caches", func(t *testing.T) {
		require.NoError(t, db.SaveMatchResults(ctx, jobID, []types.MatchResult{
			{CandidateID: activeID, Score: 82, Composite: 0.82, Reasons: []string{"Title match: Java Engineer"}},
			{CandidateID: flaggedID, Score: 40, Composite: 0.40},
		}))
		results, err := db.GetMatchResults(ctx, jobID)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, activeID, results[0].CandidateID)

		// A later pass without the flagged candidate drops its row.
		require.NoError(t, db.SaveMatchResults(ctx, jobID, []types.MatchResult{
			{CandidateID: activeID, Score: 85, Composite: 0.85},
		}))
		results, err = db.GetMatchResults(ctx, jobID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 85, results[0].Score)

		require.NoError(t, db.SaveMatchResults(ctx, jobID, nil))
		results, err = db.GetMatchResults(ctx, jobID)
		require.NoError(t, err)
		assert.Empty(t, results)

		countSimilar := func() int {
			var n int
			require.NoError(t, db.pool.QueryRow(ctx,
				`SELECT count(*) FROM similarity_matches WHERE candidate_id = $1`, activeID).Scan(&n))
			return n
		}
		require.NoError(t, db.SaveSimilarityMatches(ctx, activeID, []types.SimilarityMatch{
			{CandidateID: flaggedID, Similarity: 70},
		}))
		assert.Equal(t, 1, countSimilar())
		require.NoError(t, db.SaveSimilarityMatches(ctx, activeID, nil))
		assert.Equal(t, 0, countSimilar())
	})
}
