package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// -----------------------------------------------------------------------------
// Result Cache Methods
// -----------------------------------------------------------------------------

// SaveMatchResults replaces the cached ranking for a job. Rows for candidates
// that dropped out of the new pass are removed; nil results clear the job.
func (db *DB) SaveMatchResults(ctx context.Context, jobID string, results []types.MatchResult) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM match_results WHERE job_id = $1`, jobID)
	for _, r := range results {
		content, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal match result for %s: %w", r.CandidateID, err)
		}
		batch.Queue(
			`INSERT INTO match_results (job_id, candidate_id, score, composite, result)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (job_id, candidate_id) DO UPDATE SET
			     score = $3, composite = $4, result = $5, computed_at = NOW()`,
			jobID, r.CandidateID, r.Score, r.Composite, content,
		)
	}
	return db.sendBatch(ctx, batch, "match results")
}

// GetMatchResults returns cached results for a job, best first.
func (db *DB) GetMatchResults(ctx context.Context, jobID string) ([]types.MatchResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT result FROM match_results
		 WHERE job_id = $1
		 ORDER BY composite DESC, candidate_id`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get match results: %w", err)
	}
	defer rows.Close()

	var results []types.MatchResult
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		var r types.MatchResult
		if err := json.Unmarshal(content, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match results: %w", err)
	}
	return results, nil
}

// SaveSimilarityMatches replaces the cached similarity matches for a candidate.
func (db *DB) SaveSimilarityMatches(ctx context.Context, candidateID string, matches []types.SimilarityMatch) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM similarity_matches WHERE candidate_id = $1`, candidateID)
	for _, m := range matches {
		content, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal similarity match for %s: %w", m.CandidateID, err)
		}
		batch.Queue(
			`INSERT INTO similarity_matches (candidate_id, other_candidate_id, similarity, match)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (candidate_id, other_candidate_id) DO UPDATE SET
			     similarity = $3, match = $4, computed_at = NOW()`,
			candidateID, m.CandidateID, m.Similarity, content,
		)
	}
	return db.sendBatch(ctx, batch, "similarity matches")
}

// sendBatch runs the batch in a single implicit transaction.
func (db *DB) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save %s: %w", what, err)
	}
	return nil
}
