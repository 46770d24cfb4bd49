package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// -----------------------------------------------------------------------------
// Job Opening Methods
// -----------------------------------------------------------------------------

// CreateJob inserts or replaces a job opening. An empty ID is assigned a new UUID.
func (db *DB) CreateJob(ctx context.Context, job *types.JobOpening) (string, error) {
	id := strings.TrimSpace(job.ID)
	if id == "" {
		id = uuid.New().String()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_openings (id, title, description, client_name, client_focus, city, state, mode)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		     title = $2, description = $3, client_name = $4, client_focus = $5,
		     city = $6, state = $7, mode = $8`,
		id, job.Title, job.Description, nullIfEmpty(job.ClientName), nullIfEmpty(job.ClientFocus),
		nullIfEmpty(job.City), nullIfEmpty(job.State), string(job.Mode),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create job opening: %w", err)
	}
	return id, nil
}

// GetJob retrieves a job opening by ID. Returns (nil, nil) when it does not exist.
func (db *DB) GetJob(ctx context.Context, id string) (*types.JobOpening, error) {
	var job types.JobOpening
	var clientName, clientFocus, city, state *string
	var mode string

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, description, client_name, client_focus, city, state, mode
		 FROM job_openings WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.Title, &job.Description, &clientName, &clientFocus, &city, &state, &mode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job opening: %w", err)
	}

	job.ClientName = emptyIfNil(clientName)
	job.ClientFocus = emptyIfNil(clientFocus)
	job.City = emptyIfNil(city)
	job.State = emptyIfNil(state)
	job.Mode = types.ParseJobMode(mode)
	return &job, nil
}

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

// CreateCandidate inserts or replaces a candidate. An empty ID is assigned a new UUID.
func (db *DB) CreateCandidate(ctx context.Context, c *types.CandidateProfile) (string, error) {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		id = uuid.New().String()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO candidates (id, name, location, years_experience, invalidated)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		     name = $2, location = $3, years_experience = $4, invalidated = $5`,
		id, c.Name, nullIfEmpty(c.Location), c.YearsExperience, c.Invalidated,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create candidate: %w", err)
	}
	return id, nil
}

// ListCandidates returns every candidate that has not been invalidated, ordered by ID.
func (db *DB) ListCandidates(ctx context.Context) ([]types.CandidateProfile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, location, years_experience
		 FROM candidates
		 WHERE invalidated = false
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.CandidateProfile
	for rows.Next() {
		var c types.CandidateProfile
		var location *string
		if err := rows.Scan(&c.ID, &c.Name, &location, &c.YearsExperience); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Location = emptyIfNil(location)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

// InvalidateCandidate flags a candidate as fraudulent so it leaves the ranking pool.
func (db *DB) InvalidateCandidate(ctx context.Context, candidateID string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE candidates SET invalidated = true, invalidated_at = NOW() WHERE id = $1`,
		candidateID,
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("candidate %s not found", candidateID)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Employment History Methods
// -----------------------------------------------------------------------------

// UpsertEmploymentHistory stores a candidate's employment history.
func (db *DB) UpsertEmploymentHistory(ctx context.Context, h *types.EmploymentHistory) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO employment_histories (candidate_id, organizations, titles, dates, skills)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (candidate_id) DO UPDATE SET
		     organizations = $2, titles = $3, dates = $4, skills = $5, updated_at = NOW()`,
		h.CandidateID, nonNil(h.Organizations), nonNil(h.Titles), nonNil(h.DatePhrases), nonNil(h.Skills),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert employment history for %s: %w", h.CandidateID, err)
	}
	return nil
}

// GetEmploymentHistory retrieves a candidate's history. Returns (nil, nil) when there is none.
func (db *DB) GetEmploymentHistory(ctx context.Context, candidateID string) (*types.EmploymentHistory, error) {
	var h types.EmploymentHistory
	err := db.pool.QueryRow(ctx,
		`SELECT candidate_id, organizations, titles, dates, skills
		 FROM employment_histories WHERE candidate_id = $1`,
		candidateID,
	).Scan(&h.CandidateID, &h.Organizations, &h.Titles, &h.DatePhrases, &h.Skills)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employment history: %w", err)
	}
	return &h, nil
}

// ListEmploymentHistories returns every stored history in one query, ordered by candidate.
// Histories of invalidated candidates are included so copies of them are still detected.
func (db *DB) ListEmploymentHistories(ctx context.Context) ([]types.EmploymentHistory, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT candidate_id, organizations, titles, dates, skills
		 FROM employment_histories
		 ORDER BY candidate_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employment histories: %w", err)
	}
	defer rows.Close()

	var histories []types.EmploymentHistory
	for rows.Next() {
		var h types.EmploymentHistory
		if err := rows.Scan(&h.CandidateID, &h.Organizations, &h.Titles, &h.DatePhrases, &h.Skills); err != nil {
			return nil, fmt.Errorf("failed to scan employment history: %w", err)
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employment histories: %w", err)
	}
	return histories, nil
}
