package db

// schemaStatements create the matcher tables. Each statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS job_openings (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		client_name  TEXT,
		client_focus TEXT,
		city         TEXT,
		state        TEXT,
		mode         TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		location         TEXT,
		years_experience INTEGER,
		invalidated      BOOLEAN NOT NULL DEFAULT FALSE,
		invalidated_at   TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS employment_histories (
		candidate_id  TEXT PRIMARY KEY REFERENCES candidates(id) ON DELETE CASCADE,
		organizations TEXT[] NOT NULL DEFAULT '{}',
		titles        TEXT[] NOT NULL DEFAULT '{}',
		dates         TEXT[] NOT NULL DEFAULT '{}',
		skills        TEXT[] NOT NULL DEFAULT '{}',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS match_results (
		job_id       TEXT NOT NULL REFERENCES job_openings(id) ON DELETE CASCADE,
		candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		score        INTEGER NOT NULL,
		composite    DOUBLE PRECISION NOT NULL,
		result       JSONB NOT NULL,
		computed_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (job_id, candidate_id)
	)`,
	`CREATE TABLE IF NOT EXISTS similarity_matches (
		candidate_id       TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		other_candidate_id TEXT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		similarity         INTEGER NOT NULL,
		match              JSONB NOT NULL,
		computed_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (candidate_id, other_candidate_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_active ON candidates (id) WHERE NOT invalidated`,
	`CREATE INDEX IF NOT EXISTS idx_match_results_job_score ON match_results (job_id, score DESC)`,
}
