// Package types provides type definitions for structured data used throughout the candidate matcher.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SimilarityMatch describes another candidate whose employment history resembles a target history.
type SimilarityMatch struct {
	CandidateID            string   `json:"candidate_id"`
	Similarity             int      `json:"similarity"` // 0-100
	CompanyMatchPercentage float64  `json:"company_match_percentage"`
	DateMatchPercentage    float64  `json:"date_match_percentage"`
	Organizations          []string `json:"organizations"`
	Dates                  []string `json:"dates"`
	MatchedOrganizations   []string `json:"matched_organizations,omitempty"`
	ChronologyMatch        bool     `json:"chronology_match"`
	HighSimilarity         bool     `json:"high_similarity"`
	IdenticalChronology    bool     `json:"identical_chronology"`
}

// SimilarityReport is the envelope written by the CLI and returned by the HTTP API.
type SimilarityReport struct {
	ExcludeCandidateID string            `json:"exclude_candidate_id,omitempty"`
	Suspicious         bool              `json:"suspicious"`
	Matches            []SimilarityMatch `json:"matches"`
}

// RankingReport is the envelope for a ranking pass.
type RankingReport struct {
	JobID        string        `json:"job_id"`
	MinThreshold float64       `json:"min_threshold"`
	Limit        int           `json:"limit"`
	Results      []MatchResult `json:"results"`
}
