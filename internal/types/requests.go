// Package types provides type definitions for structured data used throughout the candidate matcher.
package types

import (
	"github.com/go-playground/validator/v10"
)

// Defaults for a ranking request.
const (
	DefaultMinThreshold = 0.3
	DefaultLimit        = 10
	// MaxLimit caps the number of results a single request may ask for.
	MaxLimit = 1000
)

// RankRequest represents a request to rank the candidate pool against a job.
type RankRequest struct {
	JobID        string  `json:"job_id" validate:"required"`
	MinThreshold float64 `json:"min_threshold" validate:"gte=0,lte=1"`
	Limit        int     `json:"limit" validate:"gte=1,lte=1000"` // lte is MaxLimit
}

// SimilarityRequest represents a request to find histories similar to the given one.
type SimilarityRequest struct {
	Organizations      []string `json:"organizations" validate:"required_without=Dates,dive,max=500"`
	Dates              []string `json:"dates" validate:"required_without=Organizations,dive,max=200"`
	ExcludeCandidateID string   `json:"exclude_candidate_id,omitempty"`
}

// Validate validates the RankRequest using the validator.
func (r *RankRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SimilarityRequest using the validator.
func (r *SimilarityRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
