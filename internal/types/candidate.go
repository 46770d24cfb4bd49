// Package types provides type definitions for structured data used throughout the candidate matcher.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateProfile represents a candidate in the pool.
type CandidateProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Location        string `json:"location,omitempty"`
	YearsExperience *int   `json:"years_experience,omitempty"`
	// Invalidated is set for candidates flagged as fraudulent. Stores exclude them from pools.
	Invalidated bool `json:"invalidated,omitempty"`
}

// EmploymentHistory holds a candidate's career as positionally aligned sequences.
// Index 0 is the most recent entry. The sequences may have unequal lengths in
// malformed data.
type EmploymentHistory struct {
	CandidateID   string   `json:"candidate_id"`
	Organizations []string `json:"organizations"`
	Titles        []string `json:"titles"`
	DatePhrases   []string `json:"dates"`
	Skills        []string `json:"skills"`
}

// Organization returns the organization at index i, or false when absent.
func (h *EmploymentHistory) Organization(i int) (string, bool) {
	return at(h.Organizations, i)
}

// IsEmpty reports whether the history has neither organizations nor dates.
func (h *EmploymentHistory) IsEmpty() bool {
	return len(h.Organizations) == 0 && len(h.DatePhrases) == 0
}

func at(values []string, i int) (string, bool) {
	if i < 0 || i >= len(values) {
		return "", false
	}
	return values[i], true
}
