// Package types provides type definitions for structured data used throughout the candidate matcher.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// JobMode describes where the work of a job opening happens.
type JobMode string

// Known job modes. Any other value is carried through and treated as "unspecified".
const (
	JobModeOnsite JobMode = "onsite"
	JobModeRemote JobMode = "remote"
	JobModeHybrid JobMode = "hybrid"
)

// ParseJobMode normalizes a free-text mode. Unknown input is returned lowercased.
func ParseJobMode(s string) JobMode {
	mode := strings.ToLower(strings.TrimSpace(s))
	switch mode {
	case "on-site", "on site", "office", "in-office":
		return JobModeOnsite
	}
	return JobMode(mode)
}

// JobOpening is the job a ranking pass scores candidates against.
// It is treated as immutable for the duration of a pass.
type JobOpening struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ClientName  string  `json:"client_name,omitempty"`
	ClientFocus string  `json:"client_focus,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Mode        JobMode `json:"mode"`
}
