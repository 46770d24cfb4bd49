// Package types provides type definitions for structured data used throughout the candidate matcher.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillTarget is a skill required by a job with the weight it carries in skill scoring.
type SkillTarget struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Relevance   float64 `json:"relevance"`
	ClientFocus bool    `json:"client_focus,omitempty"`
}
