// Package types provides type definitions for structured data used throughout the candidate matcher.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MatchOutcome tags which rule produced a dimension score.
type MatchOutcome string

// Match outcomes, in priority order.
const (
	OutcomeExact   MatchOutcome = "exact"
	OutcomePartial MatchOutcome = "partial"
	OutcomeNone    MatchOutcome = "none"
)

// MatchResult represents a single ranked candidate with scores and explanations
type MatchResult struct {
	CandidateID   string   `json:"candidate_id"`
	CandidateName string   `json:"candidate_name,omitempty"`
	Score         int      `json:"score"`     // 0-100
	Composite     float64  `json:"composite"` // 0-1
	Reasons       []string `json:"reasons"`

	SubScores SubScores      `json:"sub_scores"`
	Title     TitleMatch     `json:"title"`
	Skills    SkillMatch     `json:"skills"`
	Location  LocationMatch  `json:"location"`
	Client    ClientMatch    `json:"client"`
	Seniority SeniorityMatch `json:"seniority"`
}

// SubScores holds the five raw dimension scores, each in [0,1].
type SubScores struct {
	Title     float64 `json:"title"`
	Skill     float64 `json:"skill"`
	Location  float64 `json:"location"`
	Client    float64 `json:"client"`
	Seniority float64 `json:"seniority"`
}

// TitleMatch is the outcome of matching a job title against a candidate's titles.
type TitleMatch struct {
	Score              float64      `json:"score"`
	MatchedTitle       string       `json:"matched_title,omitempty"`
	Outcome            MatchOutcome `json:"outcome"`
	Technologies       []string     `json:"technologies,omitempty"`
	SharedTechnologies []string     `json:"shared_technologies,omitempty"`
}

// SkillMatch is the outcome of matching job skills against a candidate's skills.
type SkillMatch struct {
	Score              float64        `json:"score"`
	MatchedSkills      []string       `json:"matched_skills"`
	PartialMatches     []PartialMatch `json:"partial_matches,omitempty"`
	MissingSkills      []string       `json:"missing_skills,omitempty"`
	ClientFocusMatches []string       `json:"client_focus_matches,omitempty"`
}

// PartialMatch records a required skill credited through a related skill.
type PartialMatch struct {
	Skill        string  `json:"skill"`
	RelatedSkill string  `json:"related_skill"`
	Weight       float64 `json:"weight"`
}

// LocationMatch is the outcome of matching job and candidate locations.
type LocationMatch struct {
	Score                 float64      `json:"score"`
	Description           string       `json:"description"`
	Distance              *float64     `json:"distance,omitempty"` // miles
	WithinCommute         bool         `json:"within_commute"`
	TimeZoneCompatibility float64      `json:"time_zone_compatibility"`
	Outcome               MatchOutcome `json:"outcome"`
}

// ClientMatch is the outcome of matching a job's client against past employers.
type ClientMatch struct {
	Score        float64 `json:"score"`
	Reason       string  `json:"reason,omitempty"`
	Organization string  `json:"organization,omitempty"`
	Industry     string  `json:"industry,omitempty"`
}

// SeniorityMatch is the outcome of comparing experience level with the job's level.
type SeniorityMatch struct {
	Score                float64  `json:"score"`
	YearsOfExperience    *int     `json:"years_of_experience,omitempty"`
	LeadershipExperience bool     `json:"leadership_experience"`
	SeniorityNote        string   `json:"seniority_note"`
	JobLevels            []string `json:"job_levels,omitempty"`
}
