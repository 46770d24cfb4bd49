// Package experience compares a candidate's years of experience and leadership
// history with the seniority level of a job.
package experience

import (
	"math"
	"strings"
	"time"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Job levels a title can signal. A title may signal several.
const (
	LevelJunior     = "junior"
	LevelSenior     = "senior"
	LevelManagerial = "managerial"
)

// Scoring table values
const (
	scoreNeutral        = 0.5
	scoreGoodFit        = 0.9
	scoreModerate       = 0.7
	scoreMismatch       = 0.3
	managerialBonus     = 0.2
	seniorBonus         = 0.1
	juniorMaxYears      = 3
	juniorOverqualAt    = 5
	seniorMinYears      = 5
	managerialMinYears  = 8
	underqualifiedBelow = 3
)

// Matcher compares a candidate's experience level with the level of a job.
type Matcher struct {
	catalog *catalog.Catalog
}

// NewMatcher creates a Matcher. A nil catalog selects catalog.Default().
func NewMatcher(c *catalog.Catalog) *Matcher {
	if c == nil {
		c = catalog.Default()
	}
	return &Matcher{catalog: c}
}

// MatchSeniorityLevel scores how well the candidate's years of experience and
// leadership history fit the level signalled by the job title.
//
// Years are counted from the earliest year in the history's date phrases to now.
// hint is only used when the history has no year at all. Unknown years or a job
// title without a level give a neutral 0.5.
func (m *Matcher) MatchSeniorityLevel(job types.JobOpening, history *types.EmploymentHistory, hint *int, now time.Time) types.SeniorityMatch {
	var titles, dates []string
	if history != nil {
		titles, dates = history.Titles, history.DatePhrases
	}

	result := types.SeniorityMatch{
		YearsOfExperience:    yearsOfExperience(dates, hint, now),
		LeadershipExperience: m.hasLeadership(titles),
		JobLevels:            m.JobLevels(job.Title),
	}

	if len(result.JobLevels) == 0 {
		result.Score = scoreNeutral
		result.SeniorityNote = "No seniority level in job title"
		return result
	}
	if result.YearsOfExperience == nil {
		result.Score = scoreNeutral
		result.SeniorityNote = "Years of experience unknown"
		return result
	}

	years := *result.YearsOfExperience
	junior := hasLevel(result.JobLevels, LevelJunior)
	senior := hasLevel(result.JobLevels, LevelSenior)
	managerial := hasLevel(result.JobLevels, LevelManagerial)

	switch {
	case junior && years <= juniorMaxYears:
		result.Score, result.SeniorityNote = scoreGoodFit, "Good fit for junior role"
	case senior && years >= seniorMinYears:
		result.Score, result.SeniorityNote = scoreGoodFit, "Good fit for senior role"
	case managerial && years >= managerialMinYears:
		result.Score, result.SeniorityNote = scoreGoodFit, "Good fit for managerial role"
	case junior && years > juniorOverqualAt:
		result.Score, result.SeniorityNote = scoreMismatch, "Overqualified for junior role"
	case (senior || managerial) && years < underqualifiedBelow:
		result.Score, result.SeniorityNote = scoreMismatch, "Underqualified for role level"
	default:
		result.Score, result.SeniorityNote = scoreModerate, "Moderate match"
	}

	if result.LeadershipExperience {
		switch {
		case managerial:
			result.Score = math.Min(1.0, result.Score+managerialBonus)
		case senior:
			result.Score = math.Min(1.0, result.Score+seniorBonus)
		}
	}
	return result
}

// JobLevels returns the levels the job title signals, in junior, senior, managerial order.
func (m *Matcher) JobLevels(title string) []string {
	words := parsing.Words(title)
	table := m.catalog.JobLevels()

	var levels []string
	for _, l := range []struct {
		name     string
		keywords []string
	}{
		{LevelJunior, table.Junior},
		{LevelSenior, table.Senior},
		{LevelManagerial, table.Managerial},
	} {
		for _, keyword := range l.keywords {
			if parsing.ContainsPhrase(words, parsing.Words(keyword)) {
				levels = append(levels, l.name)
				break
			}
		}
	}
	return levels
}

// hasLeadership reports whether any title contains a leadership keyword.
func (m *Matcher) hasLeadership(titles []string) bool {
	for _, title := range titles {
		lower := strings.ToLower(title)
		for _, keyword := range m.catalog.LeadershipKeywords() {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}

func yearsOfExperience(dates []string, hint *int, now time.Time) *int {
	if earliest, ok := parsing.EarliestYear(dates); ok {
		years := max(0, now.Year()-earliest)
		return &years
	}
	if hint != nil && *hint >= 0 {
		years := *hint
		return &years
	}
	return nil
}

func hasLevel(levels []string, level string) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}
