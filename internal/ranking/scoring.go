package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// weightSumTolerance bounds floating-point drift when weights are checked to sum to 1.
const weightSumTolerance = 1e-6

// Weights are the contribution of each dimension to the composite score.
type Weights struct {
	Title     float64 `json:"title"`
	Skill     float64 `json:"skill"`
	Location  float64 `json:"location"`
	Client    float64 `json:"client"`
	Seniority float64 `json:"seniority"`
}

// DefaultWeights returns the standard dimension weights.
func DefaultWeights() Weights {
	return Weights{
		Title:     0.25,
		Skill:     0.35,
		Location:  0.15,
		Client:    0.15,
		Seniority: 0.10,
	}
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Validate checks that every weight is non-negative and that they sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"title": w.Title, "skill": w.Skill, "location": w.Location, "client": w.Client, "seniority": w.Seniority,
	} {
		if v < 0 || math.IsNaN(v) {
			return &InvalidInputError{Field: "weights." + name, Message: fmt.Sprintf("must be non-negative, got %v", v)}
		}
	}
	sum := w.Title + w.Skill + w.Location + w.Client + w.Seniority
	if math.Abs(sum-1.0) > weightSumTolerance {
		return &InvalidInputError{Field: "weights", Message: fmt.Sprintf("must sum to 1.0, got %v", sum)}
	}
	return nil
}

// Composite returns the weighted sum of the sub-scores, clamped to [0,1].
func (w Weights) Composite(s types.SubScores) float64 {
	return clamp(w.Title*s.Title +
		w.Skill*s.Skill +
		w.Location*s.Location +
		w.Client*s.Client +
		w.Seniority*s.Seniority)
}

// ToScore converts a composite in [0,1] to the 0-100 integer score.
func ToScore(composite float64) int {
	return int(math.Round(clamp(composite) * 100))
}

// generateReasons explains a result. Reasons are only added when the underlying
// dimension has data and clears its threshold.
func generateReasons(r *types.MatchResult) []string {
	reasons := make([]string, 0, 6)

	if r.SubScores.Title > 0.6 && r.Title.MatchedTitle != "" {
		if r.Title.Outcome == types.OutcomeExact {
			reasons = append(reasons, fmt.Sprintf("Title match: %s", r.Title.MatchedTitle))
		} else {
			reasons = append(reasons, fmt.Sprintf("Similar title: %s", r.Title.MatchedTitle))
		}
	}

	if len(r.Skills.MatchedSkills) > 0 {
		skills := strings.Join(r.Skills.MatchedSkills, ", ")
		switch {
		case r.SubScores.Skill >= 0.7:
			reasons = append(reasons, fmt.Sprintf("Strong skill match (%s)", skills))
		case r.SubScores.Skill >= 0.4:
			reasons = append(reasons, fmt.Sprintf("Moderate skill match (%s)", skills))
		default:
			reasons = append(reasons, fmt.Sprintf("Weak skill match (%s)", skills))
		}
	}
	if len(r.Skills.ClientFocusMatches) > 0 {
		reasons = append(reasons, fmt.Sprintf("Client focus skills: %s", strings.Join(r.Skills.ClientFocusMatches, ", ")))
	}
	if len(r.Skills.PartialMatches) > 0 {
		related := make([]string, 0, len(r.Skills.PartialMatches))
		for _, p := range r.Skills.PartialMatches {
			related = append(related, fmt.Sprintf("%s for %s", p.RelatedSkill, p.Skill))
		}
		reasons = append(reasons, fmt.Sprintf("Related experience: %s", strings.Join(related, ", ")))
	}

	if r.SubScores.Location > 0.5 && r.Location.Description != "" {
		reasons = append(reasons, r.Location.Description)
	}

	if r.SubScores.Client > 0 && r.Client.Reason != "" {
		reasons = append(reasons, r.Client.Reason)
	}

	if r.Seniority.YearsOfExperience != nil {
		reasons = append(reasons, fmt.Sprintf("%d years of experience (%s)", *r.Seniority.YearsOfExperience, r.Seniority.SeniorityNote))
	}
	if r.Seniority.LeadershipExperience {
		reasons = append(reasons, "Leadership experience")
	}

	return reasons
}

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}
