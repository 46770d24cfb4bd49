package skills

import (
	"sort"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// Credit for a required skill covered only by a related or transferable skill
	relatedSkillCredit = 0.7
	// Score when the job text names no recognizable skill
	neutralScore = 0.5
)

// MatchSkills scores a candidate's skills against the skills required by the job text.
// Each target earns its full weight on an exact match, 0.7 of it through a related
// skill, and nothing otherwise; the score is earned weight over possible weight.
func (m *Matcher) MatchSkills(jobText string, candidateSkills []string, clientFocus string) types.SkillMatch {
	return m.MatchTargets(m.BuildSkillTargets(jobText, clientFocus), candidateSkills)
}

// MatchTargets scores a candidate's skills against prebuilt targets. Callers scoring
// many candidates for one job build the targets once with BuildSkillTargets.
func (m *Matcher) MatchTargets(targets []types.SkillTarget, candidateSkills []string) types.SkillMatch {
	result := types.SkillMatch{MatchedSkills: []string{}}
	if len(targets) == 0 {
		result.Score = neutralScore
		return result
	}

	held := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		if key := parsing.SkillKey(s); key != "" {
			held[key] = true
		}
	}
	heldSorted := make([]string, 0, len(held))
	for s := range held {
		heldSorted = append(heldSorted, s)
	}
	sort.Strings(heldSorted)

	var earned, possible float64
	for _, target := range targets {
		possible += target.Weight

		if held[target.Name] {
			earned += target.Weight
			result.MatchedSkills = append(result.MatchedSkills, target.Name)
			if target.ClientFocus {
				result.ClientFocusMatches = append(result.ClientFocusMatches, target.Name)
			}
			continue
		}

		if related, ok := m.relatedHeld(target.Name, heldSorted); ok {
			earned += relatedSkillCredit * target.Weight
			result.PartialMatches = append(result.PartialMatches, types.PartialMatch{
				Skill:        target.Name,
				RelatedSkill: related,
				Weight:       relatedSkillCredit,
			})
			continue
		}

		result.MissingSkills = append(result.MissingSkills, target.Name)
	}

	if possible > 0 {
		result.Score = clamp(earned / possible)
	}
	return result
}

// relatedHeld returns the first held skill related to the required one.
func (m *Matcher) relatedHeld(required string, held []string) (string, bool) {
	for _, s := range held {
		if m.catalog.Related(required, s) {
			return s, true
		}
	}
	return "", false
}

func clamp(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}
