package skills

import (
	"sort"

	"github.com/jonathan/candidate-matcher/internal/types"
)

const (
	// Base weight of every required skill before multipliers
	weightBase = 1.0
	// Multiplier for skills the hiring client especially values
	weightClientFocus = 2.0
)

// BuildSkillTargets builds the weighted skills a job requires. Weight is the base
// weight times the skill's technology relevance, doubled when the client focus
// text also mentions the skill. Targets are sorted by weight (descending), then name.
func (m *Matcher) BuildSkillTargets(jobText, clientFocus string) []types.SkillTarget {
	required := m.ExtractSkills(jobText)
	if len(required) == 0 {
		return nil
	}

	focus := make(map[string]bool)
	for _, s := range m.ExtractSkills(clientFocus) {
		focus[s] = true
	}

	targets := make([]types.SkillTarget, 0, len(required))
	for _, name := range required {
		relevance := m.catalog.Relevance(name)
		weight := weightBase * relevance
		if focus[name] {
			weight *= weightClientFocus
		}
		targets = append(targets, types.SkillTarget{
			Name:        name,
			Weight:      weight,
			Relevance:   relevance,
			ClientFocus: focus[name],
		})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].Weight != targets[j].Weight {
			return targets[i].Weight > targets[j].Weight
		}
		return targets[i].Name < targets[j].Name
	})
	return targets
}
