// Package titles scores a job title against the titles a candidate has held.
package titles

import (
	"math"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Blend weights for titles outside the job title's equivalence groups
const (
	wordSimilarityWeight = 0.6
	technologyWeight     = 0.3
	seniorityWeight      = 0.1

	partialWordCredit = 0.5
	minPartialWordLen = 3 // shorter words never earn partial credit
)

// Matcher matches titles using the catalog's equivalence groups and seniority levels.
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

// MatchTitle scores the best candidate title against the job title.
//
// Rules are evaluated in order:
//  1. the first candidate title equivalent to the job title scores 1.0 (exact);
//  2. every other title gets a blend of word similarity, shared technology tags
//     and seniority compatibility;
//  3. the highest blend wins, the first one on ties.
func (m *Matcher) MatchTitle(jobTitle string, candidateTitles []string) types.TitleMatch {
	jobTech := m.catalog.TitleTechnologies(jobTitle)
	result := types.TitleMatch{Outcome: types.OutcomeNone, Technologies: jobTech}
	if strings.TrimSpace(jobTitle) == "" {
		return result
	}

	for _, title := range candidateTitles {
		if strings.TrimSpace(title) == "" {
			continue
		}
		if m.catalog.Equivalent(jobTitle, title) {
			result.Score = 1.0
			result.MatchedTitle = title
			result.Outcome = types.OutcomeExact
			result.SharedTechnologies = intersect(jobTech, m.catalog.TitleTechnologies(title))
			return result
		}
	}

	jobLevel := m.catalog.Seniority(jobTitle)
	for _, title := range candidateTitles {
		if strings.TrimSpace(title) == "" {
			continue
		}
		shared := intersect(jobTech, m.catalog.TitleTechnologies(title))

		techScore := 0.0
		if len(jobTech) > 0 {
			techScore = float64(len(shared)) / float64(len(jobTech))
		}
		levelScore := 1 - math.Abs(jobLevel.Weight-m.catalog.Seniority(title).Weight)
		levelScore = math.Max(0, math.Min(1, levelScore))

		score := wordSimilarityWeight*WordSimilarity(jobTitle, title) +
			technologyWeight*techScore +
			seniorityWeight*levelScore
		score = math.Max(0, math.Min(1, score))

		if score > result.Score {
			result.Score = score
			result.MatchedTitle = title
			result.Outcome = types.OutcomePartial
			result.SharedTechnologies = shared
		}
	}
	return result
}

// WordSimilarity counts exact word overlaps plus half credit for words that are
// substrings of one another, normalized by the larger word count and capped at 1.
func WordSimilarity(a, b string) float64 {
	wordsA, wordsB := parsing.Words(a), parsing.Words(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	inB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		inB[w] = true
	}

	overlap := 0.0
	for _, w := range wordsA {
		if inB[w] {
			overlap++
			continue
		}
		if len(w) < minPartialWordLen {
			continue
		}
		for _, other := range wordsB {
			if len(other) >= minPartialWordLen && (strings.Contains(other, w) || strings.Contains(w, other)) {
				overlap += partialWordCredit
				break
			}
		}
	}

	return math.Min(1, overlap/float64(max(len(wordsA), len(wordsB))))
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	var out []string
	for _, s := range a {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
