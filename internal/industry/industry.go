// Package industry detects whether a candidate has worked for a job's client or
// in the client's industry.
package industry

import (
	"fmt"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Scores for the two kinds of client experience
const (
	directMatchScore   = 1.0
	industryMatchScore = 0.8

	// Keywords this short only match whole words ("fis" must not match "fishing").
	shortKeywordLen = 3
)

// Matcher matches client experience using the catalog's industry keyword lists.
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

// MatchClientExperience scores a candidate's organizations against the job's client.
// A direct match (an organization containing the client name) scores 1.0; an
// organization in the client's industry scores 0.8; anything else scores 0.
func (m *Matcher) MatchClientExperience(clientName string, organizations []string) types.ClientMatch {
	client := strings.ToLower(strings.Join(strings.Fields(clientName), " "))
	if client == "" || len(organizations) == 0 {
		return types.ClientMatch{}
	}

	for _, org := range organizations {
		if strings.Contains(strings.ToLower(org), client) {
			return types.ClientMatch{
				Score:        directMatchScore,
				Reason:       fmt.Sprintf("Previous experience with %s", strings.TrimSpace(org)),
				Organization: org,
			}
		}
	}

	industry, ok := m.IndustryOf(clientName)
	if !ok {
		return types.ClientMatch{}
	}
	for _, org := range organizations {
		if matchesIndustry(org, industry) {
			return types.ClientMatch{
				Score:        industryMatchScore,
				Reason:       industry.Reason,
				Organization: org,
				Industry:     industry.Name,
			}
		}
	}
	return types.ClientMatch{}
}

// IndustryOf returns the first industry whose keywords appear in name.
func (m *Matcher) IndustryOf(name string) (catalog.Industry, bool) {
	for _, industry := range m.catalog.Industries() {
		if matchesIndustry(name, industry) {
			return industry, true
		}
	}
	return catalog.Industry{}, false
}

func matchesIndustry(name string, industry catalog.Industry) bool {
	lower := strings.ToLower(name)
	var words map[string]bool
	for _, keyword := range industry.Keywords {
		keyword = strings.ToLower(keyword)
		if len(keyword) > shortKeywordLen {
			if strings.Contains(lower, keyword) {
				return true
			}
			continue
		}
		if words == nil {
			words = make(map[string]bool)
			for _, w := range parsing.Words(lower) {
				words[w] = true
			}
		}
		if words[keyword] {
			return true
		}
	}
	return false
}
