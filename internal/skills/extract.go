// Package skills extracts skills from job text and scores candidates against them.
package skills

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/parsing"
)

// Skill terms may contain the tech suffix characters + # . so boundaries are
// anything that is neither a letter, a digit nor one of those. A trailing dot
// still ends a term when it closes a sentence ("... and Java.").
const (
	termPrefix = `(?:^|[^\p{L}\p{N}+#.])`
	termSuffix = `(?:$|[^\p{L}\p{N}+#.]|\.(?:$|[^\p{L}\p{N}]))`
)

type term struct {
	key     string
	words   []string
	pattern *regexp.Regexp
}

// Matcher extracts and scores skills using the catalog vocabulary. Patterns are
// compiled once; a Matcher is safe for concurrent use.
type Matcher struct {
	catalog *catalog.Catalog
	terms   []term
	words   map[string]*regexp.Regexp
}

// NewMatcher compiles the vocabulary of c. A nil catalog selects catalog.Default().
func NewMatcher(c *catalog.Catalog) *Matcher {
	if c == nil {
		c = catalog.Default()
	}
	m := &Matcher{catalog: c, words: make(map[string]*regexp.Regexp)}
	for _, t := range c.SkillTerms() {
		words := strings.Fields(t)
		m.terms = append(m.terms, term{
			key:     parsing.SkillKey(t),
			words:   words,
			pattern: compileTerm(t),
		})
		if len(words) > 1 {
			for _, w := range words {
				if _, ok := m.words[w]; !ok {
					m.words[w] = compileTerm(w)
				}
			}
		}
	}
	return m
}

func compileTerm(t string) *regexp.Regexp {
	return regexp.MustCompile(termPrefix + regexp.QuoteMeta(t) + termSuffix)
}

// ExtractSkills returns the sorted canonical keys of every vocabulary skill found in text.
// A multi-word skill is also accepted when at least half of its words appear.
func (m *Matcher) ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	found := make(map[string]bool)
	for _, t := range m.terms {
		if found[t.key] {
			continue
		}
		if t.pattern.MatchString(lower) || m.mostWordsPresent(t.words, lower) {
			found[t.key] = true
		}
	}

	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Matcher) mostWordsPresent(words []string, text string) bool {
	if len(words) < 2 {
		return false
	}
	present := 0
	for _, w := range words {
		if m.words[w].MatchString(text) {
			present++
		}
	}
	return 2*present >= len(words)
}
