// Package similarity finds candidates whose employment history duplicates or
// closely copies another candidate's, by comparing normalized organization and
// date sequences.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// Score thresholds, in percent
const (
	MinSimilarity           = 50
	HighSimilarityThreshold = 80
	IdenticalCompanyPercent = 90.0
	IdenticalDatePercent    = 80.0
	companyWeight           = 0.7
	dateWeight              = 0.3
)

// record is an employment history normalized once for repeated comparisons.
type record struct {
	history    types.EmploymentHistory
	orgKeys    []string
	dateTokens []map[string]bool
}

// Detector compares target histories against a fixed pool. It is read-only after
// construction and safe for concurrent use.
type Detector struct {
	policy  parsing.OrganizationPolicy
	records []record
	byOrg   map[string][]int // organization key -> record indices
}

// NewDetector normalizes the pool. Histories with neither organizations nor dates
// are dropped.
func NewDetector(histories []types.EmploymentHistory, policy parsing.OrganizationPolicy) *Detector {
	d := &Detector{policy: policy, byOrg: make(map[string][]int)}
	for _, h := range histories {
		if h.IsEmpty() {
			continue
		}
		r := record{history: h, orgKeys: make([]string, len(h.Organizations))}
		for i, org := range h.Organizations {
			r.orgKeys[i] = parsing.OrganizationKey(org, policy)
		}
		for _, phrase := range h.DatePhrases {
			set := make(map[string]bool)
			for _, token := range parsing.DateTokens(phrase) {
				set[token] = true
			}
			r.dateTokens = append(r.dateTokens, set)
		}

		idx := len(d.records)
		d.records = append(d.records, r)
		seen := make(map[string]bool)
		for _, key := range r.orgKeys {
			if key != "" && !seen[key] {
				seen[key] = true
				d.byOrg[key] = append(d.byOrg[key], idx)
			}
		}
	}
	return d
}

// Len returns the number of histories in the pool.
func (d *Detector) Len() int {
	return len(d.records)
}

// FindSimilarHistories compares the target organizations and dates with every
// history in the pool that shares at least one organization key, skipping
// excludeCandidateID. Matches scoring at least MinSimilarity are returned, most
// similar first, ties by candidate ID.
func (d *Detector) FindSimilarHistories(targetOrganizations, targetDates []string, excludeCandidateID string) []types.SimilarityMatch {
	var targetKeys []string
	for _, org := range targetOrganizations {
		if key := parsing.OrganizationKey(org, d.policy); key != "" {
			targetKeys = append(targetKeys, key)
		}
	}
	var targetTokens [][]string
	for _, phrase := range targetDates {
		targetTokens = append(targetTokens, parsing.DateTokens(phrase))
	}

	matches := []types.SimilarityMatch{}
	for _, idx := range d.candidates(targetKeys) {
		r := &d.records[idx]
		if excludeCandidateID != "" && r.history.CandidateID == excludeCandidateID {
			continue
		}
		m := compare(targetKeys, targetTokens, r)
		if m.Similarity >= MinSimilarity {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})
	return matches
}

// candidates returns, in pool order, the records sharing an organization key with the target.
func (d *Detector) candidates(targetKeys []string) []int {
	hit := make(map[int]bool)
	for _, key := range targetKeys {
		for _, idx := range d.byOrg[key] {
			hit[idx] = true
		}
	}
	indices := make([]int, 0, len(hit))
	for idx := range hit {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

func compare(targetKeys []string, targetTokens [][]string, r *record) types.SimilarityMatch {
	m := types.SimilarityMatch{
		CandidateID:   r.history.CandidateID,
		Organizations: r.history.Organizations,
		Dates:         r.history.DatePhrases,
	}

	var positions []int
	last := 0
	for _, key := range targetKeys {
		i := indexFrom(r.orgKeys, key, last)
		if i < 0 {
			i = indexFrom(r.orgKeys, key, 0)
		}
		if i < 0 {
			continue
		}
		org, _ := r.history.Organization(i)
		positions = append(positions, i)
		m.MatchedOrganizations = append(m.MatchedOrganizations, strings.TrimSpace(org))
		last = i
	}
	if len(targetKeys) > 0 {
		m.CompanyMatchPercentage = float64(len(positions)) / float64(len(targetKeys)) * 100
	}
	m.ChronologyMatch = inOrder(positions)
	m.DateMatchPercentage = dateMatchPercentage(targetTokens, r.dateTokens)

	m.Similarity = int(math.Round(companyWeight*m.CompanyMatchPercentage + dateWeight*m.DateMatchPercentage))
	m.HighSimilarity = m.Similarity >= HighSimilarityThreshold
	m.IdenticalChronology = m.ChronologyMatch &&
		m.CompanyMatchPercentage >= IdenticalCompanyPercent &&
		m.DateMatchPercentage >= IdenticalDatePercent
	return m
}

// indexFrom returns the first index at or after start holding key, or -1.
// Starting from the previous match lets repeated employers line up in order.
func indexFrom(keys []string, key string, start int) int {
	for i := start; i < len(keys); i++ {
		if keys[i] == key {
			return i
		}
	}
	return -1
}

// inOrder reports whether matched positions are non-decreasing. No match is not a
// chronology; a single match trivially is.
func inOrder(positions []int) bool {
	if len(positions) == 0 {
		return false
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			return false
		}
	}
	return true
}

// dateMatchPercentage counts, for every pair of target and candidate phrases, the
// target tokens present in the candidate phrase. A token matching several candidate
// phrases counts several times; the result is capped at 100.
func dateMatchPercentage(target [][]string, candidate []map[string]bool) float64 {
	total, matched := 0, 0
	for _, tokens := range target {
		total += len(tokens)
		for _, phrase := range candidate {
			for _, token := range tokens {
				if phrase[token] {
					matched++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return math.Min(100, float64(matched)/float64(total)*100)
}

// Suspicious reports whether any match is high-similarity or has an identical chronology.
func Suspicious(matches []types.SimilarityMatch) bool {
	for _, m := range matches {
		if m.HighSimilarity || m.IdenticalChronology {
			return true
		}
	}
	return false
}
