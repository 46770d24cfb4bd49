// Package catalog holds the static lookup tables of the matching engine: title
// groups, seniority levels, skill relationships, industries, states, time zones
// and city coordinates. Tables are loaded once and never written afterwards.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/candidate-matcher/internal/parsing"
)

// Relevance multipliers must stay within this range.
const (
	MinRelevance = 0.7
	MaxRelevance = 1.3
)

//go:embed catalog.yaml
var defaultDocument []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// SeniorityLevel is a named seniority band with its weight and title keywords.
type SeniorityLevel struct {
	Name     string   `yaml:"name" json:"name"`
	Weight   float64  `yaml:"weight" json:"weight"`
	Keywords []string `yaml:"keywords" json:"keywords,omitempty"`
}

// Industry is a keyword list identifying organizations of one industry.
type Industry struct {
	Name     string   `yaml:"name"`
	Reason   string   `yaml:"reason"`
	Keywords []string `yaml:"keywords"`
}

// JobLevels lists the title keywords for each job level. Levels are independent.
type JobLevels struct {
	Junior     []string `yaml:"junior"`
	Senior     []string `yaml:"senior"`
	Managerial []string `yaml:"managerial"`
}

// State is a US state with its time zones.
type State struct {
	Name  string   `yaml:"name"`
	Zones []string `yaml:"zones"`
}

// City is a known city with coordinates in degrees.
type City struct {
	Name  string  `yaml:"name"`
	State string  `yaml:"state"`
	Lat   float64 `yaml:"lat"`
	Lon   float64 `yaml:"lon"`
}

// Tables is the document schema of a catalog file.
type Tables struct {
	TitleGroups         [][]string          `yaml:"title_groups"`
	TechnologyTitles    map[string][]string `yaml:"technology_titles"`
	SeniorityLevels     []SeniorityLevel    `yaml:"seniority_levels"`
	DefaultSeniority    SeniorityLevel      `yaml:"default_seniority"`
	Skills              []string            `yaml:"skills"`
	AmbiguousTerms      []string            `yaml:"ambiguous_terms"`
	SkillClusters       map[string][]string `yaml:"skill_clusters"`
	TransferableSkills  map[string][]string `yaml:"transferable_skills"`
	TechnologyRelevance map[string]float64  `yaml:"technology_relevance"`
	Industries          []Industry          `yaml:"industries"`
	LeadershipKeywords  []string            `yaml:"leadership_keywords"`
	JobLevels           JobLevels           `yaml:"job_levels"`
	TimeZones           map[string]float64  `yaml:"time_zones"`
	States              map[string]State    `yaml:"states"`
	Cities              []City              `yaml:"cities"`
}

// phraseSet is a named list of word phrases.
type phraseSet struct {
	id      string
	phrases [][]string
}

func (p phraseSet) matches(words []string) bool {
	for _, phrase := range p.phrases {
		if parsing.ContainsPhrase(words, phrase) {
			return true
		}
	}
	return false
}

// Catalog is a validated and indexed set of tables. It is safe for concurrent use.
type Catalog struct {
	tables Tables

	titleGroups []phraseSet // title groups and technology families
	techFamily  []phraseSet
	seniority   []phraseSet // parallel to tables.SeniorityLevels

	terms     []string
	relevance map[string]float64
	related   map[string]map[string]struct{}

	stateCodes map[string]string // lowercase code or name -> code
	cities     map[string][]City // lowercase name -> cities
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultDocument)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog document from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read catalog file %s", path),
			Cause:   err,
		}
	}
	return Parse(data)
}

// Parse decodes, validates and indexes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, &LoadError{Message: "failed to decode catalog YAML", Cause: err}
	}
	return New(tables)
}

// New validates the tables and builds the lookup indexes.
func New(tables Tables) (*Catalog, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}

	c := &Catalog{
		tables:     tables,
		relevance:  make(map[string]float64, len(tables.TechnologyRelevance)),
		related:    make(map[string]map[string]struct{}),
		stateCodes: make(map[string]string, 2*len(tables.States)),
		cities:     make(map[string][]City, len(tables.Cities)),
	}
	c.indexTitles()
	c.indexSkills()
	c.indexPlaces()
	return c, nil
}

// Validate checks the rules every catalog must satisfy.
func (t *Tables) Validate() error {
	for i, group := range t.TitleGroups {
		if len(group) == 0 {
			return &ValidationError{Field: fmt.Sprintf("title_groups[%d]", i), Message: "group is empty"}
		}
		for _, title := range group {
			if parsing.NormalizeTitle(title) == "" {
				return &ValidationError{Field: fmt.Sprintf("title_groups[%d]", i), Message: "blank title"}
			}
		}
	}
	for key, titles := range t.TechnologyTitles {
		if len(titles) == 0 {
			return &ValidationError{Field: "technology_titles." + key, Message: "family is empty"}
		}
	}

	if len(t.SeniorityLevels) == 0 {
		return &ValidationError{Field: "seniority_levels", Message: "at least one level is required"}
	}
	for _, level := range t.SeniorityLevels {
		if level.Weight <= 0 {
			return &ValidationError{
				Field:   "seniority_levels." + level.Name,
				Message: fmt.Sprintf("weight must be positive, got %v", level.Weight),
			}
		}
	}
	if t.DefaultSeniority.Weight <= 0 {
		return &ValidationError{Field: "default_seniority", Message: "weight must be positive"}
	}

	for skill, r := range t.TechnologyRelevance {
		if r < MinRelevance || r > MaxRelevance {
			return &ValidationError{
				Field:   "technology_relevance." + skill,
				Message: fmt.Sprintf("multiplier %v outside [%v, %v]", r, MinRelevance, MaxRelevance),
			}
		}
	}

	for i, ind := range t.Industries {
		if ind.Name == "" || len(ind.Keywords) == 0 {
			return &ValidationError{Field: fmt.Sprintf("industries[%d]", i), Message: "name and keywords are required"}
		}
	}

	for code, state := range t.States {
		for _, zone := range state.Zones {
			if _, ok := t.TimeZones[zone]; !ok {
				return &ValidationError{Field: "states." + code, Message: fmt.Sprintf("unknown time zone %q", zone)}
			}
		}
	}
	for _, city := range t.Cities {
		if _, ok := t.States[strings.ToUpper(city.State)]; !ok {
			return &ValidationError{Field: "cities." + city.Name, Message: fmt.Sprintf("unknown state %q", city.State)}
		}
	}
	return nil
}

func (c *Catalog) indexTitles() {
	for i, group := range c.tables.TitleGroups {
		c.titleGroups = append(c.titleGroups, phraseSet{id: fmt.Sprintf("group:%d", i), phrases: phrases(group)})
	}

	keys := sortedKeys(c.tables.TechnologyTitles)
	for _, key := range keys {
		family := phraseSet{
			id:      key,
			phrases: phrases(append([]string{key}, c.tables.TechnologyTitles[key]...)),
		}
		c.techFamily = append(c.techFamily, family)
		c.titleGroups = append(c.titleGroups, phraseSet{
			id:      "tech:" + key,
			phrases: phrases(c.tables.TechnologyTitles[key]),
		})
	}

	for _, level := range c.tables.SeniorityLevels {
		c.seniority = append(c.seniority, phraseSet{id: level.Name, phrases: phrases(level.Keywords)})
	}
}

func (c *Catalog) indexSkills() {
	ambiguous := make(map[string]bool, len(c.tables.AmbiguousTerms))
	for _, term := range c.tables.AmbiguousTerms {
		ambiguous[strings.ToLower(strings.TrimSpace(term))] = true
	}

	seen := make(map[string]bool)
	addTerm := func(term string) {
		term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
		if term == "" || seen[term] || ambiguous[term] {
			return
		}
		seen[term] = true
		c.terms = append(c.terms, term)
	}

	link := func(a, b string) {
		a, b = parsing.SkillKey(a), parsing.SkillKey(b)
		if a == "" || b == "" || a == b {
			return
		}
		for _, pair := range [][2]string{{a, b}, {b, a}} {
			if c.related[pair[0]] == nil {
				c.related[pair[0]] = make(map[string]struct{})
			}
			c.related[pair[0]][pair[1]] = struct{}{}
		}
	}

	for _, term := range c.tables.Skills {
		addTerm(term)
	}
	for _, key := range sortedKeys(c.tables.SkillClusters) {
		members := append([]string{key}, c.tables.SkillClusters[key]...)
		for i, a := range members {
			addTerm(a)
			for _, b := range members[i+1:] {
				link(a, b)
			}
		}
	}
	for _, key := range sortedKeys(c.tables.TransferableSkills) {
		addTerm(key)
		for _, target := range c.tables.TransferableSkills[key] {
			addTerm(target)
			link(key, target)
		}
	}
	for skill, r := range c.tables.TechnologyRelevance {
		addTerm(skill)
		c.relevance[parsing.SkillKey(skill)] = r
	}
	sort.Strings(c.terms)
}

func (c *Catalog) indexPlaces() {
	for code, state := range c.tables.States {
		upper := strings.ToUpper(code)
		c.stateCodes[strings.ToLower(code)] = upper
		c.stateCodes[strings.ToLower(state.Name)] = upper
	}
	for _, city := range c.tables.Cities {
		city.State = strings.ToUpper(city.State)
		key := strings.ToLower(city.Name)
		c.cities[key] = append(c.cities[key], city)
	}
}

// TitleGroups returns the identifiers of every equivalence group (title group or
// technology title family) the title belongs to.
func (c *Catalog) TitleGroups(title string) []string {
	words := parsing.Words(title)
	var ids []string
	for _, group := range c.titleGroups {
		if group.matches(words) {
			ids = append(ids, group.id)
		}
	}
	return ids
}

// Equivalent reports whether two titles are identical after normalization or share
// an equivalence group.
func (c *Catalog) Equivalent(a, b string) bool {
	na, nb := parsing.NormalizeTitle(a), parsing.NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	groups := make(map[string]bool)
	for _, id := range c.TitleGroups(a) {
		groups[id] = true
	}
	for _, id := range c.TitleGroups(b) {
		if groups[id] {
			return true
		}
	}
	return false
}

// TitleTechnologies returns the technology tags of a title, sorted.
func (c *Catalog) TitleTechnologies(title string) []string {
	words := parsing.Words(title)
	var tags []string
	for _, family := range c.techFamily {
		if family.matches(words) {
			tags = append(tags, family.id)
		}
	}
	return tags
}

// Seniority returns the first seniority level whose keyword appears in the title,
// or the default level.
func (c *Catalog) Seniority(title string) SeniorityLevel {
	words := parsing.Words(title)
	for i, rule := range c.seniority {
		if rule.matches(words) {
			return c.tables.SeniorityLevels[i]
		}
	}
	return c.tables.DefaultSeniority
}

// SkillTerms returns the lowercase skill vocabulary recognized in free text.
func (c *Catalog) SkillTerms() []string {
	return append([]string(nil), c.terms...)
}

// Relevance returns the technology relevance multiplier of a skill key, 1.0 when unlisted.
func (c *Catalog) Relevance(skill string) float64 {
	if r, ok := c.relevance[parsing.SkillKey(skill)]; ok {
		return r
	}
	return 1.0
}

// Related reports whether two skills share a cluster or are transferable in either direction.
func (c *Catalog) Related(a, b string) bool {
	_, ok := c.related[parsing.SkillKey(a)][parsing.SkillKey(b)]
	return ok
}

// Industries returns the industry keyword lists.
func (c *Catalog) Industries() []Industry {
	return c.tables.Industries
}

// LeadershipKeywords returns the title keywords that signal leadership experience.
func (c *Catalog) LeadershipKeywords() []string {
	return c.tables.LeadershipKeywords
}

// JobLevels returns the job-level keyword lists.
func (c *Catalog) JobLevels() JobLevels {
	return c.tables.JobLevels
}

// StateCode resolves a 2-letter code or a full state name to its uppercase code.
func (c *Catalog) StateCode(s string) (string, bool) {
	code, ok := c.stateCodes[strings.ToLower(strings.Join(strings.Fields(s), " "))]
	return code, ok
}

// StateZones returns the time zones of a state code.
func (c *Catalog) StateZones(code string) []string {
	return c.tables.States[strings.ToUpper(code)].Zones
}

// HourDifference returns the absolute hour difference between two zones.
func (c *Catalog) HourDifference(a, b string) (float64, bool) {
	oa, okA := c.tables.TimeZones[a]
	ob, okB := c.tables.TimeZones[b]
	if !okA || !okB {
		return 0, false
	}
	return math.Abs(oa - ob), true
}

// City looks up a city by name. A non-empty state narrows the match; with an
// empty state the first listed city of that name is returned.
func (c *Catalog) City(name, state string) (City, bool) {
	candidates := c.cities[strings.ToLower(strings.TrimSpace(name))]
	if len(candidates) == 0 {
		return City{}, false
	}
	if state == "" {
		return candidates[0], true
	}
	for _, city := range candidates {
		if strings.EqualFold(city.State, state) {
			return city, true
		}
	}
	return City{}, false
}

func phrases(entries []string) [][]string {
	out := make([][]string, 0, len(entries))
	for _, entry := range entries {
		if words := parsing.Words(entry); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
