// Package location scores the geographic and time-zone fit between a job and a candidate.
package location

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3958.8

// sameStateDistance is the distance assumed for two places in one state when
// coordinates are unknown.
const sameStateDistance = 50.0

// Place is a parsed location. State is an uppercase code when recognized.
type Place struct {
	City  string
	State string
}

// IsZero reports whether neither city nor state is known.
func (p Place) IsZero() bool {
	return p.City == "" && p.State == ""
}

// modeRule holds the per-mode scoring constants.
type modeRule struct {
	maxCommute float64 // miles
	factor     float64 // scales the remaining commute budget
	sameState  float64
}

var modeRules = map[types.JobMode]modeRule{
	types.JobModeOnsite: {maxCommute: 30, factor: 0.8, sameState: 0.7},
	types.JobModeHybrid: {maxCommute: 50, factor: 0.9, sameState: 0.9},
	types.JobModeRemote: {maxCommute: 500, factor: 0.95, sameState: 0.95},
}

var otherModeRule = modeRule{maxCommute: 50, factor: 0.9, sameState: 0.95}

func ruleFor(mode types.JobMode) modeRule {
	if r, ok := modeRules[mode]; ok {
		return r
	}
	return otherModeRule
}

// Matcher scores locations against the catalog's states, zones and cities.
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

// ParseLocation splits "City, ST" text. A single part is a state when it is a known
// 2-letter code and a city otherwise; a known city without a state gets the state
// from the coordinate table.
func (m *Matcher) ParseLocation(text string) Place {
	var parts []string
	for _, p := range strings.Split(text, ",") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			parts = append(parts, p)
		}
	}

	var place Place
	switch len(parts) {
	case 0:
		return place
	case 1:
		if code, ok := m.catalog.StateCode(parts[0]); ok && len(parts[0]) == 2 {
			place.State = code
			return place
		}
		place.City = parts[0]
	default:
		place.City = parts[0]
		place.State = m.normalizeState(parts[1])
	}

	if place.State == "" {
		if city, ok := m.catalog.City(place.City, ""); ok {
			place.State = city.State
		}
	}
	return place
}

// normalizeState resolves a code or full name, also accepting a trailing ZIP code
// ("WA 98101"). Unknown values are returned uppercased.
func (m *Matcher) normalizeState(s string) string {
	if code, ok := m.catalog.StateCode(s); ok {
		return code
	}
	if fields := strings.Fields(s); len(fields) > 1 {
		if code, ok := m.catalog.StateCode(fields[0]); ok {
			return code
		}
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// MatchLocation scores a candidate location against a job location and mode.
//
// Rules in priority order: missing candidate location (blank or separators
// only), identical city, remote
// (time zones only), job without a location, same state, known coordinates on
// both sides, and finally different states without coordinates.
func (m *Matcher) MatchLocation(jobCity, jobState string, mode types.JobMode, candidateLocation string) types.LocationMatch {
	cand := m.ParseLocation(candidateLocation)
	if cand.IsZero() {
		return types.LocationMatch{Description: "No candidate location data", Outcome: types.OutcomeNone}
	}

	job := Place{City: strings.Join(strings.Fields(jobCity), " ")}
	if s := strings.TrimSpace(jobState); s != "" {
		job.State = m.normalizeState(s)
	}
	rule := ruleFor(mode)

	if job.City != "" && strings.EqualFold(job.City, cand.City) {
		zero := 0.0
		return types.LocationMatch{
			Score:                 1.0,
			Description:           fmt.Sprintf("Same city (%s)", cand.City),
			Distance:              &zero,
			WithinCommute:         true,
			TimeZoneCompatibility: 1.0,
			Outcome:               types.OutcomeExact,
		}
	}

	if mode == types.JobModeRemote {
		return m.matchRemote(job, cand)
	}

	if job.IsZero() {
		return types.LocationMatch{
			Score:                 0.5,
			Description:           "Job location not specified",
			TimeZoneCompatibility: m.timeZoneOrNeutral(job.State, cand.State),
			Outcome:               types.OutcomePartial,
		}
	}

	tz := m.timeZoneOrNeutral(job.State, cand.State)
	jobCoords, jobKnown := m.catalog.City(job.City, job.State)
	candCoords, candKnown := m.catalog.City(cand.City, cand.State)

	if job.State != "" && job.State == cand.State {
		distance := sameStateDistance
		if jobKnown && candKnown {
			distance = Haversine(jobCoords.Lat, jobCoords.Lon, candCoords.Lat, candCoords.Lon)
		}
		return types.LocationMatch{
			Score:                 rule.sameState,
			Description:           fmt.Sprintf("Same state (%s)", job.State),
			Distance:              &distance,
			WithinCommute:         distance <= rule.maxCommute,
			TimeZoneCompatibility: tz,
			Outcome:               types.OutcomePartial,
		}
	}

	if jobKnown && candKnown {
		distance := Haversine(jobCoords.Lat, jobCoords.Lon, candCoords.Lat, candCoords.Lon)
		if distance <= rule.maxCommute {
			score := math.Min(0.95, (1-distance/rule.maxCommute)*rule.factor)
			return types.LocationMatch{
				Score:                 score,
				Description:           fmt.Sprintf("%.0f miles away, within commute range", distance),
				Distance:              &distance,
				WithinCommute:         true,
				TimeZoneCompatibility: tz,
				Outcome:               outcomeFor(score),
			}
		}
		result := beyondCommute(mode, tz)
		result.Description = fmt.Sprintf("%.0f miles away, beyond commute range", distance)
		result.Distance = &distance
		return result
	}

	result := beyondCommute(mode, tz)
	result.Description = "Different state, distance unknown"
	return result
}

func (m *Matcher) matchRemote(job, cand Place) types.LocationMatch {
	result := types.LocationMatch{WithinCommute: true}
	if job.State == "" {
		result.Score = 1.0
		result.TimeZoneCompatibility = 1.0
		result.Description = "Remote role"
		result.Outcome = types.OutcomeExact
		return result
	}

	tz, ok := m.TimeZoneCompatibility(job.State, cand.State)
	switch {
	case !ok:
		result.Score = 0.5
		result.TimeZoneCompatibility = 0.5
		result.Description = "Remote role, candidate time zone unknown"
	case tz == 1.0:
		result.Score = 1.0
		result.TimeZoneCompatibility = 1.0
		result.Description = "Remote role, same time zone"
	default:
		result.Score = tz
		result.TimeZoneCompatibility = tz
		result.Description = "Remote role, different time zone"
	}
	result.Outcome = outcomeFor(result.Score)
	return result
}

// TimeZoneCompatibility returns 1.0 for states sharing a zone and otherwise
// max(0.5, 1 - 0.1 x smallest hour difference). ok is false when either state
// has no known zone.
func (m *Matcher) TimeZoneCompatibility(stateA, stateB string) (float64, bool) {
	zonesA, zonesB := m.catalog.StateZones(stateA), m.catalog.StateZones(stateB)
	if len(zonesA) == 0 || len(zonesB) == 0 {
		return 0, false
	}

	minDiff := math.Inf(1)
	for _, a := range zonesA {
		for _, b := range zonesB {
			if a == b {
				return 1.0, true
			}
			if diff, ok := m.catalog.HourDifference(a, b); ok {
				minDiff = math.Min(minDiff, diff)
			}
		}
	}
	if math.IsInf(minDiff, 1) {
		return 0, false
	}
	return math.Max(0.5, 1.0-0.1*minDiff), true
}

func (m *Matcher) timeZoneOrNeutral(stateA, stateB string) float64 {
	if tz, ok := m.TimeZoneCompatibility(stateA, stateB); ok {
		return tz
	}
	return 0.5
}

func beyondCommute(mode types.JobMode, tz float64) types.LocationMatch {
	var score float64
	switch mode {
	case types.JobModeOnsite:
		score = 0.1
	case types.JobModeHybrid:
		score = 0.2 + 0.3*tz
	default:
		score = 0.3
	}
	return types.LocationMatch{
		Score:                 score,
		TimeZoneCompatibility: tz,
		Outcome:               outcomeFor(score),
	}
}

func outcomeFor(score float64) types.MatchOutcome {
	switch {
	case score >= 1.0:
		return types.OutcomeExact
	case score > 0:
		return types.OutcomePartial
	default:
		return types.OutcomeNone
	}
}

// Haversine returns the great-circle distance in miles between two points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
