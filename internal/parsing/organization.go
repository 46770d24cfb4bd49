package parsing

import (
	"fmt"
	"strings"
)

// OrganizationPolicy selects how much of an organization name forms its comparison key.
type OrganizationPolicy int

const (
	// FirstWordPolicy keys an organization by the first word of its name, so
	// "Acme Corporation" and "Acme Inc" both become "acme". It tolerates
	// inconsistent suffixes at the cost of false positives for generic first
	// words ("first", "united", ...).
	FirstWordPolicy OrganizationPolicy = iota
	// FullNamePolicy keys an organization by its whole name before the first comma.
	FullNamePolicy
)

// String returns the configuration name of the policy.
func (p OrganizationPolicy) String() string {
	switch p {
	case FullNamePolicy:
		return "full_name"
	default:
		return "first_word"
	}
}

// ParseOrganizationPolicy parses a configuration value. Empty means FirstWordPolicy.
func ParseOrganizationPolicy(s string) (OrganizationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_word":
		return FirstWordPolicy, nil
	case "full_name":
		return FullNamePolicy, nil
	default:
		return FirstWordPolicy, &ValidationError{
			Field:   "organization_key",
			Message: fmt.Sprintf("unknown organization policy %q", s),
		}
	}
}

// NormalizeOrganization returns the canonical key of an organization name under FirstWordPolicy.
// Location qualifiers after the first comma are dropped ("Acme Inc, Seattle WA" -> "acme").
func NormalizeOrganization(raw string) string {
	return OrganizationKey(raw, FirstWordPolicy)
}

// OrganizationKey returns the canonical key of an organization name under the given policy.
// Unusable input yields "".
func OrganizationKey(raw string, policy OrganizationPolicy) string {
	segment, _, _ := strings.Cut(raw, ",")
	fields := strings.Fields(strings.ToLower(segment))
	if len(fields) == 0 {
		return ""
	}
	if policy == FullNamePolicy {
		return strings.Join(fields, " ")
	}
	return fields[0]
}
