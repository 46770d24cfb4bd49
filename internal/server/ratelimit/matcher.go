package ratelimit

import (
	"strings"
)

// unlimited is returned for endpoints that are never rate limited.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for a request, or nil when the default
// limit applies. Config paths use the same syntax as the router: a "{name}"
// segment matches any single path segment and a trailing "/" matches any suffix.
// An empty Method matches every method. The most specific match wins: exact
// patterns before prefixes, longer prefixes before shorter ones.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		cfg := unlimited
		return &cfg
	}

	segments := splitPath(path)

	var best *EndpointConfig
	bestRank := -1
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != "" && cfg.Method != method {
			continue
		}
		rank := matchRank(cfg.Path, segments)
		if rank > bestRank {
			best, bestRank = cfg, rank
		}
	}
	return best
}

// matchRank scores how specifically pattern matches the path segments.
// It returns -1 when the pattern does not match.
func matchRank(pattern string, segments []string) int {
	prefix := strings.HasSuffix(pattern, "/")
	want := splitPath(pattern)

	if len(want) > len(segments) || (!prefix && len(want) != len(segments)) {
		return -1
	}

	rank := 0
	for i, seg := range want {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			rank++
		case seg == segments[i]:
			rank += 2
		default:
			return -1
		}
	}
	if !prefix {
		// Any exact pattern outranks every prefix.
		rank += 1000
	}
	return rank
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
