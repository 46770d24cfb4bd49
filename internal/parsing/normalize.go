// Package parsing canonicalizes free-text fields (skills, titles, organizations, date phrases)
// into comparable keys.
package parsing

import (
	"strings"
	"unicode"
)

// skillNormalizations maps common skill name variants to canonical keys
var skillNormalizations = map[string]string{
	"golang":              "go",
	"golanglang":          "go",
	"go lang":             "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"k8s":                 "kubernetes",
	"react.js":            "react",
	"reactjs":             "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"nodejs":              "node.js",
	"node":                "node.js",
	"csharp":              "c#",
	"c sharp":             "c#",
	"cpp":                 "c++",
	"dotnet":              ".net",
	"postgres":            "postgresql",
	"amazon web services": "aws",
	"gcp":                 "google cloud",
	"ml":                  "machine learning",
}

// SkillKey normalizes a skill name to its canonical lowercase comparison key.
func SkillKey(skillName string) string {
	lower := strings.Join(strings.Fields(strings.ToLower(skillName)), " ")
	if lower == "" {
		return ""
	}
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}
	return lower
}

// Words splits text into lowercase words. Letters, digits and the tech suffix
// characters + # . are word characters, so "C#", "C++" and "Node.js" survive;
// trailing dots are dropped ("Sr." -> "sr").
func Words(text string) []string {
	var words []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w != "" {
			words = append(words, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// NormalizeTitle returns the comparison form of a job title.
func NormalizeTitle(title string) string {
	return strings.Join(Words(title), " ")
}

// ContainsPhrase reports whether phrase occurs as a contiguous run of words.
// An empty phrase never matches.
func ContainsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
