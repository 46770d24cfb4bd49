package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reNonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reYear     = regexp.MustCompile(`^(19|20)[0-9]{2}$`)
	reMonthNum = regexp.MustCompile(`^[0-9]{1,2}$`)
)

// monthTokens maps month names and abbreviations to their month number.
var monthTokens = map[string]string{
	"jan": "1", "january": "1",
	"feb": "2", "february": "2",
	"mar": "3", "march": "3",
	"apr": "4", "april": "4",
	"may": "5",
	"jun": "6", "june": "6",
	"jul": "7", "july": "7",
	"aug": "8", "august": "8",
	"sep": "9", "sept": "9", "september": "9",
	"oct": "10", "october": "10",
	"nov": "11", "november": "11",
	"dec": "12", "december": "12",
}

// DateTokens reduces a date phrase to its year and month tokens.
// Years are kept as written; months (names or 1-2 digit numbers) become their
// number without leading zeros, so "March 2019" and "2019-03" give the same
// multiset. Anything else, including "Present", is dropped.
func DateTokens(phrase string) []string {
	cleaned := reNonAlnum.ReplaceAllString(strings.ToLower(phrase), " ")

	var tokens []string
	for _, field := range strings.Fields(cleaned) {
		switch {
		case reYear.MatchString(field):
			tokens = append(tokens, field)
		case reMonthNum.MatchString(field):
			n, err := strconv.Atoi(field)
			if err != nil {
				continue
			}
			tokens = append(tokens, strconv.Itoa(n))
		default:
			if month, ok := monthTokens[field]; ok {
				tokens = append(tokens, month)
			}
		}
	}
	return tokens
}

// YearTokens returns every 4-digit year found across the phrases, in order of appearance.
func YearTokens(phrases []string) []int {
	var years []int
	for _, phrase := range phrases {
		for _, token := range DateTokens(phrase) {
			if !reYear.MatchString(token) {
				continue
			}
			if year, err := strconv.Atoi(token); err == nil {
				years = append(years, year)
			}
		}
	}
	return years
}

// EarliestYear returns the smallest year token across the phrases.
func EarliestYear(phrases []string) (int, bool) {
	years := YearTokens(phrases)
	if len(years) == 0 {
		return 0, false
	}
	earliest := years[0]
	for _, y := range years[1:] {
		earliest = min(earliest, y)
	}
	return earliest, true
}
