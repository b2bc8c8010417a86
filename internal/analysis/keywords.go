package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"lettercraft/internal/types"
)

// MaxKeywords caps the number of keywords extracted from a job description.
const MaxKeywords = 20

// ExtractKeywords returns up to MaxKeywords distinct vocabulary terms found in
// reference, in order of first appearance.
func ExtractKeywords(reference string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, strings.ToLower(reference))

	seen := make(map[string]struct{})
	keywords := make([]string, 0, MaxKeywords)
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) <= 3 || !InVocabulary(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

// MatchKeywords partitions keywords by case-insensitive containment in content.
func MatchKeywords(content string, keywords []string) types.KeywordMatch {
	match := types.KeywordMatch{
		Matched: []string{},
		Missing: []string{},
	}
	if len(keywords) == 0 {
		return match
	}

	lower := strings.ToLower(content)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			match.Matched = append(match.Matched, kw)
		} else {
			match.Missing = append(match.Missing, kw)
		}
	}
	match.DensityPercent = float64(len(match.Matched)) * 100 / float64(len(keywords))
	return match
}
