package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxKeyPoints caps the number of key points extracted from a letter.
const MaxKeyPoints = 3

// WordsPerMinute is the reading speed used to estimate reading time.
const WordsPerMinute = 200

var (
	excessNewlines   = regexp.MustCompile(`\n{3,}`)
	horizontalSpaces = regexp.MustCompile(`[^\S\n]{2,}`)
	spaceAroundBreak = regexp.MustCompile(`[^\S\n]*\n[^\S\n]*`)

	actionWords = []string{"dirigé", "développé", "créé", "géré", "optimisé", "amélioré", "réalisé"}
)

// Format normalises raw provider output: line endings, blank lines, repeated
// spaces and stray leading or trailing commas. Paragraph breaks are kept.
// Format(Format(s)) == Format(s).
func Format(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSpace(s)
	s = horizontalSpaces.ReplaceAllString(s, " ")
	s = spaceAroundBreak.ReplaceAllString(s, "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ExtractKeyPoints returns up to MaxKeyPoints trimmed sentences of content
// that mention an action verb or a quantified achievement.
func ExtractKeyPoints(content string) []string {
	points := []string{}
	for _, sentence := range SplitSentences(content) {
		lower := strings.ToLower(sentence)
		if !containsAny(lower, actionWords) && !achievementPattern.MatchString(sentence) {
			continue
		}
		points = append(points, strings.TrimSpace(sentence))
		if len(points) == MaxKeyPoints {
			break
		}
	}
	return points
}

// ReadingTime estimates the reading time in whole minutes, rounded up.
func ReadingTime(words int) int {
	return int(math.Ceil(float64(words) / WordsPerMinute))
}
