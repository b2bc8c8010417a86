package analysis

import (
	"math"
	"regexp"
	"strings"

	"lettercraft/internal/types"
)

// Complexity labels derived from the Flesch score.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

var (
	sentenceSplitter = regexp.MustCompile(`[.!?]+`)
	vowelRun         = regexp.MustCompile(`[aeiouyàèéêîôû]+`)
)

// CountWords returns the number of whitespace separated tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// SplitSentences splits text on runs of sentence terminators and drops blank parts.
// The returned sentences are not trimmed.
func SplitSentences(text string) []string {
	parts := sentenceSplitter.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// EstimateSyllables approximates French syllables as vowel groups per word,
// with a floor of one syllable per word.
func EstimateSyllables(text string) int {
	total := 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		total += max(1, len(vowelRun.FindAllStringIndex(word, -1)))
	}
	return total
}

// Readability computes the Flesch reading-ease score of text.
func Readability(text string) types.Readability {
	words := CountWords(text)
	if words == 0 {
		return types.Readability{Complexity: ComplexityComplex}
	}

	sentences := max(1, len(SplitSentences(text)))
	avgWPS := float64(words) / float64(sentences)
	syllablesPerWord := float64(EstimateSyllables(text)) / float64(words)

	raw := 206.835 - 1.015*avgWPS - 84.6*syllablesPerWord

	return types.Readability{
		FleschScore:         clamp(raw, 0, 100),
		Complexity:          complexityFor(raw),
		AvgWordsPerSentence: int(math.Round(avgWPS)),
	}
}

func complexityFor(score float64) string {
	switch {
	case score >= 70:
		return ComplexitySimple
	case score >= 50:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
