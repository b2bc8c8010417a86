package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"lettercraft/internal/types"
)

// Strength and improvement messages surfaced to the user.
const (
	StrengthLength       = "Longueur optimale pour maintenir l'attention"
	StrengthAchievements = "Utilise des données chiffrées pour illustrer les réalisations"
	StrengthNoCliche     = "Évite les formulations trop génériques"
	StrengthSentences    = "Phrases de longueur appropriée pour la lisibilité"

	ImproveTooShort     = "Développer davantage les expériences et compétences"
	ImproveTooLong      = "Raccourcir pour plus d'impact et de lisibilité"
	ImproveCliches      = "Remplacer les formulations génériques par des exemples concrets"
	ImproveAchievements = "Ajouter des résultats chiffrés pour renforcer la crédibilité"
	ImproveLongSentence = "Raccourcir les phrases trop longues pour améliorer la lisibilité"
)

const (
	baseScore = 70

	idealMinWords = 250
	idealMaxWords = 400
	minWords      = 200
	maxWords      = 500

	idealMinParagraphs = 3
	idealMaxParagraphs = 5

	maxAvgSentenceWords = 20
	longSentenceWords   = 25
)

var (
	achievementPattern = regexp.MustCompile(`\d+%|\d+\s*(euros?|€|clients?|projets?|années?)`)

	cliches = []string{
		"je suis motivé",
		"votre entreprise m'intéresse",
	}

	intensifiers = map[string]struct{}{"très": {}, "vraiment": {}, "beaucoup": {}, "énormément": {}}
)

// Analyze scores a letter. jobDescription may be empty, in which case keyword
// coverage is not evaluated. Analyze is pure and safe for concurrent use.
func Analyze(content, jobDescription string) types.LetterAnalysis {
	hasJob := strings.TrimSpace(jobDescription) != ""
	keywords := types.KeywordMatch{Matched: []string{}, Missing: []string{}}
	if hasJob {
		keywords = MatchKeywords(content, ExtractKeywords(jobDescription))
	}

	return types.LetterAnalysis{
		OverallScore: overallScore(content, hasJob, keywords.DensityPercent),
		Strengths:    Strengths(content),
		Improvements: Improvements(content),
		Readability:  Readability(content),
		Keywords:     keywords,
		Sentiment:    Sentiment(content),
		Structure:    Structure(content),
	}
}

func overallScore(content string, hasJob bool, density float64) float64 {
	score := float64(baseScore)

	words := CountWords(content)
	switch {
	case words >= idealMinWords && words <= idealMaxWords:
		score += 10
	case words < minWords || words > maxWords:
		score -= 15
	}

	if p := len(Paragraphs(content)); p >= idealMinParagraphs && p <= idealMaxParagraphs {
		score += 10
	}

	if hasJob {
		score += min(20, density/5)
	}

	score -= 10 * float64(countCliches(content))

	if hasIntensifier(content) {
		score -= 5
	}

	return clamp(score, 0, 100)
}

// Strengths lists the positive signals found in content.
func Strengths(content string) []string {
	strengths := []string{}

	if words := CountWords(content); words >= idealMinWords && words <= idealMaxWords {
		strengths = append(strengths, StrengthLength)
	}
	if HasAchievement(content) {
		strengths = append(strengths, StrengthAchievements)
	}
	if countCliches(content) == 0 {
		strengths = append(strengths, StrengthNoCliche)
	}
	if sentences := SplitSentences(content); len(sentences) > 0 && averageSentenceWords(sentences) <= maxAvgSentenceWords {
		strengths = append(strengths, StrengthSentences)
	}

	return strengths
}

// Improvements lists the suggestions that would raise the score of content.
func Improvements(content string) []string {
	improvements := []string{}

	words := CountWords(content)
	if words < idealMinWords {
		improvements = append(improvements, ImproveTooShort)
	} else if words > idealMaxWords {
		improvements = append(improvements, ImproveTooLong)
	}
	if countCliches(content) > 0 {
		improvements = append(improvements, ImproveCliches)
	}
	if !HasAchievement(content) {
		improvements = append(improvements, ImproveAchievements)
	}
	for _, s := range SplitSentences(content) {
		if CountWords(s) > longSentenceWords {
			improvements = append(improvements, ImproveLongSentence)
			break
		}
	}

	return improvements
}

// HasAchievement reports whether content quantifies a result, such as a
// percentage or an amount of clients, projects, years or euros.
func HasAchievement(content string) bool {
	return achievementPattern.MatchString(content)
}

func countCliches(content string) int {
	lower := strings.ReplaceAll(strings.ToLower(content), "’", "'")
	n := 0
	for _, c := range cliches {
		if strings.Contains(lower, c) {
			n++
		}
	}
	return n
}

func hasIntensifier(content string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, t := range tokens {
		if _, ok := intensifiers[t]; ok {
			return true
		}
	}
	return false
}

func averageSentenceWords(sentences []string) float64 {
	total := 0
	for _, s := range sentences {
		total += CountWords(s)
	}
	return float64(total) / float64(len(sentences))
}
