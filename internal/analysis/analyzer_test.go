package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillerSentence = "Nous travaillons ensemble chaque jour."

// buildLetter returns a letter of paragraphs, each made of the given opening
// sentence (may be empty) followed by five-word filler sentences up to
// wordsPerParagraph words.
func buildLetter(t *testing.T, openings []string, wordsPerParagraph int) string {
	t.Helper()
	paragraphs := make([]string, 0, len(openings))
	for _, opening := range openings {
		var b strings.Builder
		words := CountWords(opening)
		b.WriteString(opening)
		for words < wordsPerParagraph {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(fillerSentence)
			words += 5
		}
		require.Equal(t, wordsPerParagraph, words, "paragraph length must be a multiple of the filler")
		paragraphs = append(paragraphs, b.String())
	}
	return strings.Join(paragraphs, "\n\n")
}

func TestAnalyze_ClichesArePenalised(t *testing.T) {
	cliche := "Je suis motivé par ce poste. Votre entreprise m'intéresse."
	clean := "Je suis attiré par ce poste. Votre société m'attire."

	require.Equal(t, CountWords(cliche), CountWords(clean))

	withCliches := Analyze(cliche, "")
	without := Analyze(clean, "")

	assert.GreaterOrEqual(t, without.OverallScore-withCliches.OverallScore, 20.0)
	assert.Contains(t, withCliches.Improvements, ImproveCliches)
	assert.NotContains(t, withCliches.Strengths, StrengthNoCliche)
	assert.Contains(t, without.Strengths, StrengthNoCliche)
}

func TestAnalyze_TypographicApostropheCliche(t *testing.T) {
	a := Analyze("Votre entreprise m’intéresse.", "")
	assert.Contains(t, a.Improvements, ImproveCliches)
}

func TestAnalyze_IdealLetterIsClamped(t *testing.T) {
	job := "Python React Management Marketing Finance Agile Scrum Leadership Budget Reporting"
	letter := buildLetter(t, []string{
		"Python react management marketing finance agile scrum leadership hausse 25%.",
		"", "", "",
	}, 75)

	require.Equal(t, 300, CountWords(letter))
	require.Len(t, Paragraphs(letter), 4)

	a := Analyze(letter, job)

	assert.Equal(t, 100.0, a.OverallScore)
	assert.InDelta(t, 80.0, a.Keywords.DensityPercent, 0.001)
	assert.ElementsMatch(t, []string{"budget", "reporting"}, a.Keywords.Missing)
	assert.Len(t, a.Keywords.Matched, 8)
	assert.Equal(t, []string{StrengthLength, StrengthAchievements, StrengthNoCliche, StrengthSentences}, a.Strengths)
	assert.Empty(t, a.Improvements)
	assert.True(t, a.Structure.HasBody)
	assert.Equal(t, 4, a.Structure.ParagraphCount)
}

func TestAnalyze_WithoutJobDescription(t *testing.T) {
	a := Analyze("Madame, Monsieur, je postule.", "")

	require.NotNil(t, a.Keywords.Matched)
	require.NotNil(t, a.Keywords.Missing)
	assert.Empty(t, a.Keywords.Matched)
	assert.Empty(t, a.Keywords.Missing)
	assert.Zero(t, a.Keywords.DensityPercent)
}

func TestAnalyze_ScoreStaysInRange(t *testing.T) {
	long := strings.Repeat("je suis motivé et votre entreprise m'intéresse vraiment très beaucoup ", 80)
	inputs := []string{
		"",
		"   ",
		long,
		buildLetter(t, []string{"", "", ""}, 100),
		strings.Repeat("a", 10000),
	}

	for _, in := range inputs {
		a := Analyze(in, "python react java data")
		assert.GreaterOrEqual(t, a.OverallScore, 0.0)
		assert.LessOrEqual(t, a.OverallScore, 100.0)
	}
}

func TestAnalyze_IntensifierPenalty(t *testing.T) {
	base := Analyze("Une lettre courte et sobre.", "")
	intense := Analyze("Une lettre Très courte et sobre.", "")
	assert.Equal(t, base.OverallScore-5, intense.OverallScore)

	// "beaucoupdetrucs" is not a whole-word intensifier.
	glued := Analyze("Une lettre beaucoupdetrucs courte et sobre.", "")
	assert.Equal(t, base.OverallScore, glued.OverallScore)
}

func TestImprovements(t *testing.T) {
	t.Run("too long", func(t *testing.T) {
		letter := buildLetter(t, []string{"", "", "", "", ""}, 100)
		assert.Contains(t, Improvements(letter), ImproveTooLong)
		assert.NotContains(t, Improvements(letter), ImproveTooShort)
	})

	t.Run("too short", func(t *testing.T) {
		assert.Contains(t, Improvements("Bonjour."), ImproveTooShort)
	})

	t.Run("long sentence", func(t *testing.T) {
		sentence := strings.TrimSpace(strings.Repeat("mot ", 30)) + "."
		assert.Contains(t, Improvements(sentence), ImproveLongSentence)
		assert.NotContains(t, Strengths(sentence), StrengthSentences)
	})

	t.Run("achievement present", func(t *testing.T) {
		imp := Improvements("J'ai accompagné 12 clients pendant 3 années.")
		assert.NotContains(t, imp, ImproveAchievements)
	})
}

func TestStrengths_EmptyContent(t *testing.T) {
	assert.Equal(t, []string{StrengthNoCliche}, Strengths(""))
}

func TestKeywordDensityIsMonotonic(t *testing.T) {
	keywords := []string{"python", "react", "agile", "scrum"}
	content := ""
	previous := -1.0
	for _, kw := range keywords {
		content += " " + strings.ToUpper(kw)
		density := MatchKeywords(content, keywords).DensityPercent
		assert.GreaterOrEqual(t, density, previous)
		previous = density
	}
	assert.Equal(t, 100.0, previous)
}

func TestExtractKeywords(t *testing.T) {
	t.Run("filters, dedupes and keeps order", func(t *testing.T) {
		got := ExtractKeywords("Nous cherchons un développeur Python (React, Node) pour notre équipe. Python!")
		assert.Equal(t, []string{"python", "react", "node", "équipe"}, got)
	})

	t.Run("short tokens are ignored", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords("SQL CSS PHP ROI KPI"))
	})

	t.Run("capped", func(t *testing.T) {
		var terms []string
		for _, term := range vocabularyTerms {
			if len([]rune(term)) > 3 && !strings.ContainsAny(term, "-") {
				terms = append(terms, term)
			}
		}
		got := ExtractKeywords(strings.Join(terms, " "))
		assert.Len(t, got, MaxKeywords)
		assert.Equal(t, terms[:MaxKeywords], got)
	})
}

func TestMatchKeywords_NoKeywords(t *testing.T) {
	m := MatchKeywords("anything", nil)
	assert.Zero(t, m.DensityPercent)
	assert.Empty(t, m.Matched)
	assert.Empty(t, m.Missing)
}
