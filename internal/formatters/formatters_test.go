package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"lettercraft/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLetter() types.GeneratedLetter {
	return types.GeneratedLetter{
		Content:            "Madame, Monsieur,\n\nJe souhaite rejoindre Acme.\n\nCordialement,",
		WordCount:          9,
		AIScore:            78,
		Suggestions:        []string{"Ajoutez un exemple chiffré"},
		KeyPoints:          []string{"Je souhaite rejoindre Acme."},
		Tone:               types.ToneProfessional,
		ReadingTimeMinutes: 1,
		Provider:           "openai",
	}
}

func sampleAnalysis() types.LetterAnalysis {
	return types.LetterAnalysis{
		OverallScore: 72,
		Strengths:    []string{"Structure complète"},
		Improvements: []string{"Mentionnez plus de mots-clés"},
		Readability:  types.Readability{FleschScore: 61.5, Complexity: "moderate", AvgWordsPerSentence: 14},
		Keywords:     types.KeywordMatch{Matched: []string{"golang"}, Missing: []string{"kubernetes"}, DensityPercent: 50},
		Sentiment:    types.Sentiment{Score: 0.4, Label: "positive"},
		Structure:    types.Structure{HasOpening: true, HasBody: true, HasClosing: true, ParagraphCount: 3},
	}
}

func TestRegistryDispatch(t *testing.T) {
	analysis := sampleAnalysis()

	tests := []struct {
		name   string
		data   any
		format string
		want   []string
	}{
		{"letter text", sampleLetter(), "text", []string{"=== COVER LETTER ===", "Score: 78/100", "Provider: openai", "- Ajoutez un exemple chiffré"}},
		{"letter pointer markdown", ptr(sampleLetter()), "markdown", []string{"# Cover Letter", "- **Tone:** PROFESSIONAL", "## Key Points"}},
		{"analysis text", analysis, "text", []string{"Overall Score: 72/100", "Flesch score: 61.5 (moderate)", "Missing: kubernetes", "Opening: yes"}},
		{"analysis markdown", analysis, "markdown", []string{"# Letter Analysis", "## Keywords", "| yes | yes | yes | 3 |"}},
		{"improved text", types.ImproveLetterOutput{Content: "Nouvelle version", Analysis: &analysis}, "text", []string{"=== IMPROVED LETTER ===", "Nouvelle version", "Overall Score: 72/100"}},
		{"improved markdown", types.ImproveLetterOutput{Content: "Nouvelle version"}, "markdown", []string{"# Improved Letter", "Nouvelle version"}},
		{"reports text", []types.AnalysisReport{{Source: "a.txt", Analysis: analysis}, {Source: "b.txt", Analysis: analysis}}, "text", []string{"=== a.txt ===", "=== b.txt ==="}},
		{"reports markdown", []types.AnalysisReport{{Source: "a.txt", Analysis: analysis}}, "markdown", []string{"# a.txt", "## Readability"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := GlobalRegistry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestImprovedWithoutAnalysisOmitsSection(t *testing.T) {
	out, err := GlobalRegistry.Format(types.ImproveLetterOutput{Content: "x"}, "text")
	require.NoError(t, err)
	assert.NotContains(t, out, "LETTER ANALYSIS")
}

func TestJSONFormatter(t *testing.T) {
	out, err := GlobalRegistry.Format(sampleLetter(), "json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "PROFESSIONAL", decoded["tone"])
	assert.EqualValues(t, 9, decoded["wordCount"])
}

func TestUnknownFormat(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleLetter(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no formatter found for format 'xml' and type 'GeneratedLetter'")
}

func TestUnknownTypeOnlyRendersAsJSON(t *testing.T) {
	_, err := GlobalRegistry.Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err)

	out, err := GlobalRegistry.Format(map[string]int{"a": 1}, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"a": 1`)
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestFormatterTypeMismatch(t *testing.T) {
	_, err := (&LetterTextFormatter{}).Format(sampleAnalysis())
	assert.Error(t, err)
	_, err = (&ReportsFormatter{}).Format(sampleLetter())
	assert.Error(t, err)
}
