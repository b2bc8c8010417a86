package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"lettercraft/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Data type keys used by the registry
const (
	TypeAny             = "any"
	TypeGeneratedLetter = "GeneratedLetter"
	TypeLetterAnalysis  = "LetterAnalysis"
	TypeImprovedLetter  = "ImproveLetterOutput"
	TypeAnalysisReports = "AnalysisReports"
)

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeGeneratedLetter, &LetterTextFormatter{})
	registry.RegisterFormatter("markdown", TypeGeneratedLetter, &LetterMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeLetterAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", TypeLetterAnalysis, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeImprovedLetter, &ImprovedTextFormatter{})
	registry.RegisterFormatter("markdown", TypeImprovedLetter, &ImprovedMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeAnalysisReports, &ReportsFormatter{markdown: false})
	registry.RegisterFormatter("markdown", TypeAnalysisReports, &ReportsFormatter{markdown: true})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func deref(data any) any {
	switch v := data.(type) {
	case *types.GeneratedLetter:
		if v != nil {
			return *v
		}
	case *types.LetterAnalysis:
		if v != nil {
			return *v
		}
	case *types.ImproveLetterOutput:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.GeneratedLetter:
		return TypeGeneratedLetter
	case types.LetterAnalysis:
		return TypeLetterAnalysis
	case types.ImproveLetterOutput:
		return TypeImprovedLetter
	case []types.AnalysisReport:
		return TypeAnalysisReports
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

func writeList(sb *strings.Builder, items []string, bullet string) {
	for _, item := range items {
		sb.WriteString(bullet)
		sb.WriteString(item)
		sb.WriteString("\n")
	}
}

// LetterTextFormatter renders a generated letter as plain text
type LetterTextFormatter struct{}

func (f *LetterTextFormatter) Format(data any) (string, error) {
	letter, ok := data.(types.GeneratedLetter)
	if !ok {
		return "", fmt.Errorf("expected GeneratedLetter, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== COVER LETTER ===\n\n")
	output.WriteString(letter.Content)
	output.WriteString("\n\n")

	output.WriteString("=== DETAILS ===\n")
	fmt.Fprintf(&output, "Score: %.0f/100\n", letter.AIScore)
	fmt.Fprintf(&output, "Words: %d (about %d min read)\n", letter.WordCount, letter.ReadingTimeMinutes)
	fmt.Fprintf(&output, "Tone: %s\n", letter.Tone)
	if letter.Provider != "" {
		fmt.Fprintf(&output, "Provider: %s\n", letter.Provider)
	}

	if len(letter.KeyPoints) > 0 {
		output.WriteString("\nKey points:\n")
		writeList(&output, letter.KeyPoints, "- ")
	}
	if len(letter.Suggestions) > 0 {
		output.WriteString("\nSuggestions:\n")
		writeList(&output, letter.Suggestions, "- ")
	}

	return output.String(), nil
}

func (f *LetterTextFormatter) SupportedType() string {
	return TypeGeneratedLetter
}

// LetterMarkdownFormatter renders a generated letter as markdown
type LetterMarkdownFormatter struct{}

func (f *LetterMarkdownFormatter) Format(data any) (string, error) {
	letter, ok := data.(types.GeneratedLetter)
	if !ok {
		return "", fmt.Errorf("expected GeneratedLetter, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Cover Letter\n\n")
	output.WriteString(letter.Content)
	output.WriteString("\n\n")

	output.WriteString("## Details\n\n")
	fmt.Fprintf(&output, "- **Score:** %.0f/100\n", letter.AIScore)
	fmt.Fprintf(&output, "- **Words:** %d (about %d min read)\n", letter.WordCount, letter.ReadingTimeMinutes)
	fmt.Fprintf(&output, "- **Tone:** %s\n", letter.Tone)
	if letter.Provider != "" {
		fmt.Fprintf(&output, "- **Provider:** %s\n", letter.Provider)
	}

	if len(letter.KeyPoints) > 0 {
		output.WriteString("\n## Key Points\n\n")
		writeList(&output, letter.KeyPoints, "- ")
	}
	if len(letter.Suggestions) > 0 {
		output.WriteString("\n## Suggestions\n\n")
		writeList(&output, letter.Suggestions, "- ")
	}

	return output.String(), nil
}

func (f *LetterMarkdownFormatter) SupportedType() string {
	return TypeGeneratedLetter
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeAnalysisText(output *strings.Builder, a types.LetterAnalysis) {
	fmt.Fprintf(output, "Overall Score: %.0f/100\n\n", a.OverallScore)

	output.WriteString("=== READABILITY ===\n")
	fmt.Fprintf(output, "Flesch score: %.1f (%s)\n", a.Readability.FleschScore, a.Readability.Complexity)
	fmt.Fprintf(output, "Average words per sentence: %d\n\n", a.Readability.AvgWordsPerSentence)

	output.WriteString("=== STRUCTURE ===\n")
	fmt.Fprintf(output, "Opening: %s, Body: %s, Closing: %s, Paragraphs: %d\n\n",
		yesNo(a.Structure.HasOpening), yesNo(a.Structure.HasBody), yesNo(a.Structure.HasClosing), a.Structure.ParagraphCount)

	output.WriteString("=== SENTIMENT ===\n")
	fmt.Fprintf(output, "%s (%.2f)\n\n", a.Sentiment.Label, a.Sentiment.Score)

	if len(a.Keywords.Matched)+len(a.Keywords.Missing) > 0 {
		output.WriteString("=== KEYWORDS ===\n")
		fmt.Fprintf(output, "Coverage: %.0f%%\n", a.Keywords.DensityPercent)
		if len(a.Keywords.Matched) > 0 {
			fmt.Fprintf(output, "Matched: %s\n", strings.Join(a.Keywords.Matched, ", "))
		}
		if len(a.Keywords.Missing) > 0 {
			fmt.Fprintf(output, "Missing: %s\n", strings.Join(a.Keywords.Missing, ", "))
		}
		output.WriteString("\n")
	}

	if len(a.Strengths) > 0 {
		output.WriteString("Strengths:\n")
		writeList(output, a.Strengths, "- ")
		output.WriteString("\n")
	}
	if len(a.Improvements) > 0 {
		output.WriteString("Improvements:\n")
		writeList(output, a.Improvements, "- ")
	}
}

func writeAnalysisMarkdown(output *strings.Builder, a types.LetterAnalysis, level string) {
	fmt.Fprintf(output, "**Overall Score:** %.0f/100\n\n", a.OverallScore)

	fmt.Fprintf(output, "%s Readability\n\n", level)
	fmt.Fprintf(output, "- **Flesch score:** %.1f (%s)\n", a.Readability.FleschScore, a.Readability.Complexity)
	fmt.Fprintf(output, "- **Average words per sentence:** %d\n\n", a.Readability.AvgWordsPerSentence)

	fmt.Fprintf(output, "%s Structure\n\n", level)
	output.WriteString("| Opening | Body | Closing | Paragraphs |\n|---|---|---|---|\n")
	fmt.Fprintf(output, "| %s | %s | %s | %d |\n\n",
		yesNo(a.Structure.HasOpening), yesNo(a.Structure.HasBody), yesNo(a.Structure.HasClosing), a.Structure.ParagraphCount)

	fmt.Fprintf(output, "%s Sentiment\n\n%s (%.2f)\n\n", level, a.Sentiment.Label, a.Sentiment.Score)

	if len(a.Keywords.Matched)+len(a.Keywords.Missing) > 0 {
		fmt.Fprintf(output, "%s Keywords\n\n", level)
		fmt.Fprintf(output, "- **Coverage:** %.0f%%\n", a.Keywords.DensityPercent)
		if len(a.Keywords.Matched) > 0 {
			fmt.Fprintf(output, "- **Matched:** %s\n", strings.Join(a.Keywords.Matched, ", "))
		}
		if len(a.Keywords.Missing) > 0 {
			fmt.Fprintf(output, "- **Missing:** %s\n", strings.Join(a.Keywords.Missing, ", "))
		}
		output.WriteString("\n")
	}

	if len(a.Strengths) > 0 {
		fmt.Fprintf(output, "%s Strengths\n\n", level)
		writeList(output, a.Strengths, "- ")
		output.WriteString("\n")
	}
	if len(a.Improvements) > 0 {
		fmt.Fprintf(output, "%s Improvements\n\n", level)
		writeList(output, a.Improvements, "- ")
	}
}

// AnalysisTextFormatter renders a letter analysis as plain text
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.LetterAnalysis)
	if !ok {
		return "", fmt.Errorf("expected LetterAnalysis, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== LETTER ANALYSIS ===\n\n")
	writeAnalysisText(&output, analysis)
	return output.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string {
	return TypeLetterAnalysis
}

// AnalysisMarkdownFormatter renders a letter analysis as markdown
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.LetterAnalysis)
	if !ok {
		return "", fmt.Errorf("expected LetterAnalysis, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Letter Analysis\n\n")
	writeAnalysisMarkdown(&output, analysis, "##")
	return output.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string {
	return TypeLetterAnalysis
}

// ImprovedTextFormatter renders a revised letter as plain text
type ImprovedTextFormatter struct{}

func (f *ImprovedTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImproveLetterOutput)
	if !ok {
		return "", fmt.Errorf("expected ImproveLetterOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== IMPROVED LETTER ===\n\n")
	output.WriteString(result.Content)
	output.WriteString("\n")
	if result.Analysis != nil {
		output.WriteString("\n=== LETTER ANALYSIS ===\n\n")
		writeAnalysisText(&output, *result.Analysis)
	}
	return output.String(), nil
}

func (f *ImprovedTextFormatter) SupportedType() string {
	return TypeImprovedLetter
}

// ImprovedMarkdownFormatter renders a revised letter as markdown
type ImprovedMarkdownFormatter struct{}

func (f *ImprovedMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImproveLetterOutput)
	if !ok {
		return "", fmt.Errorf("expected ImproveLetterOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Improved Letter\n\n")
	output.WriteString(result.Content)
	output.WriteString("\n")
	if result.Analysis != nil {
		output.WriteString("\n## Analysis\n\n")
		writeAnalysisMarkdown(&output, *result.Analysis, "###")
	}
	return output.String(), nil
}

func (f *ImprovedMarkdownFormatter) SupportedType() string {
	return TypeImprovedLetter
}

// ReportsFormatter renders a batch of analyses, one section per source
type ReportsFormatter struct {
	markdown bool
}

func (f *ReportsFormatter) Format(data any) (string, error) {
	reports, ok := data.([]types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected []AnalysisReport, got %T", data)
	}

	var output strings.Builder
	for i, report := range reports {
		if i > 0 {
			output.WriteString("\n")
		}
		if f.markdown {
			fmt.Fprintf(&output, "# %s\n\n", report.Source)
			writeAnalysisMarkdown(&output, report.Analysis, "##")
		} else {
			fmt.Fprintf(&output, "=== %s ===\n\n", report.Source)
			writeAnalysisText(&output, report.Analysis)
		}
	}
	return output.String(), nil
}

func (f *ReportsFormatter) SupportedType() string {
	return TypeAnalysisReports
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
