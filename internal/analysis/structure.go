package analysis

import (
	"regexp"
	"strings"

	"lettercraft/internal/types"
)

var (
	openingFormula    = regexp.MustCompile(`^(madame|monsieur|cher|chère|bonjour)`)
	closingFormula    = regexp.MustCompile(`cordialement|salutations|remercie|disposition|rencontrer|entretien`)
	paragraphSplitter = regexp.MustCompile(`\n\s*\n`)
)

// HasOpeningFormula reports whether the letter starts with a salutation.
func HasOpeningFormula(content string) bool {
	head := strings.TrimSpace(strings.ToLower(firstRunes(content, 100)))
	return openingFormula.MatchString(head)
}

// HasClosingFormula reports whether the tail of the letter contains a closing
// or call-to-action formula.
func HasClosingFormula(content string) bool {
	return closingFormula.MatchString(strings.ToLower(lastRunes(content, 200)))
}

// Paragraphs splits content on blank lines and drops blank paragraphs.
func Paragraphs(content string) []string {
	var paragraphs []string
	for _, p := range paragraphSplitter.Split(content, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Structure reports the structural completeness of a letter.
func Structure(content string) types.Structure {
	count := len(Paragraphs(content))
	return types.Structure{
		HasOpening:     HasOpeningFormula(content),
		HasBody:        count >= 2,
		HasClosing:     HasClosingFormula(content),
		ParagraphCount: count,
	}
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
