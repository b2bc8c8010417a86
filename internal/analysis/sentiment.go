package analysis

import (
	"strings"

	"lettercraft/internal/types"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

var (
	positiveTerms = []string{"passionné", "enthousiaste", "motivé", "excellent", "expert", "réussi", "performant", "innovation", "créatif"}
	negativeTerms = []string{"difficile", "problème", "échec", "faible", "limité"}
)

// Sentiment scores text by counting words that contain a positive or negative
// lexicon term, normalised by word count.
func Sentiment(text string) types.Sentiment {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return types.Sentiment{Label: SentimentNeutral}
	}

	var pos, neg int
	for _, w := range words {
		if containsAny(w, positiveTerms) {
			pos++
		}
		if containsAny(w, negativeTerms) {
			neg++
		}
	}

	score := float64(pos-neg) * 100 / float64(len(words))
	label := SentimentNeutral
	switch {
	case score > 0.5:
		label = SentimentPositive
	case score < -0.5:
		label = SentimentNegative
	}
	return types.Sentiment{Score: score, Label: label}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
