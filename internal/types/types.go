package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

// newValidator registers notblank so whitespace-only fields fail like empty ones
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Tone is the writing register requested for a generated letter
type Tone string

const (
	ToneProfessional Tone = "PROFESSIONAL"
	ToneEnthusiastic Tone = "ENTHUSIASTIC"
	ToneFormal       Tone = "FORMAL"
	ToneCreative     Tone = "CREATIVE"
	ToneCasual       Tone = "CASUAL"
)

// Tones lists every supported tone in display order
var Tones = []Tone{ToneProfessional, ToneEnthusiastic, ToneFormal, ToneCreative, ToneCasual}

// ParseTone resolves a tone name case-insensitively. An empty name yields ToneProfessional.
func ParseTone(name string) (Tone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ToneProfessional, nil
	}
	for _, t := range Tones {
		if strings.EqualFold(name, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tone %q", name)
}

// CandidateProfile represents the applicant a letter is written for
type CandidateProfile struct {
	UserID           string   `json:"userId,omitempty" yaml:"userId"`
	FirstName        string   `json:"firstName" yaml:"firstName"`
	LastName         string   `json:"lastName" yaml:"lastName"`
	Title            string   `json:"title,omitempty" yaml:"title"`
	ExperienceLevel  string   `json:"experienceLevel,omitempty" yaml:"experienceLevel"`
	Skills           []string `json:"skills,omitempty" yaml:"skills"`
	CareerObjectives string   `json:"careerObjectives,omitempty" yaml:"careerObjectives"`
	Bio              string   `json:"bio,omitempty" yaml:"bio"`
}

// Name returns the candidate's full name
func (p CandidateProfile) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// LetterPrompt represents the input for generating a cover letter
type LetterPrompt struct {
	JobTitle       string           `json:"jobTitle" validate:"required,notblank"`
	CompanyName    string           `json:"companyName" validate:"required,notblank"`
	JobDescription string           `json:"jobDescription" validate:"required,notblank"`
	Profile        CandidateProfile `json:"profile"`
	Tone           Tone             `json:"tone,omitempty"`
	PersonalNotes  string           `json:"personalNotes,omitempty"`
	Industry       string           `json:"industry,omitempty"`
}

// Validate checks the required fields and the tone
func (p LetterPrompt) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if _, err := ParseTone(string(p.Tone)); err != nil {
		return err
	}
	return nil
}

// GeneratedLetter represents a post-processed letter produced by a provider
type GeneratedLetter struct {
	Content            string   `json:"content"`
	WordCount          int      `json:"wordCount"`
	AIScore            float64  `json:"aiScore"`
	Suggestions        []string `json:"suggestions"`
	KeyPoints          []string `json:"keyPoints"`
	Tone               Tone     `json:"tone"`
	ReadingTimeMinutes int      `json:"readingTimeMinutes"`
	Provider           string   `json:"provider,omitempty"`
}

// Readability holds the Flesch reading-ease assessment
type Readability struct {
	FleschScore         float64 `json:"fleschScore"`
	Complexity          string  `json:"complexity"` // "simple", "moderate" or "complex"
	AvgWordsPerSentence int     `json:"avgWordsPerSentence"`
}

// KeywordMatch holds job keyword coverage
type KeywordMatch struct {
	Matched        []string `json:"matched"`
	Missing        []string `json:"missing"`
	DensityPercent float64  `json:"density"`
}

// Sentiment holds the lexicon based tone score
type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"` // "negative", "neutral" or "positive"
}

// Structure holds the structural completeness checks
type Structure struct {
	HasOpening     bool `json:"hasOpening"`
	HasBody        bool `json:"hasBody"`
	HasClosing     bool `json:"hasClosing"`
	ParagraphCount int  `json:"paragraphCount"`
}

// LetterAnalysis represents the quality report for a letter
type LetterAnalysis struct {
	OverallScore float64      `json:"score"` // 0-100
	Strengths    []string     `json:"strengths"`
	Improvements []string     `json:"improvements"`
	Readability  Readability  `json:"readability"`
	Keywords     KeywordMatch `json:"keywords"`
	Sentiment    Sentiment    `json:"sentiment"`
	Structure    Structure    `json:"structure"`
}

// ImproveLetterInput represents the input for revising a letter
type ImproveLetterInput struct {
	Content     string   `json:"content" validate:"required,notblank"`
	Suggestions []string `json:"suggestions"`
	Reanalyze   bool     `json:"reanalyze,omitempty"`
}

// ImproveLetterOutput represents a revised letter and, when requested, its new analysis
type ImproveLetterOutput struct {
	Content  string          `json:"content"`
	Analysis *LetterAnalysis `json:"analysis,omitempty"`
}

// AnalyzeLetterInput represents the input for analyzing a letter
type AnalyzeLetterInput struct {
	Content        string `json:"content" validate:"required,notblank"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// Validate checks the required fields
func (in ImproveLetterInput) Validate() error {
	return validate.Struct(in)
}

// Validate checks the required fields
func (in AnalyzeLetterInput) Validate() error {
	return validate.Struct(in)
}

// AnalysisReport is the analysis of one letter in a batch
type AnalysisReport struct {
	Source   string         `json:"source"`
	Analysis LetterAnalysis `json:"analysis"`
}
