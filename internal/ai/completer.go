package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lettercraft/internal/config"
)

// ProviderKind identifies the wire protocol of a provider
type ProviderKind string

const (
	KindOpenAI      ProviderKind = config.ProviderKindOpenAI
	KindAzureOpenAI ProviderKind = config.ProviderKindAzureOpenAI
	KindClaude      ProviderKind = config.ProviderKindClaude
	KindGemini      ProviderKind = config.ProviderKindGemini
)

// ParseProviderKind resolves a kind name case-insensitively
func ParseProviderKind(s string) (ProviderKind, error) {
	switch k := ProviderKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindOpenAI, KindAzureOpenAI, KindClaude, KindGemini:
		return k, nil
	default:
		return "", fmt.Errorf("unknown provider kind %q", s)
	}
}

// CompletionRequest is a single system+user prompt exchange
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// TokenUsage represents token usage information from provider responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Completion is the text a provider returned
type Completion struct {
	Text  string
	Usage *TokenUsage
}

// Completer is implemented by every provider adapter
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Name() string
	Kind() ProviderKind
}

// ProviderError reports a failed provider exchange. StatusCode is 0 for
// transport failures and malformed payloads.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// errEmptyCompletion is returned when a provider answers with no text
var errEmptyCompletion = errors.New("empty completion")

// statusOf returns the HTTP status carried by err, if any
func statusOf(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// settings are per-provider overrides of the request limits
type settings struct {
	name        string
	model       string
	maxTokens   int
	temperature *float64
}

func newSettings(name string, cfg config.ProviderConfig) settings {
	return settings{name: name, model: cfg.Model, maxTokens: cfg.MaxTokens, temperature: cfg.Temperature}
}

// apply fills req with the provider's own limits where configured
func (s settings) apply(req CompletionRequest) CompletionRequest {
	if s.maxTokens > 0 {
		req.MaxTokens = s.maxTokens
	}
	if s.temperature != nil {
		req.Temperature = *s.temperature
	}
	return req
}
