package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lettercraft/internal/config"
	appErrors "lettercraft/internal/errors"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Completer for Google Gemini
type GeminiProvider struct {
	settings
	client *genai.Client
}

var _ Completer = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini provider using the Gemini API backend
func NewGeminiProvider(ctx context.Context, name string, cfg config.ProviderConfig, httpClient *http.Client) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("provider %s has no API key", name), nil)
	}
	if cfg.Model == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("provider %s has no model", name), nil)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		settings: newSettings(name, cfg),
		client:   client,
	}, nil
}

// Name implements Completer
func (g *GeminiProvider) Name() string { return g.name }

// Kind implements Completer
func (g *GeminiProvider) Kind() ProviderKind { return KindGemini }

// Complete implements Completer
func (g *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	req = g.apply(req)

	temperature := float32(req.Temperature)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), genCfg)
	if err != nil {
		return nil, &ProviderError{Provider: g.name, StatusCode: geminiStatus(err), Err: err}
	}

	text := responseText(result)
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Provider: g.name, Err: errEmptyCompletion}
	}

	return &Completion{Text: text, Usage: extractTokenUsage(result)}, nil
}

// responseText joins the text parts of the first candidate
func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// geminiStatus digs the HTTP status out of the SDK's error types
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
