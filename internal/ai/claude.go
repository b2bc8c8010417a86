package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lettercraft/internal/config"
	appErrors "lettercraft/internal/errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeProvider implements Completer for the Anthropic Messages API
type ClaudeProvider struct {
	settings
	client anthropic.Client
}

var _ Completer = (*ClaudeProvider)(nil)

// NewClaudeProvider creates a Claude provider. Retries are left to the
// orchestrator's fallback so the SDK is configured not to retry.
func NewClaudeProvider(name string, cfg config.ProviderConfig, httpClient *http.Client) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("provider %s has no API key", name), nil)
	}
	if cfg.Model == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("provider %s has no model", name), nil)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &ClaudeProvider{
		settings: newSettings(name, cfg),
		client:   anthropic.NewClient(opts...),
	}, nil
}

// Name implements Completer
func (c *ClaudeProvider) Name() string { return c.name }

// Kind implements Completer
func (c *ClaudeProvider) Kind() ProviderKind { return KindClaude }

// Complete implements Completer
func (c *ClaudeProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	req = c.apply(req)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		perr := &ProviderError{Provider: c.name, Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			perr.StatusCode = apiErr.StatusCode
		}
		return nil, perr
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Provider: c.name, Err: errEmptyCompletion}
	}

	return &Completion{
		Text: text,
		Usage: &TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
			TotalTokens:  msg.Usage.InputTokens + msg.Usage.OutputTokens,
		},
	}, nil
}
