package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lettercraft/internal/config"
	appErrors "lettercraft/internal/errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	azureAPIVersion      = "2023-05-15"

	// sampling knobs sent with every chat completion
	chatTopP             = 0.9
	chatFrequencyPenalty = 0.1
	chatPresencePenalty  = 0.1
)

// ChatProvider talks to the OpenAI chat completions API, directly or through
// an Azure OpenAI deployment.
type ChatProvider struct {
	settings
	kind   ProviderKind
	client openai.Client
}

var _ Completer = (*ChatProvider)(nil)

// NewOpenAIProvider creates an OpenAI provider. BaseURL defaults to api.openai.com
// and may point at any OpenAI compatible server.
func NewOpenAIProvider(name string, cfg config.ProviderConfig, httpClient *http.Client) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("provider %s has no API key", name), nil)
	}
	if cfg.Model == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("provider %s has no model", name), nil)
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(base, "/") + "/v1/"),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &ChatProvider{
		settings: newSettings(name, cfg),
		kind:     KindOpenAI,
		client:   openai.NewClient(opts...),
	}, nil
}

// NewAzureOpenAIProvider creates an Azure OpenAI provider. The configured
// model is the deployment name.
func NewAzureOpenAIProvider(name string, cfg config.ProviderConfig, httpClient *http.Client) (*ChatProvider, error) {
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("provider %s has no API key", name), nil)
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("provider %s needs baseURL and model (deployment)", name), nil)
	}

	opts := []option.RequestOption{
		azure.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/"), azureAPIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &ChatProvider{
		settings: newSettings(name, cfg),
		kind:     KindAzureOpenAI,
		client:   openai.NewClient(opts...),
	}, nil
}

// Name implements Completer
func (p *ChatProvider) Name() string { return p.name }

// Kind implements Completer
func (p *ChatProvider) Kind() ProviderKind { return p.kind }

// Complete implements Completer
func (p *ChatProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	req = p.apply(req)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		MaxTokens:        openai.Int(int64(req.MaxTokens)),
		Temperature:      openai.Float(req.Temperature),
		TopP:             openai.Float(chatTopP),
		FrequencyPenalty: openai.Float(chatFrequencyPenalty),
		PresencePenalty:  openai.Float(chatPresencePenalty),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		perr := &ProviderError{Provider: p.name, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			perr.StatusCode = apiErr.StatusCode
		}
		return nil, perr
	}
	if len(completion.Choices) == 0 {
		return nil, &ProviderError{Provider: p.name, Err: fmt.Errorf("response has no choices")}
	}

	text := completion.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Provider: p.name, Err: errEmptyCompletion}
	}

	out := &Completion{Text: text}
	if u := completion.Usage; u.TotalTokens > 0 || u.PromptTokens > 0 {
		out.Usage = &TokenUsage{
			InputTokens:  u.PromptTokens,
			OutputTokens: u.CompletionTokens,
			TotalTokens:  u.TotalTokens,
		}
	}
	return out, nil
}
