package ai

import (
	"context"
	"testing"
	"time"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aiConfig() config.AIConfig {
	return config.AIConfig{
		Primary:        "openai",
		Fallback:       "claude",
		AttemptTimeout: 10 * time.Second,
		MaxTokens:      2000,
		Temperature:    0.7,
		Providers: map[string]config.ProviderConfig{
			"openai": {Kind: config.ProviderKindOpenAI, Model: "gpt-4-turbo-preview", APIKey: "sk"},
			"claude": {Kind: config.ProviderKindClaude, Model: "claude-3-sonnet-20240229", APIKey: "ant"},
			"gemini": {Kind: config.ProviderKindGemini, Model: "gemini-2.0-flash"},
		},
		CircuitBreaker: breakerConfig(),
	}
}

func TestNewCompleterKinds(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ProviderConfig
		want ProviderKind
	}{
		{"openai", config.ProviderConfig{Model: "m", APIKey: "k"}, KindOpenAI},
		{"azure", config.ProviderConfig{Kind: "Azure-OpenAI", Model: "d", APIKey: "k", BaseURL: "https://x.openai.azure.com"}, KindAzureOpenAI},
		{"claude", config.ProviderConfig{Kind: "claude", Model: "m", APIKey: "k"}, KindClaude},
		{"gemini", config.ProviderConfig{Kind: "gemini", Model: "m", APIKey: "k"}, KindGemini},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCompleter(context.Background(), tt.name, tt.cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Kind())
			assert.Equal(t, tt.name, c.Name())
		})
	}
}

func TestNewCompleterUnknownKind(t *testing.T) {
	_, err := NewCompleter(context.Background(), "mistral", config.ProviderConfig{APIKey: "k", Model: "m"}, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestNewProvidersSkipsUnkeyed(t *testing.T) {
	providers, err := NewProviders(context.Background(), aiConfig(), nil)
	require.NoError(t, err)

	assert.Len(t, providers, 2)
	assert.Contains(t, providers, "openai")
	assert.Contains(t, providers, "claude")
	assert.NotContains(t, providers, "gemini")

	_, guarded := providers["openai"].(*BreakerCompleter)
	assert.True(t, guarded)
}

func TestNewProvidersPrimaryWithoutKey(t *testing.T) {
	cfg := aiConfig()
	cfg.Primary = "gemini"

	_, err := NewProviders(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))
}

func TestNewOrchestratorFromConfigDropsUnusableFallback(t *testing.T) {
	cfg := aiConfig()
	cfg.Fallback = "gemini"

	o, err := NewOrchestratorFromConfig(context.Background(), cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", o.Primary())
	assert.Empty(t, o.Fallback())

	cfg.Fallback = "claude"
	o, err = NewOrchestratorFromConfig(context.Background(), cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude", o.Fallback())
	assert.Equal(t, 10*time.Second, o.cfg.AttemptTimeout)
}

func TestParseProviderKind(t *testing.T) {
	k, err := ParseProviderKind(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, KindOpenAI, k)

	_, err = ParseProviderKind("bard")
	assert.Error(t, err)
}
