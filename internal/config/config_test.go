package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromYAML(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if yaml != "" {
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return buildConfig(v, "")
}

func TestDefaults(t *testing.T) {
	for _, env := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "CLAUDE_API_KEY", "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "GEMINI_API_KEY", "GOOGLE_API_KEY", "LETTERCRAFT_SERVER_APIKEYS"} {
		t.Setenv(env, "")
	}

	cfg, err := loadFromYAML(t, "")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Primary)
	assert.Equal(t, "claude", cfg.AI.Fallback)
	assert.Equal(t, 30*time.Second, cfg.AI.AttemptTimeout)
	assert.Equal(t, 2000, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, []string{"openai", "claude"}, cfg.ProviderNames())

	assert.Equal(t, ProviderKindOpenAI, cfg.AI.Providers["openai"].Kind)
	assert.Equal(t, ProviderKindAzureOpenAI, cfg.AI.Providers["azure"].Kind)
	assert.Empty(t, cfg.AI.Providers["openai"].APIKey)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.TLS.Enabled())
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Empty(t, cfg.Usage.DatabaseURL)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestProviderKeyFallbacks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "sk-claude")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("LETTERCRAFT_SERVER_APIKEYS", "a, b,,c")

	cfg, err := loadFromYAML(t, `
ai:
  providers:
    gemini:
      kind: gemini
      apiKey: from-file
`)
	require.NoError(t, err)

	assert.Equal(t, "sk-openai", cfg.AI.Providers["openai"].APIKey)
	assert.Equal(t, "sk-claude", cfg.AI.Providers["claude"].APIKey)
	assert.Equal(t, "from-file", cfg.AI.Providers["gemini"].APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.AI.Providers["azure"].BaseURL)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}

func TestProviderOverridesFromFile(t *testing.T) {
	cfg, err := loadFromYAML(t, `
ai:
  primary: local
  fallback: ""
  providers:
    local:
      kind: openai
      model: llama3
      baseURL: http://localhost:11434
      maxTokens: 512
      temperature: 0.2
`)
	require.NoError(t, err)

	local := cfg.AI.Providers["local"]
	assert.Equal(t, "llama3", local.Model)
	assert.Equal(t, 512, local.MaxTokens)
	require.NotNil(t, local.Temperature)
	assert.InDelta(t, 0.2, *local.Temperature, 1e-9)
	assert.Equal(t, []string{"local"}, cfg.ProviderNames())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown primary", yaml: "ai:\n  primary: nope\n", wantErr: "primary provider"},
		{name: "unknown fallback", yaml: "ai:\n  fallback: nope\n", wantErr: "fallback provider"},
		{name: "unknown kind", yaml: "ai:\n  providers:\n    x:\n      kind: cohere\n", wantErr: "unknown kind"},
		{name: "zero attempt timeout", yaml: "ai:\n  attemptTimeout: 0s\n", wantErr: "attemptTimeout"},
		{name: "cert without key", yaml: "server:\n  tls:\n    certFile: cert.pem\n", wantErr: "set together"},
		{name: "bad tls version", yaml: "server:\n  tls:\n    minVersion: \"1.1\"\n", wantErr: "minVersion"},
		{name: "bad default format", yaml: "app:\n  defaultFormat: pdf\n", wantErr: "default format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFromYAML(t, tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Nil(t, splitAndTrim(" , ,"))
	assert.Equal(t, []string{"one", "two"}, splitAndTrim(" one,two "))
}

func TestUsageStoreLabel(t *testing.T) {
	assert.Equal(t, "log", usageStoreLabel(""))
	assert.Equal(t, "postgres", usageStoreLabel("postgres://localhost/lettercraft"))
}
