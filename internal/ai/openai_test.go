package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func chatServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.header = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const chatOK = `{"choices":[{"message":{"role":"assistant","content":"Bonjour, voici ma lettre."}}],
"usage":{"prompt_tokens":120,"completion_tokens":80,"total_tokens":200}}`

func TestOpenAIProviderComplete(t *testing.T) {
	var got capturedRequest
	srv := chatServer(t, http.StatusOK, chatOK, &got)

	p, err := NewOpenAIProvider("openai", config.ProviderConfig{
		APIKey:  "sk-test",
		Model:   "gpt-4-turbo-preview",
		BaseURL: srv.URL + "/",
	}, srv.Client())
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), CompletionRequest{
		System:      "sys",
		User:        "usr",
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bonjour, voici ma lettre.", out.Text)
	require.NotNil(t, out.Usage)
	assert.Equal(t, int64(200), out.Usage.TotalTokens)
	assert.Equal(t, int64(120), out.Usage.InputTokens)

	assert.Equal(t, "/v1/chat/completions", got.path)
	assert.Equal(t, "Bearer sk-test", got.header.Get("Authorization"))
	assert.Equal(t, "gpt-4-turbo-preview", got.body["model"])
	assert.Equal(t, 2000.0, got.body["max_tokens"])
	assert.Equal(t, 0.7, got.body["temperature"])
	assert.Equal(t, 0.9, got.body["top_p"])
	assert.Equal(t, 0.1, got.body["frequency_penalty"])
	assert.Equal(t, 0.1, got.body["presence_penalty"])

	messages, ok := got.body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "sys"}, messages[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "usr"}, messages[1])
}

func TestAzureOpenAIProviderComplete(t *testing.T) {
	var got capturedRequest
	srv := chatServer(t, http.StatusOK, chatOK, &got)

	p, err := NewAzureOpenAIProvider("azure", config.ProviderConfig{
		APIKey:  "az-key",
		Model:   "letters-gpt4",
		BaseURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	assert.Equal(t, KindAzureOpenAI, p.Kind())

	_, err = p.Complete(context.Background(), CompletionRequest{System: "s", User: "u", MaxTokens: 10})
	require.NoError(t, err)

	assert.Equal(t, "/openai/deployments/letters-gpt4/chat/completions", got.path)
	assert.Equal(t, "api-version=2023-05-15", got.query)
	assert.Equal(t, "az-key", got.header.Get("api-key"))
	assert.Equal(t, "letters-gpt4", got.body["model"])
}

func TestChatProviderProviderOverrides(t *testing.T) {
	var got capturedRequest
	srv := chatServer(t, http.StatusOK, chatOK, &got)

	temp := 0.2
	p, err := NewOpenAIProvider("openai", config.ProviderConfig{
		APIKey: "k", Model: "m", BaseURL: srv.URL, MaxTokens: 500, Temperature: &temp,
	}, srv.Client())
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), CompletionRequest{MaxTokens: 2000, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.body["max_tokens"])
	assert.Equal(t, 0.2, got.body["temperature"])
}

func TestChatProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		response   string
		wantStatus int
		wantEmpty  bool
	}{
		{"server error", http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`, http.StatusServiceUnavailable, false},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, http.StatusUnauthorized, false},
		{"no choices", http.StatusOK, `{"choices":[]}`, 0, false},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`, 0, true},
		{"malformed", http.StatusOK, `not json`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got capturedRequest
			srv := chatServer(t, tt.status, tt.response, &got)

			p, err := NewOpenAIProvider("openai", config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client())
			require.NoError(t, err)

			_, err = p.Complete(context.Background(), CompletionRequest{User: "u"})
			require.Error(t, err)

			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "openai", perr.Provider)
			assert.Equal(t, tt.wantStatus, perr.StatusCode)
			assert.Equal(t, tt.wantStatus, statusOf(err))
			if tt.wantEmpty {
				assert.ErrorIs(t, err, errEmptyCompletion)
			}
		})
	}
}

func TestChatProviderRequiresCredentials(t *testing.T) {
	_, err := NewOpenAIProvider("openai", config.ProviderConfig{Model: "m"}, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))

	_, err = NewAzureOpenAIProvider("azure", config.ProviderConfig{APIKey: "k", Model: "d"}, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestChatProviderHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("openai", config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Complete(ctx, CompletionRequest{User: "u"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
