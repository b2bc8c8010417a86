package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const claudeOK = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-sonnet-20240229",
"content":[{"type":"text","text":"Madame, Monsieur,"},{"type":"text","text":" je postule."}],
"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":20}}`

func TestClaudeProviderComplete(t *testing.T) {
	var body map[string]any
	var apiKey, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(claudeOK))
	}))
	t.Cleanup(srv.Close)

	p, err := NewClaudeProvider("claude", config.ProviderConfig{
		APIKey:  "ant-key",
		Model:   "claude-3-sonnet-20240229",
		BaseURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	assert.Equal(t, KindClaude, p.Kind())
	assert.Equal(t, "claude", p.Name())

	out, err := p.Complete(context.Background(), CompletionRequest{
		System: "système", User: "utilisateur", MaxTokens: 2000, Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "Madame, Monsieur, je postule.", out.Text)
	require.NotNil(t, out.Usage)
	assert.Equal(t, int64(10), out.Usage.InputTokens)
	assert.Equal(t, int64(20), out.Usage.OutputTokens)
	assert.Equal(t, int64(30), out.Usage.TotalTokens)

	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "ant-key", apiKey)
	assert.Equal(t, "claude-3-sonnet-20240229", body["model"])
	assert.Equal(t, 2000.0, body["max_tokens"])
	assert.Equal(t, 0.7, body["temperature"])

	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "système", system[0].(map[string]any)["text"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestClaudeProviderErrorStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	t.Cleanup(srv.Close)

	p, err := NewClaudeProvider("claude", config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), CompletionRequest{User: "u", MaxTokens: 10})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "claude", perr.Provider)
	assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "SDK retries are disabled")
}

func TestClaudeProviderEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],
"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	t.Cleanup(srv.Close)

	p, err := NewClaudeProvider("claude", config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), CompletionRequest{User: "u", MaxTokens: 10})
	assert.ErrorIs(t, err, errEmptyCompletion)
}

func TestClaudeProviderRequiresKey(t *testing.T) {
	_, err := NewClaudeProvider("claude", config.ProviderConfig{Model: "m"}, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingAPIKey))
}
