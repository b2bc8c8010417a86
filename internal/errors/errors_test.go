package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewAIError(ErrCodeAIUnavailable, "AI service temporarily unavailable", cause)

	assert.Equal(t, "AI_UNAVAILABLE: AI service temporarily unavailable (caused by: connection reset)", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("generate: %w", err)
	assert.True(t, HasCode(wrapped, ErrCodeAIUnavailable))
	assert.False(t, IsValidation(wrapped))
}

func TestIsValidation(t *testing.T) {
	err := NewValidationError(ErrCodeInvalidRequest, "jobTitle is required", nil)
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidation(stderrors.New("plain")))
	assert.False(t, IsValidation(nil))
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}

func TestLogErrorExpandsAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	appErr := NewNetworkError(ErrCodeFetchFailed, "fetch failed", nil).WithContext("url", "https://example.com")
	logger.LogError(fmt.Errorf("outer: %w", appErr), "job source unavailable", "attempt", 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "job source unavailable", record["msg"])
	assert.Equal(t, "network", record["error_type"])
	assert.Equal(t, ErrCodeFetchFailed, record["error_code"])
	assert.Equal(t, "https://example.com", record["url"])
	assert.EqualValues(t, 1, record["attempt"])
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo).With("provider", "openai")
	logger.Info("completion ok")
	logger.Debug("suppressed")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "openai", record["provider"])
}
