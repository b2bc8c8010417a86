package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"
	"lettercraft/internal/observability"
	"lettercraft/internal/usage"
)

// NewCompleter builds the adapter for one configured provider
func NewCompleter(ctx context.Context, name string, cfg config.ProviderConfig, httpClient *http.Client) (Completer, error) {
	kindName := cfg.Kind
	if kindName == "" {
		kindName = name
	}
	kind, err := ParseProviderKind(kindName)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("provider %s", name), err)
	}

	switch kind {
	case KindOpenAI:
		return NewOpenAIProvider(name, cfg, httpClient)
	case KindAzureOpenAI:
		return NewAzureOpenAIProvider(name, cfg, httpClient)
	case KindClaude:
		return NewClaudeProvider(name, cfg, httpClient)
	default:
		return NewGeminiProvider(ctx, name, cfg, httpClient)
	}
}

// NewProviders builds every provider that has an API key, each behind its own
// circuit breaker. The primary provider must build; others without a key are skipped.
func NewProviders(ctx context.Context, cfg config.AIConfig, logger *errors.Logger) (map[string]Completer, error) {
	if logger == nil {
		logger = errors.NewLogger(slog.LevelInfo)
	}
	providers := make(map[string]Completer, len(cfg.Providers))

	for name, pc := range cfg.Providers {
		if pc.APIKey == "" && name != cfg.Primary {
			logger.Debug("Skipping AI provider without API key", "provider", name)
			continue
		}

		c, err := NewCompleter(ctx, name, pc, nil)
		if err != nil {
			if name == cfg.Primary {
				return nil, err
			}
			logger.LogError(err, "Skipping misconfigured AI provider", "provider", name)
			continue
		}
		providers[name] = WithCircuitBreaker(c, cfg.CircuitBreaker, logger)
	}

	if _, ok := providers[cfg.Primary]; !ok {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("primary provider %q is not configured", cfg.Primary), nil)
	}
	return providers, nil
}

// NewOrchestratorFromConfig wires providers, prompts, usage tracking and metrics
// from application configuration. A fallback without usable credentials is
// dropped with a warning.
func NewOrchestratorFromConfig(ctx context.Context, cfg config.AIConfig, prompts *config.PromptStore, tracker usage.Tracker, metrics *observability.Metrics, logger *errors.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = errors.NewLogger(slog.LevelInfo)
	}
	providers, err := NewProviders(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	fallback := cfg.Fallback
	if _, ok := providers[fallback]; fallback != "" && !ok {
		logger.Warn("Fallback AI provider unavailable, continuing without fallback", "provider", fallback)
		fallback = ""
	}

	return NewOrchestrator(OrchestratorConfig{
		Providers:      providers,
		Primary:        cfg.Primary,
		Fallback:       fallback,
		AttemptTimeout: cfg.AttemptTimeout,
		MaxTokens:      cfg.MaxTokens,
		Temperature:    cfg.Temperature,
		Prompts:        prompts,
	}, tracker, logger, WithMetrics(metrics))
}
