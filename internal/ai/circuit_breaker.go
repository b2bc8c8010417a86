package ai

import (
	"context"
	"errors"
	"fmt"

	"lettercraft/internal/config"
	appErrors "lettercraft/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// BreakerCompleter guards a provider with a circuit breaker. A nil breaker
// passes calls straight through.
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker[*Completion]
}

var _ Completer = (*BreakerCompleter)(nil)

// WithCircuitBreaker wraps next in a breaker configured from cfg
func WithCircuitBreaker(next Completer, cfg config.CircuitBreakerConfig, logger *appErrors.Logger) *BreakerCompleter {
	return &BreakerCompleter{next: next, cb: newProviderBreaker(next.Name(), cfg, logger)}
}

func newProviderBreaker(provider string, cfg config.CircuitBreakerConfig, logger *appErrors.Logger) *gobreaker.CircuitBreaker[*Completion] {
	// If circuit breaker is disabled, return nil to indicate no circuit breaker
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", provider),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		// a caller giving up says nothing about the provider
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"provider", provider,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return gobreaker.NewCircuitBreaker[*Completion](settings)
}

// Name implements Completer
func (b *BreakerCompleter) Name() string { return b.next.Name() }

// Kind implements Completer
func (b *BreakerCompleter) Kind() ProviderKind { return b.next.Kind() }

// Complete runs the wrapped provider under breaker protection. An open
// breaker fails fast with a ProviderError wrapping gobreaker.ErrOpenState.
func (b *BreakerCompleter) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if b.cb == nil {
		return b.next.Complete(ctx, req)
	}

	out, err := b.cb.Execute(func() (*Completion, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &ProviderError{Provider: b.next.Name(), Err: err}
	}
	return out, err
}

// GetStats returns circuit breaker statistics
func (b *BreakerCompleter) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *BreakerCompleter) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true // If no circuit breaker, consider it healthy
	}
	return b.cb.State() == gobreaker.StateClosed
}
