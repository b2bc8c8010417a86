package observability

import (
	"context"
	"fmt"
	"time"

	"lettercraft/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// Business metric types accepted by RecordBusinessMetric
const (
	MetricLetterGenerated = "letter_generated"
	MetricLetterImproved  = "letter_improved"
	MetricLetterAnalyzed  = "letter_analyzed"
)

// Metrics holds all custom metrics for lettercraft. The zero value records nothing.
type Metrics struct {
	settings config.CustomMetricsConfig

	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	LettersGenerated metric.Int64Counter
	LettersImproved  metric.Int64Counter
	LettersAnalyzed  metric.Int64Counter

	// Infrastructure metrics
	ProviderFallbacks metric.Int64Counter
	RateLimitHits     metric.Int64Counter
	ConfigReloads     metric.Int64Counter
	CertExpiryTime    metric.Float64Gauge
}

func defaultCustomMetrics() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		AIOperations:    config.AIOperationsMetricsConfig{Enabled: true, TrackDuration: true, TrackTokenUsage: true},
		BusinessMetrics: config.BusinessMetricsConfig{Enabled: true},
		Infrastructure:  config.InfrastructureMetricsConfig{TrackRateLimits: true, TrackFallbacks: true},
	}
}

// newMetrics creates every instrument on meter
func newMetrics(meter metric.Meter, settings config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{settings: settings}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram(
		"lettercraft_ai_processing_duration_seconds",
		metric.WithDescription("Time spent waiting for AI providers"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	if m.AIRequestCount, err = meter.Int64Counter(
		"lettercraft_ai_requests_total",
		metric.WithDescription("Total number of AI provider requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	if m.AIErrorCount, err = meter.Int64Counter(
		"lettercraft_ai_errors_total",
		metric.WithDescription("Total number of failed AI provider requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	if m.AITokenUsage, err = meter.Int64Histogram(
		"lettercraft_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.LettersGenerated, err = meter.Int64Counter(
		"lettercraft_letters_generated_total",
		metric.WithDescription("Total number of cover letters generated"),
	); err != nil {
		return nil, fmt.Errorf("failed to create letters generated metric: %w", err)
	}

	if m.LettersImproved, err = meter.Int64Counter(
		"lettercraft_letters_improved_total",
		metric.WithDescription("Total number of cover letters revised"),
	); err != nil {
		return nil, fmt.Errorf("failed to create letters improved metric: %w", err)
	}

	if m.LettersAnalyzed, err = meter.Int64Counter(
		"lettercraft_letters_analyzed_total",
		metric.WithDescription("Total number of cover letters analyzed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create letters analyzed metric: %w", err)
	}

	if m.ProviderFallbacks, err = meter.Int64Counter(
		"lettercraft_provider_fallbacks_total",
		metric.WithDescription("Total number of requests served by the fallback provider"),
	); err != nil {
		return nil, fmt.Errorf("failed to create provider fallbacks metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"lettercraft_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	if m.ConfigReloads, err = meter.Int64Counter(
		"lettercraft_config_reloads_total",
		metric.WithDescription("Total number of prompt and certificate reloads"),
	); err != nil {
		return nil, fmt.Errorf("failed to create config reload metric: %w", err)
	}

	if m.CertExpiryTime, err = meter.Float64Gauge(
		"lettercraft_cert_expiry_seconds",
		metric.WithDescription("Seconds until the serving certificate expires"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create certificate expiry metric: %w", err)
	}

	return m, nil
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// TrackAIOperation runs fn inside an "ai.<operation>" span and records duration,
// request, error and token metrics labelled with the provider name.
func (m *Metrics) TrackAIOperation(ctx context.Context, operation, provider string, fn func(context.Context) *AIOperationResult) error {
	ctx, span := otel.Tracer("lettercraft.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("provider", provider),
		attribute.Bool("success", err == nil),
	}
	span.SetAttributes(attrs...)

	if result != nil && result.TokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.TokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", result.TokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.TokenUsage.TotalTokens),
		)
	}

	if m.AIRequestCount != nil && m.settings.AIOperations.Enabled {
		m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		if m.settings.AIOperations.TrackDuration {
			m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
		}
		if err != nil {
			m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		if result != nil && result.TokenUsage != nil && m.settings.AIOperations.TrackTokenUsage {
			m.recordTokenMetrics(ctx, result.TokenUsage, attrs)
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (m *Metrics) recordTokenMetrics(ctx context.Context, usage *TokenUsage, attrs []attribute.KeyValue) {
	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		tokenAttrs := append(attrs[:len(attrs):len(attrs)], attribute.String("token_type", tt.tokenType))
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}
}

// RecordBusinessMetric counts a letter operation of metricType
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if !m.settings.BusinessMetrics.Enabled {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case MetricLetterGenerated:
		counter = m.LettersGenerated
	case MetricLetterImproved:
		counter = m.LettersImproved
	case MetricLetterAnalyzed:
		counter = m.LettersAnalyzed
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordFallback counts a request that moved from one provider to another
func (m *Metrics) RecordFallback(ctx context.Context, from, to string) {
	if m.ProviderFallbacks == nil || !m.settings.Infrastructure.TrackFallbacks {
		return
	}
	m.ProviderFallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attrs ...attribute.KeyValue) {
	if m.RateLimitHits == nil || !m.settings.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordConfigReload counts a hot reload of kind ("prompts" or "certificate")
func (m *Metrics) RecordConfigReload(ctx context.Context, kind string, success bool) {
	if m.ConfigReloads == nil {
		return
	}
	m.ConfigReloads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	))
}

// RecordCertExpiry records the time left before notAfter
func (m *Metrics) RecordCertExpiry(ctx context.Context, notAfter time.Time) {
	if m.CertExpiryTime == nil {
		return
	}
	m.CertExpiryTime.Record(ctx, time.Until(notAfter).Seconds())
}
