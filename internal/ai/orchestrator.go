package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"lettercraft/internal/analysis"
	"lettercraft/internal/config"
	"lettercraft/internal/errors"
	"lettercraft/internal/observability"
	"lettercraft/internal/types"
	"lettercraft/internal/usage"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultAttemptTimeout = 30 * time.Second
	defaultMaxTokens      = 2000
)

// OrchestratorConfig wires providers and request limits
type OrchestratorConfig struct {
	Providers      map[string]Completer
	Primary        string
	Fallback       string
	AttemptTimeout time.Duration
	MaxTokens      int
	Temperature    float64
	Prompts        *config.PromptStore
}

// Orchestrator generates, improves and analyzes letters. Generation tries the
// primary provider then the fallback, each under its own timeout.
type Orchestrator struct {
	cfg     OrchestratorConfig
	prompts *promptBuilder
	tracker usage.Tracker
	metrics *observability.Metrics
	logger  *errors.Logger
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithMetrics records AI and business metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// NewOrchestrator validates cfg and builds an orchestrator. A nil tracker discards usage.
func NewOrchestrator(cfg OrchestratorConfig, tracker usage.Tracker, logger *errors.Logger, opts ...Option) (*Orchestrator, error) {
	if _, ok := cfg.Providers[cfg.Primary]; !ok {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("primary provider %q is not configured", cfg.Primary), nil)
	}
	if cfg.Fallback == cfg.Primary {
		cfg.Fallback = ""
	}
	if cfg.Fallback != "" {
		if _, ok := cfg.Providers[cfg.Fallback]; !ok {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("fallback provider %q is not configured", cfg.Fallback), nil)
		}
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if tracker == nil {
		tracker = usage.NopTracker{}
	}
	if logger == nil {
		logger = errors.NewLogger(slog.LevelInfo)
	}

	o := &Orchestrator{
		cfg:     cfg,
		prompts: newPromptBuilder(cfg.Prompts),
		tracker: tracker,
		metrics: &observability.Metrics{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Generate writes a cover letter for p
func (o *Orchestrator) Generate(ctx context.Context, p types.LetterPrompt) (*types.GeneratedLetter, error) {
	if err := p.Validate(); err != nil {
		return nil, invalidRequest(err)
	}
	p.Tone, _ = types.ParseTone(string(p.Tone))

	system, user, err := o.prompts.letter(p)
	if err != nil {
		return nil, err
	}
	req := o.request(system, user)

	completion, provider, err := o.completeWithFallback(ctx, req)
	if err != nil {
		o.metrics.RecordBusinessMetric(ctx, observability.MetricLetterGenerated, false,
			attribute.String("tone", string(p.Tone)))
		return nil, err
	}

	letter := buildLetter(completion.Text, p.Tone)
	letter.Provider = provider

	units := letter.WordCount
	if completion.Usage != nil && completion.Usage.TotalTokens > 0 {
		units = int(completion.Usage.TotalTokens)
	}
	o.record(ctx, p.Profile.UserID, usage.KindLetterGeneration, units)

	o.metrics.RecordBusinessMetric(ctx, observability.MetricLetterGenerated, true,
		attribute.String("tone", string(p.Tone)),
		attribute.String("provider", provider))

	o.logger.Info("Letter generated",
		"provider", provider,
		"tone", string(p.Tone),
		"word_count", letter.WordCount,
		"ai_score", letter.AIScore)

	return letter, nil
}

// buildLetter post-processes raw provider text
func buildLetter(raw string, tone types.Tone) *types.GeneratedLetter {
	content := analysis.Format(raw)
	report := analysis.Analyze(content, "")
	words := analysis.CountWords(content)

	return &types.GeneratedLetter{
		Content:            content,
		WordCount:          words,
		AIScore:            report.OverallScore,
		Suggestions:        report.Improvements,
		KeyPoints:          analysis.ExtractKeyPoints(content),
		Tone:               tone,
		ReadingTimeMinutes: analysis.ReadingTime(words),
	}
}

// Improve revises content with the primary provider only
func (o *Orchestrator) Improve(ctx context.Context, userID, content string, suggestions []string) (string, error) {
	if err := (types.ImproveLetterInput{Content: strings.TrimSpace(content)}).Validate(); err != nil {
		return "", invalidRequest(err)
	}

	system, user, err := o.prompts.improve(content, suggestions)
	if err != nil {
		return "", err
	}

	provider := o.cfg.Providers[o.cfg.Primary]
	completion, err := o.attempt(ctx, "improve_letter", provider, o.request(system, user))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		o.metrics.RecordBusinessMetric(ctx, observability.MetricLetterImproved, false)
		o.logger.LogError(err, "Letter improvement failed", "provider", provider.Name(), "status", statusOf(err))
		return "", errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to improve letter", err).
			WithContext("provider", provider.Name())
	}

	units := analysis.CountWords(completion.Text)
	if completion.Usage != nil && completion.Usage.TotalTokens > 0 {
		units = int(completion.Usage.TotalTokens)
	}
	o.record(ctx, userID, usage.KindLetterImprovement, units)
	o.metrics.RecordBusinessMetric(ctx, observability.MetricLetterImproved, true,
		attribute.String("provider", provider.Name()))

	return completion.Text, nil
}

// Analyze scores content against an optional job description and bills the analysis
func (o *Orchestrator) Analyze(ctx context.Context, userID, content, jobDescription string) types.LetterAnalysis {
	report := analysis.Analyze(content, jobDescription)
	o.record(ctx, userID, usage.KindLetterAnalysis, analysis.CountWords(content))
	o.metrics.RecordBusinessMetric(ctx, observability.MetricLetterAnalyzed, true,
		attribute.Bool("with_job", strings.TrimSpace(jobDescription) != ""))
	return report
}

func (o *Orchestrator) request(system, user string) CompletionRequest {
	return CompletionRequest{
		System:      system,
		User:        user,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}
}

// completeWithFallback makes at most two sequential attempts
func (o *Orchestrator) completeWithFallback(ctx context.Context, req CompletionRequest) (*Completion, string, error) {
	order := []string{o.cfg.Primary}
	if o.cfg.Fallback != "" {
		order = append(order, o.cfg.Fallback)
	}

	var lastErr error
	for i, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		if i > 0 {
			o.logger.Warn("Falling back to secondary AI provider", "from", order[i-1], "to", name)
			o.metrics.RecordFallback(ctx, order[i-1], name)
		}

		completion, err := o.attempt(ctx, "generate_letter", o.cfg.Providers[name], req)
		if err == nil {
			return completion, name, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}

		o.logger.LogError(err, "AI provider attempt failed",
			"provider", name,
			"status", statusOf(err),
			"attempt", i+1)
		lastErr = err
	}

	return nil, "", errors.NewAIError(errors.ErrCodeAIUnavailable, "AI service temporarily unavailable", lastErr)
}

// attempt runs one provider call under the per-attempt timeout
func (o *Orchestrator) attempt(ctx context.Context, operation string, c Completer, req CompletionRequest) (*Completion, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
	defer cancel()

	var completion *Completion
	err := o.metrics.TrackAIOperation(attemptCtx, operation, c.Name(), func(ctx context.Context) *observability.AIOperationResult {
		out, err := c.Complete(ctx, req)
		if err == nil && (out == nil || strings.TrimSpace(out.Text) == "") {
			err = &ProviderError{Provider: c.Name(), Err: errEmptyCompletion}
		}
		if err != nil {
			return &observability.AIOperationResult{Error: err}
		}
		completion = out
		return &observability.AIOperationResult{TokenUsage: metricsUsage(out.Usage)}
	})
	if err != nil && ctx.Err() == nil && stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, errors.NewAIError(errors.ErrCodeAITimeout,
			fmt.Sprintf("provider %s timed out after %s", c.Name(), o.cfg.AttemptTimeout), err)
	}
	return completion, err
}

func metricsUsage(u *TokenUsage) *observability.TokenUsage {
	if u == nil {
		return nil
	}
	return &observability.TokenUsage{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
}

// record stores usage; failures are logged and never surface to the caller
func (o *Orchestrator) record(ctx context.Context, userID string, kind usage.Kind, units int) {
	rec := usage.Record{UserID: userID, Kind: kind, Units: units, CreatedAt: time.Now()}
	if err := o.tracker.Record(ctx, rec); err != nil {
		o.logger.LogError(err, "Failed to record AI usage", "user_id", userID, "service_type", string(kind))
	}
}

func invalidRequest(err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"missing required fields: "+strings.Join(fields, ", "), err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), err)
}

// ProviderNames returns the configured provider names, sorted
func (o *Orchestrator) ProviderNames() []string {
	names := make([]string, 0, len(o.cfg.Providers))
	for name := range o.cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Primary returns the primary provider name
func (o *Orchestrator) Primary() string { return o.cfg.Primary }

// Fallback returns the fallback provider name, or ""
func (o *Orchestrator) Fallback() string { return o.cfg.Fallback }

type breakerStats interface {
	GetStats() map[string]any
	IsHealthy() bool
}

// CircuitBreakerStats returns per-provider breaker statistics
func (o *Orchestrator) CircuitBreakerStats() map[string]any {
	stats := make(map[string]any, len(o.cfg.Providers))
	healthy := true
	for name, c := range o.cfg.Providers {
		if b, ok := c.(breakerStats); ok {
			stats[name] = b.GetStats()
			healthy = healthy && b.IsHealthy()
		} else {
			stats[name] = map[string]any{"enabled": false}
		}
	}
	stats["overall_healthy"] = healthy
	return stats
}
