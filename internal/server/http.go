package server

import (
	"context"
	"log/slog"
	"time"

	"lettercraft/internal/config"
	appErrors "lettercraft/internal/errors"
	"lettercraft/internal/observability"
	"lettercraft/internal/types"
)

// GenerateRequest represents the request body for the generate endpoint.
// JobURL is fetched when JobDescription is empty.
type GenerateRequest struct {
	JobTitle       string                 `json:"jobTitle"`
	CompanyName    string                 `json:"companyName"`
	JobDescription string                 `json:"jobDescription"`
	JobURL         string                 `json:"jobUrl"`
	Tone           string                 `json:"tone"`
	Industry       string                 `json:"industry"`
	PersonalNotes  string                 `json:"personalNotes"`
	Profile        types.CandidateProfile `json:"profile"`
}

// AnalyzeRequest represents the request body for the analyze endpoint
type AnalyzeRequest = types.AnalyzeLetterInput

// ImproveRequest represents the request body for the improve endpoint
type ImproveRequest = types.ImproveLetterInput

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LetterService is the letter workflow the HTTP handlers drive
type LetterService interface {
	Generate(ctx context.Context, p types.LetterPrompt) (*types.GeneratedLetter, error)
	Improve(ctx context.Context, userID, content string, suggestions []string) (string, error)
	Analyze(ctx context.Context, userID, content, jobDescription string) types.LetterAnalysis
	ProviderNames() []string
	CircuitBreakerStats() map[string]any
}

// JobFetcher downloads a job description from a URL
type JobFetcher interface {
	Fetch(ctx context.Context, value string) (string, error)
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool
	Tokens  *TokenService

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Collaborators, wired by Start or directly by tests
	Letters LetterService
	Jobs    JobFetcher
	Metrics *observability.Metrics

	Logger *appErrors.Logger

	om            *observability.ObservabilityManager
	promptWatcher *config.FileWatcher
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	JWT            config.JWTConfig
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ServerConfigFrom builds a ServerConfig from the application configuration
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	rl := cfg.Server.RateLimit
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		JWT:            cfg.Server.JWT,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &rl,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *appErrors.Logger) *Server {
	if logger == nil {
		logger = appErrors.NewLogger(slog.LevelInfo)
	}

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var tokens *TokenService
	if cfg.JWT.Secret != "" {
		tokens = NewTokenService(cfg.JWT)
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		Tokens:         tokens,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Metrics:        &observability.Metrics{},
		Logger:         logger,
	}
}

// authEnabled reports whether any credential is configured
func (s *Server) authEnabled() bool {
	return len(s.APIKeys) > 0 || s.Tokens != nil
}
