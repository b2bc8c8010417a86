package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider kinds understood by the AI layer
const (
	ProviderKindOpenAI      = "openai"
	ProviderKindAzureOpenAI = "azure-openai"
	ProviderKindClaude      = "claude"
	ProviderKindGemini      = "gemini"
)

// Config holds all application configuration
// Provider API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (LETTERCRAFT_AI_PROVIDERS_OPENAI_APIKEY, then OPENAI_API_KEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Usage         UsageConfig         `mapstructure:"usage"`
	JobSource     JobSourceConfig     `mapstructure:"jobSource"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds letter generation configuration
type AIConfig struct {
	Primary        string                    `mapstructure:"primary"`
	Fallback       string                    `mapstructure:"fallback"`
	AttemptTimeout time.Duration             `mapstructure:"attemptTimeout"`
	MaxTokens      int                       `mapstructure:"maxTokens"`
	Temperature    float64                   `mapstructure:"temperature"`
	Providers      map[string]ProviderConfig `mapstructure:"providers"`
	CircuitBreaker CircuitBreakerConfig      `mapstructure:"circuitBreaker"`
	CustomPrompts  PromptConfig              `mapstructure:"customPrompts"`
}

// ProviderConfig describes one named completion backend
type ProviderConfig struct {
	Kind        string   `mapstructure:"kind"`
	Model       string   `mapstructure:"model"`
	APIKey      string   `mapstructure:"apiKey"`
	BaseURL     string   `mapstructure:"baseURL"`
	MaxTokens   int      `mapstructure:"maxTokens"`   // 0 uses ai.maxTokens
	Temperature *float64 `mapstructure:"temperature"` // nil uses ai.temperature
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string  `mapstructure:"apiKeys"`
	JWT     JWTConfig `mapstructure:"jwt"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds server TLS configuration
type TLSConfig struct {
	CertFile      string        `mapstructure:"certFile"`
	KeyFile       string        `mapstructure:"keyFile"`
	MinVersion    string        `mapstructure:"minVersion"` // "1.2" or "1.3"
	AutoReload    bool          `mapstructure:"autoReload"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// Enabled reports whether TLS should be served
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// JWTConfig holds bearer token verification settings
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// UsageConfig holds usage tracking configuration
type UsageConfig struct {
	DatabaseURL  string `mapstructure:"databaseURL"` // Postgres DSN; empty logs usage only
	EnsureSchema bool   `mapstructure:"ensureSchema"`
}

// JobSourceConfig holds settings for fetching job descriptions from URLs
type JobSourceConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"userAgent"`
	MaxBodySize int64         `mapstructure:"maxBodySize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operation metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
	TrackFallbacks  bool `mapstructure:"trackFallbacks"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("LETTERCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'LETTERCRAFT'")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/lettercraft/")
	v.AddConfigPath("$HOME/.lettercraft")
	v.AddConfigPath(".")
	log.Println("[CONFIG] Configured config file search paths: /etc/lettercraft/, $HOME/.lettercraft, .")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	return buildConfig(v, configFileUsed)
}

// buildConfig turns a populated viper instance into a validated Config
func buildConfig(v *viper.Viper, configFileUsed string) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.validatePromptFiles(); err != nil {
		return nil, fmt.Errorf("prompt file validation failed: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Orchestration
	v.SetDefault("ai.primary", "openai")
	v.SetDefault("ai.fallback", "claude")
	v.SetDefault("ai.attemptTimeout", 30*time.Second)
	v.SetDefault("ai.maxTokens", 2000)
	v.SetDefault("ai.temperature", 0.7)

	// Providers
	v.SetDefault("ai.providers.openai.kind", ProviderKindOpenAI)
	v.SetDefault("ai.providers.openai.model", "gpt-4-turbo-preview")
	v.SetDefault("ai.providers.openai.apiKey", "")
	v.SetDefault("ai.providers.openai.baseURL", "https://api.openai.com")

	v.SetDefault("ai.providers.claude.kind", ProviderKindClaude)
	v.SetDefault("ai.providers.claude.model", "claude-3-sonnet-20240229")
	v.SetDefault("ai.providers.claude.apiKey", "")
	v.SetDefault("ai.providers.claude.baseURL", "")

	v.SetDefault("ai.providers.azure.kind", ProviderKindAzureOpenAI)
	v.SetDefault("ai.providers.azure.model", "")
	v.SetDefault("ai.providers.azure.apiKey", "")
	v.SetDefault("ai.providers.azure.baseURL", "")

	v.SetDefault("ai.providers.gemini.kind", ProviderKindGemini)
	v.SetDefault("ai.providers.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.providers.gemini.apiKey", "")
	v.SetDefault("ai.providers.gemini.baseURL", "")

	v.SetDefault("ai.customPrompts.watch", false)

	// Circuit Breaker
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 90*time.Second) // two provider attempts plus post-processing
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 1024*1024)
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.autoReload", true)
	v.SetDefault("server.tls.debounceDelay", time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.jwt.secret", "")
	v.SetDefault("server.jwt.issuer", "lettercraft")
	v.SetDefault("server.jwt.ttl", 24*time.Hour)
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Usage tracking
	v.SetDefault("usage.databaseURL", "")
	v.SetDefault("usage.ensureSchema", true)

	// Job description fetching
	v.SetDefault("jobSource.timeout", 30*time.Second)
	v.SetDefault("jobSource.userAgent", "lettercraft/1.0 (+https://github.com/lettercraft)")
	v.SetDefault("jobSource.maxBodySize", 5*1024*1024)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.jwtSecret", "")
	v.SetDefault("vault.secrets.providers", map[string]string{})

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "lettercraft")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackFallbacks", true)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

// Validate checks if the configuration is valid. Missing provider API keys are
// reported when a provider is built, since analysis works without any.
func (c *Config) Validate() error {
	if c.AI.Primary == "" {
		return fmt.Errorf("ai.primary is required")
	}
	if _, ok := c.AI.Providers[c.AI.Primary]; !ok {
		return fmt.Errorf("primary provider %q is not configured under ai.providers", c.AI.Primary)
	}
	if c.AI.Fallback != "" {
		if _, ok := c.AI.Providers[c.AI.Fallback]; !ok {
			return fmt.Errorf("fallback provider %q is not configured under ai.providers", c.AI.Fallback)
		}
	}

	for name, p := range c.AI.Providers {
		switch p.Kind {
		case ProviderKindOpenAI, ProviderKindAzureOpenAI, ProviderKindClaude, ProviderKindGemini:
		default:
			return fmt.Errorf("provider %q has unknown kind %q", name, p.Kind)
		}
	}

	if c.AI.AttemptTimeout <= 0 {
		return fmt.Errorf("ai.attemptTimeout must be positive")
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("ai.maxTokens must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if (c.Server.TLS.CertFile == "") != (c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls.certFile and server.tls.keyFile must be set together")
	}
	switch c.Server.TLS.MinVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", c.Server.TLS.MinVersion)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// ProviderNames returns the primary provider name followed by the fallback, if any
func (c *Config) ProviderNames() []string {
	names := []string{c.AI.Primary}
	if c.AI.Fallback != "" && c.AI.Fallback != c.AI.Primary {
		names = append(names, c.AI.Fallback)
	}
	return names
}
