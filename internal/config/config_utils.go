package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// providerKeyEnvVars lists the conventional API key variables per provider kind
var providerKeyEnvVars = map[string][]string{
	ProviderKindOpenAI:      {"OPENAI_API_KEY"},
	ProviderKindAzureOpenAI: {"AZURE_OPENAI_API_KEY"},
	ProviderKindClaude:      {"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"},
	ProviderKindGemini:      {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyServerAPIKeyFallbacks()
	c.applyProviderFallbacks()
	c.applyObservabilityDefaults()
}

// applyServerAPIKeyFallbacks applies API key fallbacks from environment variables
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("LETTERCRAFT_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

// applyProviderFallbacks fills provider API keys and Azure endpoints from
// conventional environment variables when they are not configured
func (c *Config) applyProviderFallbacks() {
	for name, p := range c.AI.Providers {
		if p.APIKey == "" {
			for _, envVar := range providerKeyEnvVars[p.Kind] {
				if value := os.Getenv(envVar); value != "" {
					p.APIKey = value
					break
				}
			}
		}
		if p.Kind == ProviderKindAzureOpenAI && p.BaseURL == "" {
			p.BaseURL = os.Getenv("AZURE_OPENAI_ENDPOINT")
		}
		c.AI.Providers[name] = p
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitAndTrim(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"LETTERCRAFT_AI_PRIMARY",
		"LETTERCRAFT_AI_FALLBACK",
		"LETTERCRAFT_SERVER_PORT",
		"LETTERCRAFT_SERVER_HOST",
		"LETTERCRAFT_SERVER_APIKEYS",
		"LETTERCRAFT_APP_LOGLEVEL",
		"LETTERCRAFT_USAGE_DATABASEURL",
		"LETTERCRAFT_VAULT_ENABLED",
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
		"CLAUDE_API_KEY",
		"AZURE_OPENAI_API_KEY",
		"AZURE_OPENAI_ENDPOINT",
		"GEMINI_API_KEY",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			lower := strings.ToLower(envVar)
			if strings.Contains(lower, "key") || strings.Contains(lower, "databaseurl") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Primary: %s", c.AI.Primary)
	log.Printf("[CONFIG] AI Fallback: %s", c.AI.Fallback)
	log.Printf("[CONFIG] AI Attempt Timeout: %s", c.AI.AttemptTimeout)

	names := make([]string, 0, len(c.AI.Providers))
	for name := range c.AI.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.AI.Providers[name]
		keyState := "***NOT SET***"
		if p.APIKey != "" {
			keyState = "***CONFIGURED***"
		}
		log.Printf("[CONFIG] Provider %s - Kind: %s, Model: %s, API Key: %s", name, p.Kind, p.Model, keyState)
	}

	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Enabled: %t", c.Server.TLS.Enabled())
	log.Printf("[CONFIG] JWT Auth Enabled: %t", c.Server.JWT.Secret != "")
	log.Printf("[CONFIG] Usage Store: %s", usageStoreLabel(c.Usage.DatabaseURL))
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] =====================================")
}

func usageStoreLabel(dsn string) string {
	if dsn == "" {
		return "log"
	}
	return "postgres"
}
