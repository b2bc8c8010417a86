package server

import (
	"fmt"
	"strings"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayProviders()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayTLSInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /generate  - Generate a cover letter (requires credentials)")
	fmt.Println("  POST /analyze   - Analyze a cover letter (requires credentials)")
	fmt.Println("  POST /improve   - Improve a cover letter (requires credentials)")
}

func (s *Server) displayProviders() {
	if s.Letters == nil {
		return
	}
	fmt.Printf("AI providers: %s\n", strings.Join(s.Letters.ProviderNames(), ", "))
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if !s.authEnabled() {
		fmt.Println("API authentication: DISABLED (no API keys or JWT secret configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
		return
	}
	fmt.Printf("API authentication: ENABLED (%d keys configured, JWT %s)\n",
		len(s.APIKeys), enabledLabel(s.Tokens != nil))
	fmt.Println("Include 'X-API-Key: <your-key>' or 'Authorization: Bearer <token>' in requests")
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per credential rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

func (s *Server) displayTLSInfo() {
	if !s.TLSConfig.Enabled() {
		fmt.Println("TLS: DISABLED")
		return
	}
	fmt.Printf("TLS: ENABLED (min version %s, auto-reload %s)\n",
		orDefault(s.TLSConfig.MinVersion, "1.2"), enabledLabel(s.TLSConfig.AutoReload))
}

func enabledLabel(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
