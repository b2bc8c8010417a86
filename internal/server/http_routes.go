package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware()(s.authMiddleware(s.requestSizeLimitMiddleware()(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("POST /generate", protect(s.generateHandler))
	mux.HandleFunc("POST /analyze", protect(s.analyzeHandler))
	mux.HandleFunc("POST /improve", protect(s.improveHandler))

	return mux
}

// Handler returns the routed handler wrapped with request ids
func (s *Server) Handler() http.Handler {
	return requestIDMiddleware(s.setupRoutes())
}

// requestIDMiddleware propagates X-Request-ID, generating one when absent
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken returns the Authorization bearer token, or ""
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// credential returns the API key or bearer token presented by the client
func credential(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return bearerToken(r)
}

// authMiddleware accepts a configured API key or a valid signed token. A token's
// subject becomes the request's user id.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authEnabled() {
			next(w, r)
			return
		}

		cred := credential(r)
		if cred == "" {
			s.Logger.Info("Authentication failed: missing credentials",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if s.APIKeys[cred] {
			s.Logger.Debug("API key authentication successful",
				"endpoint", r.URL.Path,
				"api_key_prefix", maskAPIKey(cred))
			next(w, r)
			return
		}

		if s.Tokens != nil {
			userID, err := s.Tokens.ValidateToken(cred)
			if err == nil {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				next(w, r.WithContext(ctx))
				return
			}
			s.Logger.Debug("Token rejected", "endpoint", r.URL.Path, "error", err)
		}

		s.Logger.Info("Authentication failed: invalid credentials",
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r),
			"api_key_prefix", maskAPIKey(cred))
		writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
