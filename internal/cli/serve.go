package cli

import (
	"fmt"

	"lettercraft/internal/config"
	"lettercraft/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cover letter HTTP API",
	Long: `Start an HTTP server exposing the letter workflows as a REST API.

Available endpoints:
- POST /generate: Generate a cover letter for a job posting
- POST /analyze: Score an existing letter
- POST /improve: Revise a letter from suggestions
- GET /health: Provider, circuit breaker and certificate health
- GET /stats: Server statistics and rate limiting info

TLS is enabled when both --tls-cert and --tls-key (or server.tls in the
configuration) are set. Certificates are reloaded when the files change
if server.tls.autoReload is true.`,
	RunE: runServe,
}

var serveOverrides struct {
	port    string
	host    string
	tlsCert string
	tlsKey  string
}

func init() {
	serveCmd.Flags().StringVarP(&serveOverrides.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveOverrides.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveOverrides.tlsCert, "tls-cert", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveOverrides.tlsKey, "tls-key", "", "Server private key file (PEM, overrides config)")
}

// applyServeOverrides copies non-empty flag values onto the server configuration
func applyServeOverrides(cfg *config.ServerConfig) error {
	if serveOverrides.port != "" {
		cfg.Port = serveOverrides.port
	}
	if serveOverrides.host != "" {
		cfg.Host = serveOverrides.host
	}
	if serveOverrides.tlsCert != "" {
		cfg.TLS.CertFile = serveOverrides.tlsCert
	}
	if serveOverrides.tlsKey != "" {
		cfg.TLS.KeyFile = serveOverrides.tlsKey
	}
	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return fmt.Errorf("invalid TLS configuration: certificate and key must be set together")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := applyServeOverrides(&cfg.Server); err != nil {
		return err
	}

	return server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), logger).Start(cmd.Context())
}
