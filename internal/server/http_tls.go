package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS starts the certificate manager and attaches a TLS config to httpServer.
// It does nothing when no key pair is configured.
func (s *Server) configureTLS(httpServer *http.Server) error {
	if !s.TLSConfig.Enabled() {
		return nil
	}

	s.CertificateManager = NewCertificateManager(s.TLSConfig, s.Metrics, s.Logger)
	if err := s.CertificateManager.Start(); err != nil {
		return fmt.Errorf("failed to start certificate manager: %w", err)
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return err
	}
	httpServer.TLSConfig = tlsConfig
	return nil
}

// buildTLSConfig creates the TLS configuration served by the certificate manager
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	minVersion, err := parseTLSVersion(s.TLSConfig.MinVersion)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:     minVersion,
		GetCertificate: s.CertificateManager.GetServerCertificate,
	}, nil
}

// parseTLSVersion maps "1.2" or "1.3" to the tls constant. Empty means 1.2.
func parseTLSVersion(v string) (uint16, error) {
	switch v {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS minimum version %q", v)
	}
}
