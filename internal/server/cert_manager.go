package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"lettercraft/internal/config"
	"lettercraft/internal/errors"
	"lettercraft/internal/observability"
)

const expiryReportInterval = time.Minute

// CertificateManager serves the TLS certificate and swaps it in when the files change
type CertificateManager struct {
	mu sync.RWMutex

	certFile string
	keyFile  string

	serverCert *tls.Certificate
	notAfter   time.Time

	autoReload    bool
	debounceDelay time.Duration
	watcher       *config.FileWatcher

	metrics *observability.Metrics
	logger  *errors.Logger
	done    chan struct{}
	once    sync.Once

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadTime     time.Time
	lastReloadSuccess  bool
	lastReloadError    string
}

// CertificateMetrics holds metrics about certificate operations
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// NewCertificateManager creates a certificate manager for the key pair in cfg
func NewCertificateManager(cfg config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	if metrics == nil {
		metrics = &observability.Metrics{}
	}
	debounce := cfg.DebounceDelay
	if debounce <= 0 {
		debounce = time.Second
	}
	return &CertificateManager{
		certFile:      cfg.CertFile,
		keyFile:       cfg.KeyFile,
		autoReload:    cfg.AutoReload,
		debounceDelay: debounce,
		metrics:       metrics,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

// Start loads the key pair, then starts the file watcher and expiry reporting
func (cm *CertificateManager) Start() error {
	if err := cm.ReloadCertificates(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	if cm.autoReload {
		watcher := config.NewFileWatcher("certificates", []string{cm.certFile, cm.keyFile},
			cm.debounceDelay, cm.triggerReload, cm.logger)
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start certificate watcher: %w", err)
		}
		cm.mu.Lock()
		cm.watcher = watcher
		cm.mu.Unlock()
	}

	go cm.reportExpiry()
	return nil
}

// Stop stops the watcher and expiry reporting
func (cm *CertificateManager) Stop() error {
	cm.once.Do(func() { close(cm.done) })

	cm.mu.RLock()
	watcher := cm.watcher
	cm.mu.RUnlock()
	if watcher != nil {
		return watcher.Stop()
	}
	return nil
}

// GetServerCertificate implements tls.Config.GetCertificate
func (cm *CertificateManager) GetServerCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cm.serverCert, nil
}

// ReloadCertificates reads the key pair from disk. On failure the previous
// certificate keeps being served.
func (cm *CertificateManager) ReloadCertificates() error {
	cert, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err == nil && len(cert.Certificate) == 0 {
		err = fmt.Errorf("no certificate in %s", cm.certFile)
	}
	var leaf *x509.Certificate
	if err == nil {
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			err = fmt.Errorf("failed to parse server certificate: %w", err)
		}
	}

	cm.mu.Lock()
	cm.reloadCount++
	cm.lastReloadTime = time.Now()
	if err != nil {
		cm.reloadFailureCount++
		cm.lastReloadSuccess = false
		cm.lastReloadError = err.Error()
	} else {
		cert.Leaf = leaf
		cm.serverCert = &cert
		cm.notAfter = leaf.NotAfter
		cm.reloadSuccessCount++
		cm.lastReloadSuccess = true
		cm.lastReloadError = ""
	}
	notAfter := cm.notAfter
	cm.mu.Unlock()

	ctx := context.Background()
	cm.metrics.RecordConfigReload(ctx, "certificate", err == nil)
	if err != nil {
		return err
	}
	cm.metrics.RecordCertExpiry(ctx, notAfter)

	if cm.logger != nil {
		cm.logger.Info("Certificates loaded", "cert_file", cm.certFile, "not_after", notAfter)
	}
	return nil
}

func (cm *CertificateManager) triggerReload() {
	if err := cm.ReloadCertificates(); err != nil && cm.logger != nil {
		cm.logger.LogError(err, "Failed to reload certificates, keeping previous certificate")
	}
}

// CheckExpiry returns the time left before the served certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return 0, fmt.Errorf("no server certificate loaded")
	}
	return time.Until(cm.notAfter), nil
}

// GetMetrics returns a snapshot of reload counters
func (cm *CertificateManager) GetMetrics() CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

// WatcherRunning reports whether certificate files are being watched
func (cm *CertificateManager) WatcherRunning() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.watcher != nil && cm.watcher.IsRunning()
}

func (cm *CertificateManager) reportExpiry() {
	ticker := time.NewTicker(expiryReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.mu.RLock()
			notAfter := cm.notAfter
			cm.mu.RUnlock()
			cm.metrics.RecordCertExpiry(context.Background(), notAfter)
		case <-cm.done:
			return
		}
	}
}
