package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after each certificate reload attempt
type ReloadCallback func(success bool, err error)

// CertMetrics holds counters about certificate reload operations
type CertMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertReloader keeps the server's TLS certificates fresh by watching the
// certificate files and reloading them on change. It serves certificates
// through tls.Config.GetCertificate so a reload never requires a restart.
type CertReloader struct {
	mu sync.RWMutex

	serverCert *tls.Certificate
	caCertPool *x509.CertPool
	certExpiry time.Time

	config *config.TLSConfig

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan chan struct{}
	running  bool

	reloadCallbacks []ReloadCallback
	logger          *errors.Logger

	metrics CertMetrics
}

// NewCertReloader creates a reloader for the given TLS configuration
func NewCertReloader(tlsConfig *config.TLSConfig, logger *errors.Logger) *CertReloader {
	debounce := tlsConfig.Reload.DebounceDelay
	if debounce == 0 {
		debounce = time.Second
	}

	return &CertReloader{
		config:        tlsConfig,
		debounceDelay: debounce,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
}

// Start loads the initial certificates and begins watching their files
func (cr *CertReloader) Start() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.running {
		return fmt.Errorf("certificate reloader is already running")
	}

	if err := cr.loadLocked(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cr.fsWatcher = watcher

	for _, file := range cr.watchedFilesLocked() {
		if err := cr.addWatch(file); err != nil {
			cr.logger.Warn("Failed to watch certificate file", "file", file, "error", err)
		}
	}

	cr.running = true
	go cr.watchLoop()

	cr.logger.Info("Certificate reloader started",
		"cert_file", cr.config.CertFile,
		"key_file", cr.config.KeyFile,
		"ca_file", cr.config.CAFile,
		"debounce_delay", cr.debounceDelay)

	return nil
}

// addWatch watches a file, falling back to its directory when the file does
// not exist yet (common with symlinked Kubernetes secret mounts).
func (cr *CertReloader) addWatch(file string) error {
	if err := cr.fsWatcher.Add(file); err != nil {
		if os.IsNotExist(err) {
			dir := filepath.Dir(file)
			if err := cr.fsWatcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			cr.logger.Info("Watching directory for certificate file",
				"file", file, "directory", dir)
			return nil
		}
		return fmt.Errorf("failed to watch file %s: %w", file, err)
	}
	return nil
}

// Stop stops the reloader and releases the file watcher
func (cr *CertReloader) Stop() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.running {
		return nil
	}

	close(cr.stopChan)
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	if cr.fsWatcher != nil {
		if err := cr.fsWatcher.Close(); err != nil {
			cr.logger.LogError(err, "Failed to close certificate file watcher")
			return err
		}
	}

	cr.running = false
	cr.logger.Info("Certificate reloader stopped")
	return nil
}

// watchLoop consumes file system events and debounces reloads. Editors and
// secret managers often touch a file several times per rotation.
func (cr *CertReloader) watchLoop() {
	for {
		select {
		case event, ok := <-cr.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !cr.isWatchedFile(event.Name) {
				continue
			}

			cr.logger.Debug("Certificate file changed",
				"file", event.Name, "op", event.Op.String())
			cr.scheduleReload()

		case err, ok := <-cr.fsWatcher.Errors:
			if !ok {
				return
			}
			cr.logger.LogError(err, "Certificate file watcher error")

		case <-cr.stopChan:
			return
		}
	}
}

func (cr *CertReloader) isWatchedFile(name string) bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	for _, file := range cr.watchedFilesLocked() {
		if filepath.Clean(name) == filepath.Clean(file) {
			return true
		}
	}
	return false
}

// scheduleReload resets the debounce timer; the reload fires once the file
// system has been quiet for debounceDelay.
func (cr *CertReloader) scheduleReload() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceTimer = time.AfterFunc(cr.debounceDelay, cr.Reload)
}

// Reload reloads certificates from disk and notifies callbacks
func (cr *CertReloader) Reload() {
	cr.mu.Lock()
	cr.metrics.ReloadCount++
	err := cr.loadLocked()
	cr.metrics.LastReloadTime = time.Now()
	if err != nil {
		cr.metrics.ReloadFailureCount++
		cr.metrics.LastReloadSuccess = false
		cr.metrics.LastReloadError = err.Error()
	} else {
		cr.metrics.ReloadSuccessCount++
		cr.metrics.LastReloadSuccess = true
		cr.metrics.LastReloadError = ""
	}
	callbacks := make([]ReloadCallback, len(cr.reloadCallbacks))
	copy(callbacks, cr.reloadCallbacks)
	cr.mu.Unlock()

	for _, cb := range callbacks {
		cb(err == nil, err)
	}
}

// loadLocked loads the key pair and CA pool from the configured files.
// Callers must hold the write lock.
func (cr *CertReloader) loadLocked() error {
	cert, err := tls.LoadX509KeyPair(cr.config.CertFile, cr.config.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load server cert/key: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf

	if cr.config.CAFile != "" {
		caCert, err := os.ReadFile(cr.config.CAFile)
		if err != nil {
			return fmt.Errorf("failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caCert); !ok {
			return fmt.Errorf("failed to append CA cert from %s", cr.config.CAFile)
		}
		cr.caCertPool = pool
	}

	cr.serverCert = &cert
	cr.certExpiry = leaf.NotAfter

	return nil
}

// GetServerCertificate serves the current certificate; wired into
// tls.Config.GetCertificate
func (cr *CertReloader) GetServerCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.serverCert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cr.serverCert, nil
}

// CAPool returns the current client CA pool, nil when no CA is configured
func (cr *CertReloader) CAPool() *x509.CertPool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.caCertPool
}

// CheckExpiry returns the time remaining until the server certificate expires
func (cr *CertReloader) CheckExpiry() (time.Duration, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.serverCert == nil {
		return 0, fmt.Errorf("no server certificate loaded")
	}
	return time.Until(cr.certExpiry), nil
}

// AddReloadCallback registers a callback invoked after each reload attempt
func (cr *CertReloader) AddReloadCallback(cb ReloadCallback) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.reloadCallbacks = append(cr.reloadCallbacks, cb)
}

// IsRunning reports whether the reloader is watching files
func (cr *CertReloader) IsRunning() bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.running
}

// WatchedFiles returns the certificate files being watched
func (cr *CertReloader) WatchedFiles() []string {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.watchedFilesLocked()
}

func (cr *CertReloader) watchedFilesLocked() []string {
	var files []string
	if cr.config.CertFile != "" {
		files = append(files, cr.config.CertFile)
	}
	if cr.config.KeyFile != "" {
		files = append(files, cr.config.KeyFile)
	}
	if cr.config.CAFile != "" {
		files = append(files, cr.config.CAFile)
	}
	return files
}

// GetMetrics returns a snapshot of reload counters
func (cr *CertReloader) GetMetrics() CertMetrics {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.metrics
}
