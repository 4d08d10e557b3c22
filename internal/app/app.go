package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"netbackup/internal/config"
	"netbackup/internal/database"
	"netbackup/internal/encryption"
	"netbackup/internal/metrics"
	"netbackup/internal/nb"
	"netbackup/internal/staging"
)

// App is the application layer between the CLI or HTTP server and the
// backup Service. It constructs all dependencies from config and owns the
// database and log file until Close.
type App struct {
	cfg       *config.Config
	db        nb.Database
	staging   nb.StagingArea
	encryptor nb.Encryptor
	metrics   *metrics.Prometheus
	service   *nb.Service
	logger    nb.Logger
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation names the command being run (e.g. "serve", "run") and is
// attached to every log record. The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	return newApp(cfg, operation, &azureConnector{cfg: cfg})
}

func newApp(cfg *config.Config, operation string, connector nb.Connector) (*App, error) {
	retry, err := cfg.Vault.RetryWindow()
	if err != nil {
		return nil, err
	}

	sa, err := staging.NewStagingAreaFromConfig(cfg.Staging)
	if err != nil {
		return nil, fmt.Errorf("creating staging area: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, cfg.Debug)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger.With("cmd", operation)}

	m := metrics.NewPrometheus()
	opts := []nb.Option{nb.WithMetrics(m), nb.WithUploadRetry(retry)}
	if enc != nil {
		opts = append(opts, nb.WithEncryptor(enc))
	}

	svc := nb.NewService(connector, sa, db, logger, nb.RealClock{}, nb.UUIDGenerator{}, opts...)

	return &App{
		cfg:       cfg,
		db:        db,
		staging:   sa,
		encryptor: enc,
		metrics:   m,
		service:   svc,
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// Run executes one backup run. See nb.Service.Run.
func (a *App) Run(ctx context.Context, selector string) (*nb.RunResult, error) {
	return a.service.Run(ctx, selector)
}

// GetHistory returns the most recent backup runs.
func (a *App) GetHistory(limit int) ([]*nb.RunRecord, error) {
	return a.service.GetHistory(limit)
}

// NeedsPassphrase reports whether fetching key requires unlocking the private key.
func (a *App) NeedsPassphrase(key string) bool {
	return a.encryptor != nil && strings.HasSuffix(key, a.encryptor.Extension())
}

// Fetch downloads the archive stored under key into w. passphrase is only
// called when the archive is encrypted.
func (a *App) Fetch(ctx context.Context, key string, w io.Writer, passphrase func() (string, error)) error {
	var dc nb.DecryptionContext
	if a.NeedsPassphrase(key) {
		pass, err := passphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		dc, err = a.encryptor.Unlock(pass)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
	}
	return a.service.Fetch(ctx, key, dc, w)
}

// SetupKeys generates the encryption key pair.
func (a *App) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is not configured: set [encryption] type in the config file")
	}
	return a.encryptor.Setup(passphrase)
}

// Logger returns the application logger.
func (a *App) Logger() nb.Logger {
	return a.logger
}

// MetricsHandler serves the pipeline counters.
func (a *App) MetricsHandler() http.Handler {
	return a.metrics.Handler()
}

// Close releases the database and log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
