package nb

import (
	"context"
	"fmt"
	"time"
)

// Service is the orchestration layer that runs the backup pipeline:
// preflight, subscription resolution, then write, archive and upload for
// each selected subscription in turn.
type Service struct {
	connector Connector
	staging   StagingArea
	database  Database
	logger    Logger
	clock     Clock
	idgen     IDGenerator

	encryptor       Encryptor
	retryMaxElapsed time.Duration
	metrics         Metrics
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithEncryptor encrypts every archive before upload.
func WithEncryptor(enc Encryptor) Option {
	return func(s *Service) { s.encryptor = enc }
}

// WithUploadRetry retries failed uploads with exponential backoff for up to d.
func WithUploadRetry(d time.Duration) Option {
	return func(s *Service) { s.retryMaxElapsed = d }
}

// WithMetrics reports pipeline counters to m.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new Service with the provided dependencies.
func NewService(connector Connector, staging StagingArea, database Database, logger Logger, clock Clock, idgen IDGenerator, opts ...Option) *Service {
	s := &Service{
		connector: connector,
		staging:   staging,
		database:  database,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		metrics:   NopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preflight validates configuration, directory access and storage
// reachability, returning the connected capabilities for the run.
func (s *Service) Preflight(ctx context.Context) (Directory, Vault, error) {
	dir, vault, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	subs, err := dir.ListSubscriptions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to list subscriptions: %w", ErrAuthorization, err)
	}
	if len(subs) == 0 {
		return nil, nil, fmt.Errorf("%w: no subscriptions accessible with this service principal", ErrAuthorization)
	}
	s.logger.Info("subscription access verified", "subscriptions", len(subs))

	if err := vault.ValidateSetup(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to access storage container: %w", ErrAuthorization, err)
	}
	s.logger.Info("storage access verified")

	return dir, vault, nil
}

// Run executes one backup run for the subscriptions matched by selector.
// A single timestamp is captured at the start and shared by every
// subscription. The first error fails the whole run; subscriptions already
// uploaded remain in the result. The returned result is never nil.
func (s *Service) Run(ctx context.Context, selector string) (*RunResult, error) {
	started := s.clock.Now()
	result := newRunResult(started)
	runID := s.idgen.New()
	s.recordStart(runID, result.Timestamp, selector, started)

	s.logger.Info("network backup triggered", "run", runID, "timestamp", result.Timestamp, "selector", selector)

	dir, vault, err := s.Preflight(ctx)
	if err != nil {
		return s.fail(runID, result, fmt.Sprintf("Preflight check failed: %v", err), err)
	}

	result.State = StatePerSubscription
	subs, err := ResolveSubscriptions(ctx, dir, selector)
	if err != nil {
		return s.fail(runID, result, fmt.Sprintf("Fatal error: %v", err), err)
	}
	s.logger.Info("subscriptions selected", "count", len(subs))

	for _, sub := range subs {
		out, err := s.backupSubscription(ctx, dir, vault, sub, result.Timestamp)
		if err != nil {
			s.metrics.SubscriptionFinished(StatusFailed)
			err = fmt.Errorf("subscription %s: %w", sub.DisplayName, err)
			return s.fail(runID, result, fmt.Sprintf("Fatal error: %v", err), err)
		}
		s.metrics.SubscriptionFinished(StatusSuccess)
		result.Subscriptions = append(result.Subscriptions, out)
		if err := s.database.AddRunSubscription(runID, out); err != nil {
			s.logger.Warn("recording subscription outcome", "run", runID, "err", err)
		}
	}

	result.State = StateDone
	result.Status = StatusSuccess
	result.Message = fmt.Sprintf("Backup completed successfully for %d subscription(s)!", len(subs))
	s.recordFinish(runID, result)
	s.metrics.RunFinished(result.Status)
	return result, nil
}

// backupSubscription runs writer, archiver and uploader for one subscription.
func (s *Service) backupSubscription(ctx context.Context, dir Directory, vault Vault, sub Subscription, timestamp string) (SubscriptionResult, error) {
	s.logger.Info("starting backup for subscription", "subscription", sub.DisplayName, "id", sub.ID)

	rd, err := dir.ForSubscription(sub.ID)
	if err != nil {
		return SubscriptionResult{}, fmt.Errorf("opening resource directory: %w", err)
	}

	root, count, err := s.WriteBackup(ctx, rd, sub, timestamp)
	if err != nil {
		return SubscriptionResult{}, err
	}

	archive, err := s.Archive(root)
	if err != nil {
		return SubscriptionResult{}, err
	}

	key, err := s.Upload(ctx, vault, archive, BlobKey(timestamp, sub.DisplayName))
	if err != nil {
		return SubscriptionResult{}, err
	}

	s.logger.Info("backup completed for subscription", "subscription", sub.DisplayName)
	return SubscriptionResult{
		SubscriptionID: sub.ID,
		DisplayName:    sub.DisplayName,
		BackupBlob:     key,
		ResourceCount:  count,
	}, nil
}

func (s *Service) fail(runID string, result *RunResult, message string, err error) (*RunResult, error) {
	s.logger.Error(message, "run", runID, "completed", len(result.Subscriptions))
	result.State = StateFailed
	result.Status = StatusFailed
	result.Message = message
	s.recordFinish(runID, result)
	s.metrics.RunFinished(result.Status)
	return result, err
}

// History is auxiliary: database failures are logged, never fatal to a run.

func (s *Service) recordStart(runID, timestamp, selector string, started time.Time) {
	err := s.database.CreateRun(&RunRecord{
		ID:        runID,
		Timestamp: timestamp,
		Selector:  selector,
		Status:    StatusRunning,
		StartedAt: started,
	})
	if err != nil {
		s.logger.Warn("recording run start", "run", runID, "err", err)
	}
}

func (s *Service) recordFinish(runID string, result *RunResult) {
	if err := s.database.FinishRun(runID, result.Status, result.Message, s.clock.Now()); err != nil {
		s.logger.Warn("recording run finish", "run", runID, "err", err)
	}
}
