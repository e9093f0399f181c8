// Package scheduler runs the cron job that keeps the facet index in step with
// the profiles stored in Postgres.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultSpec = "@every 15m"

type ProfileSource interface {
	GetAll() ([]models.Freelancer, error)
}

type Reindexer interface {
	Reindex(ctx context.Context, freelancers []models.Freelancer) error
}

// CacheInvalidator drops cached search responses once the index changed.
type CacheInvalidator interface {
	InvalidateSearchCache(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the resync loop.
type Scheduler struct {
	cron    *cron.Cron
	source  ProfileSource
	index   Reindexer
	cache   CacheInvalidator
	spec    string
	timeout time.Duration
	logger  *logrus.Logger

	mu      sync.Mutex
	running bool
}

// New creates a Scheduler firing on spec, e.g. "@every 15m". cache may be nil.
func New(source ProfileSource, index Reindexer, cache CacheInvalidator, spec string, logger *logrus.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cronLogger{logger})),
		source:  source,
		index:   index,
		cache:   cache,
		spec:    spec,
		timeout: 5 * time.Minute,
		logger:  logger,
	}
}

// Start registers the job and starts the scheduler. One resync runs right
// away so a fresh index is usable before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("spec", s.spec).Info("Index resync scheduler started")

	go s.RunOnce(ctx)
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Index resync scheduler stopped")
}

// RunOnce rebuilds the facet index. Overlapping runs are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug("Index resync already running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.resync(ctx); err != nil {
		s.logger.WithError(err).Error("Index resync failed")
	}
}

func (s *Scheduler) resync(ctx context.Context) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	freelancers, err := s.source.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if err := s.index.Reindex(ctx, freelancers); err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSearchCache(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate search cache")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"profiles":    len(freelancers),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Facet index resynced")
	return nil
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
