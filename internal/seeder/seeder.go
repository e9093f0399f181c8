package seeder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBatchSize = 16
	DefaultPoolSize  = 4
)

type FreelancerStore interface {
	Upsert(freelancer *models.Freelancer) error
	UpdateEmbedding(id string, embedding []float32) error
	GetAll() ([]models.Freelancer, error)
}

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	IsConfigured() bool
}

type Reindexer interface {
	Reindex(ctx context.Context, freelancers []models.Freelancer) error
}

type Options struct {
	BatchSize int
	PoolSize  int
	// DryRun validates profiles without writing anything.
	DryRun bool
}

// Report summarizes one seeding run.
type Report struct {
	Total    int           `json:"total"`
	Valid    int           `json:"valid"`
	Invalid  int           `json:"invalid"`
	Stored   int           `json:"stored"`
	Embedded int           `json:"embedded"`
	Indexed  int           `json:"indexed"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

type Seeder struct {
	store     FreelancerStore
	embedder  BatchEmbedder
	index     Reindexer
	processor *ContentProcessor
	options   Options
	logger    *logrus.Logger
}

func New(store FreelancerStore, embedder BatchEmbedder, index Reindexer, options Options, logger *logrus.Logger) *Seeder {
	if options.BatchSize < 1 {
		options.BatchSize = DefaultBatchSize
	}
	if options.PoolSize < 1 {
		options.PoolSize = DefaultPoolSize
	}
	return &Seeder{
		store:     store,
		embedder:  embedder,
		index:     index,
		processor: NewContentProcessor(),
		options:   options,
		logger:    logger,
	}
}

// Seed validates profiles, stores them, embeds them on a worker pool and
// rebuilds the facet index from everything in the store. Invalid profiles and
// embedding failures are reported, not fatal.
func (s *Seeder) Seed(ctx context.Context, profiles []Profile) (Report, error) {
	start := time.Now()
	report := Report{Total: len(profiles)}

	freelancers := make([]models.Freelancer, 0, len(profiles))
	for _, p := range profiles {
		f, err := s.processor.ToFreelancer(p)
		if err != nil {
			report.Invalid++
			report.Errors = append(report.Errors, err.Error())
			s.logger.WithError(err).Warn("Skipping invalid profile")
			continue
		}
		freelancers = append(freelancers, f)
	}
	report.Valid = len(freelancers)

	if s.options.DryRun {
		report.Duration = time.Since(start)
		return report, nil
	}

	for i := range freelancers {
		if err := s.store.Upsert(&freelancers[i]); err != nil {
			return report, fmt.Errorf("failed to store profile %s: %w", freelancers[i].ID, err)
		}
		report.Stored++
	}

	embedded, embedErrs := s.embedAll(ctx, freelancers)
	report.Embedded = embedded
	for _, err := range embedErrs {
		report.Errors = append(report.Errors, err.Error())
	}

	all, err := s.store.GetAll()
	if err != nil {
		return report, fmt.Errorf("failed to load profiles for indexing: %w", err)
	}
	if err := s.index.Reindex(ctx, all); err != nil {
		return report, fmt.Errorf("failed to rebuild facet index: %w", err)
	}
	report.Indexed = len(all)
	report.Duration = time.Since(start)

	s.logger.WithFields(logrus.Fields{
		"total":    report.Total,
		"invalid":  report.Invalid,
		"stored":   report.Stored,
		"embedded": report.Embedded,
		"indexed":  report.Indexed,
		"duration": report.Duration.String(),
	}).Info("Seeding completed")

	return report, nil
}

func (s *Seeder) embedAll(ctx context.Context, freelancers []models.Freelancer) (int, []error) {
	if s.embedder == nil || !s.embedder.IsConfigured() {
		s.logger.Warn("Embeddings not configured, profiles will only be ranked by text")
		return 0, nil
	}

	pool, err := ants.NewPool(s.options.PoolSize)
	if err != nil {
		return 0, []error{fmt.Errorf("failed to create worker pool: %w", err)}
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		embedded int
		errs     []error
	)

	record := func(n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		embedded += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	for batchStart := 0; batchStart < len(freelancers); batchStart += s.options.BatchSize {
		batchEnd := min(batchStart+s.options.BatchSize, len(freelancers))
		batch := freelancers[batchStart:batchEnd]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			record(s.embedBatch(ctx, batch))
		})
		if submitErr != nil {
			wg.Done()
			record(0, fmt.Errorf("failed to submit embedding batch: %w", submitErr))
		}
	}

	wg.Wait()
	return embedded, errs
}

func (s *Seeder) embedBatch(ctx context.Context, batch []models.Freelancer) (int, error) {
	texts := make([]string, len(batch))
	for i, f := range batch {
		texts[i] = s.processor.EmbeddingText(f)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed batch starting at %s: %w", batch[0].ID, err)
	}

	stored := 0
	var errs []error
	for i, vector := range vectors {
		if err := s.store.UpdateEmbedding(batch[i].ID, vector); err != nil {
			errs = append(errs, fmt.Errorf("failed to store embedding for %s: %w", batch[i].ID, err))
			continue
		}
		stored++
	}

	s.logger.WithFields(logrus.Fields{
		"batch_size": len(batch),
		"stored":     stored,
	}).Debug("Embedding batch processed")

	return stored, errors.Join(errs...)
}
