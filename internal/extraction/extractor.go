// Package extraction turns a free-text freelancer query into structured
// filters and a cleaned query.
package extraction

import (
	"context"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/fallback"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Extractor is one extraction strategy. Returning an error declares failure
// and hands the query to the next strategy.
type Extractor interface {
	Name() models.ExtractionSource
	Extract(ctx context.Context, query string) (models.ExtractionResult, error)
}

// Chain runs extraction strategies in order and never fails.
type Chain struct {
	extractors []Extractor
	logger     *logrus.Logger
}

func NewChain(logger *logrus.Logger, extractors ...Extractor) *Chain {
	return &Chain{
		extractors: extractors,
		logger:     logger,
	}
}

// Extract returns the first successful strategy's result. When every strategy
// fails it returns empty filters, the trimmed query and zero confidence.
func (c *Chain) Extract(ctx context.Context, query string) models.ExtractionResult {
	attempts := make([]fallback.Attempt[models.ExtractionResult], 0, len(c.extractors))
	for _, ex := range c.extractors {
		attempts = append(attempts, fallback.Attempt[models.ExtractionResult]{
			Name: string(ex.Name()),
			Run: func() (models.ExtractionResult, error) {
				return ex.Extract(ctx, query)
			},
		})
	}

	outcome, err := fallback.First(attempts...)
	for _, failure := range outcome.Failures {
		c.logger.WithFields(logrus.Fields{
			"extractor": failure.Name,
		}).WithError(failure.Err).Debug("Filter extractor failed, falling back")
	}
	if err != nil {
		c.logger.WithError(err).Warn("All filter extractors failed")
		return models.ExtractionResult{
			CleanQuery: strings.TrimSpace(query),
			Source:     models.ExtractionManual,
		}
	}
	return outcome.Value
}
