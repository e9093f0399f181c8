package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type stubExtractor struct {
	source models.ExtractionSource
	result models.ExtractionResult
	err    error
	panics bool
	calls  int
}

func (s *stubExtractor) Name() models.ExtractionSource { return s.source }

func (s *stubExtractor) Extract(_ context.Context, _ string) (models.ExtractionResult, error) {
	s.calls++
	if s.panics {
		panic("extractor bug")
	}
	return s.result, s.err
}

func TestChain_PrefersFirstStrategy(t *testing.T) {
	ai := &stubExtractor{source: models.ExtractionAI, result: models.ExtractionResult{
		CleanQuery: "React developer", Confidence: 0.75, Source: models.ExtractionAI,
	}}
	manual := &stubExtractor{source: models.ExtractionManual}

	result := NewChain(logrus.New(), ai, manual).Extract(context.Background(), "senior React developer")

	assert.Equal(t, models.ExtractionAI, result.Source)
	assert.Equal(t, 0, manual.calls)
}

func TestChain_FallsBackToManual(t *testing.T) {
	ai := &stubExtractor{source: models.ExtractionAI, err: errors.New("rate limited")}

	result := NewChain(logrus.New(), ai, NewManualExtractor()).Extract(context.Background(), "remote Python developer")

	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, models.ExtractionManual, result.Source)
	assert.Equal(t, "Remote", *result.Filters.Location)
	assert.Equal(t, "Python developer", result.CleanQuery)
}

func TestChain_TotalFailureYieldsEmptyFilters(t *testing.T) {
	ai := &stubExtractor{source: models.ExtractionAI, err: errors.New("down")}
	broken := &stubExtractor{source: models.ExtractionManual, panics: true}

	result := NewChain(logrus.New(), ai, broken).Extract(context.Background(), "  data scientist  ")

	assert.True(t, result.Filters.IsEmpty())
	assert.Equal(t, "data scientist", result.CleanQuery)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, models.ExtractionManual, result.Source)
}
