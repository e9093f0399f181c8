package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/backends"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/strategy"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyQuery     = errors.New("Search query cannot be empty")
	ErrQueryTooLong   = errors.New("Search query is too long")
	errAdapterTimeout = errors.New("adapter timed out")
)

const DefaultLimit = 50

type FilterExtractor interface {
	Extract(ctx context.Context, query string) models.ExtractionResult
}

type StrategySelector interface {
	Select(in strategy.Input) models.SearchStrategy
}

type FacetSearcher interface {
	Search(ctx context.Context, query string, filters models.SearchFilters) ([]models.RawFacetHit, error)
}

type SemanticSearcher interface {
	Search(ctx context.Context, query string, filters models.SearchFilters) (backends.SemanticResult, error)
}

type ResultMerger interface {
	Merge(query string, facet []models.RawFacetHit, semantic []models.RawSemanticHit, strategy models.SearchStrategy) []models.CandidateProfile
}

type SearchConfig struct {
	DefaultLimit   int
	AdapterTimeout time.Duration
	MaxQueryLength int
}

// HybridSearchService runs one search end to end: extraction, strategy
// selection, concurrent backend calls, merge and diagnostics.
type HybridSearchService struct {
	extractor FilterExtractor
	selector  StrategySelector
	facet     FacetSearcher
	semantic  SemanticSearcher
	merger    ResultMerger
	config    SearchConfig
	logger    *logrus.Logger
}

func NewHybridSearchService(
	extractor FilterExtractor,
	selector StrategySelector,
	facet FacetSearcher,
	semantic SemanticSearcher,
	merger ResultMerger,
	config SearchConfig,
	logger *logrus.Logger,
) *HybridSearchService {
	return &HybridSearchService{
		extractor: extractor,
		selector:  selector,
		facet:     facet,
		semantic:  semantic,
		merger:    merger,
		config:    config,
		logger:    logger,
	}
}

// Search never panics and never returns an error. Backend failures surface
// only in the analysis; validation and unexpected failures set Success=false.
func (s *HybridSearchService) Search(ctx context.Context, query string, callerFilters models.SearchFilters) (response models.SearchResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"query": query,
				"panic": r,
			}).Error("Search pipeline panicked")
			response = failure(fmt.Sprintf("search failed: %v", r))
		}
	}()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return failure(ErrEmptyQuery.Error())
	}
	if s.config.MaxQueryLength > 0 && len(trimmed) > s.config.MaxQueryLength {
		return failure(ErrQueryTooLong.Error())
	}

	extraction := s.extractor.Extract(ctx, trimmed)

	s.logger.WithFields(logrus.Fields{
		"query":       trimmed,
		"clean_query": extraction.CleanQuery,
		"source":      extraction.Source,
		"confidence":  extraction.Confidence,
	}).Debug("Filters extracted")

	strat := s.selector.Select(strategy.Input{
		Query:            trimmed,
		CleanQuery:       extraction.CleanQuery,
		ExtractedFilters: extraction.Filters,
		CallerFilters:    callerFilters,
		Source:           extraction.Source,
		Confidence:       extraction.Confidence,
	})

	backendQuery := extraction.CleanQuery
	if strings.TrimSpace(backendQuery) == "" {
		backendQuery = trimmed
	}
	filters := strat.EffectiveFilters

	analysis := &models.SearchAnalysis{
		OriginalQuery:        trimmed,
		CleanQuery:           backendQuery,
		ExtractionSource:     extraction.Source,
		ExtractionConfidence: extraction.Confidence,
		ExtractedFilters:     extraction.Filters,
		EffectiveFilters:     filters,
		Strategy:             strat.Label(),
		MergeAlgorithm:       strat.MergeAlgorithm,
		FacetStatus:          models.BackendSkipped,
		SemanticStatus:       models.BackendSkipped,
	}

	var (
		facetHits    = []models.RawFacetHit{}
		semanticHits = []models.RawSemanticHit{}
	)

	g, gctx := errgroup.WithContext(ctx)
	if strat.UseFacet {
		g.Go(func() error {
			hits, err := callWithTimeout(gctx, s.config.AdapterTimeout, func(ctx context.Context) ([]models.RawFacetHit, error) {
				return s.facet.Search(ctx, backendQuery, filters)
			})
			if err != nil {
				analysis.FacetStatus = models.BackendFailed
				s.logger.WithField("query", backendQuery).WithError(err).Warn("Facet backend failed")
				return nil
			}
			facetHits = hits
			analysis.FacetStatus = models.BackendOK
			return nil
		})
	}
	if strat.UseSemantic {
		g.Go(func() error {
			result, err := callWithTimeout(gctx, s.config.AdapterTimeout, func(ctx context.Context) (backends.SemanticResult, error) {
				return s.semantic.Search(ctx, backendQuery, filters)
			})
			if err != nil {
				analysis.SemanticStatus = models.BackendFailed
				s.logger.WithField("query", backendQuery).WithError(err).Warn("Semantic backend failed")
				return nil
			}
			semanticHits = result.Hits
			analysis.SemanticStatus = models.BackendOK
			analysis.SemanticMethod = result.Method
			return nil
		})
	}
	_ = g.Wait()

	if facetHits == nil {
		facetHits = []models.RawFacetHit{}
	}
	if semanticHits == nil {
		semanticHits = []models.RawSemanticHit{}
	}

	candidates := s.merger.Merge(trimmed, facetHits, semanticHits, strat)
	if candidates == nil {
		candidates = []models.CandidateProfile{}
	}

	limit := s.limit(filters)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	analysis.FacetResults = len(facetHits)
	analysis.SemanticResults = len(semanticHits)
	analysis.MergedResults = len(candidates)
	analysis.ProcessingTimeMs = time.Since(start).Milliseconds()

	s.logger.WithFields(logrus.Fields{
		"query":           trimmed,
		"strategy":        analysis.Strategy,
		"merge":           analysis.MergeAlgorithm,
		"facet_results":   analysis.FacetResults,
		"facet_status":    analysis.FacetStatus,
		"semantic_status": analysis.SemanticStatus,
		"semantic_method": analysis.SemanticMethod,
		"results":         len(candidates),
		"duration_ms":     analysis.ProcessingTimeMs,
	}).Info("Hybrid search completed")

	return models.SearchResponse{
		Success:    true,
		Candidates: candidates,
		Analysis:   analysis,
	}
}

func (s *HybridSearchService) limit(filters models.SearchFilters) int {
	if filters.Limit != nil && *filters.Limit > 0 {
		return *filters.Limit
	}
	if s.config.DefaultLimit > 0 {
		return s.config.DefaultLimit
	}
	return DefaultLimit
}

func failure(reason string) models.SearchResponse {
	return models.SearchResponse{
		Success:    false,
		Candidates: []models.CandidateProfile{},
		Error:      reason,
	}
}

// callWithTimeout runs fn with a deadline. A panic in fn and an expired
// deadline are both reported as errors; a late result is discarded.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		value, err := fn(ctx)
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %w", errAdapterTimeout, ctx.Err())
	}
}
