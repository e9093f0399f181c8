package backends

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/fallback"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
	"github.com/sirupsen/logrus"
)

const (
	MethodVectorText = "vector+text"
	MethodTextOnly   = "text-only"

	DefaultSimilarityThreshold = 0.2
)

var errEmbeddingsUnavailable = errors.New("embeddings are not configured")

// SemanticResult holds ranked rows and the ranking path that produced them.
type SemanticResult struct {
	Hits   []models.RawSemanticHit
	Method string
}

type SemanticAdapter struct {
	embedder     Embedder
	store        RankingStore
	threshold    float64
	defaultLimit int
	logger       *logrus.Logger
}

func NewSemanticAdapter(embedder Embedder, store RankingStore, threshold float64, defaultLimit int, logger *logrus.Logger) *SemanticAdapter {
	return &SemanticAdapter{
		embedder:     embedder,
		store:        store,
		threshold:    threshold,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Search ranks by vector similarity plus text rank when an embedding can be
// produced, and by text rank alone otherwise.
func (a *SemanticAdapter) Search(ctx context.Context, query string, filters models.SearchFilters) (SemanticResult, error) {
	params := a.BuildRankParams(query, filters)

	outcome, err := fallback.First(
		fallback.Attempt[[]models.RawSemanticHit]{Name: MethodVectorText, Run: func() ([]models.RawSemanticHit, error) {
			if a.embedder == nil || !a.embedder.IsConfigured() {
				return nil, errEmbeddingsUnavailable
			}
			embedding, err := a.embedder.Embed(ctx, params.Query)
			if err != nil {
				return nil, fmt.Errorf("embed query: %w", err)
			}
			return a.store.RankWithEmbedding(ctx, params, embedding)
		}},
		fallback.Attempt[[]models.RawSemanticHit]{Name: MethodTextOnly, Run: func() ([]models.RawSemanticHit, error) {
			return a.store.RankByTextOnly(ctx, params)
		}},
	)

	for _, failure := range outcome.Failures {
		a.logger.WithFields(logrus.Fields{
			"method": failure.Name,
		}).WithError(failure.Err).Debug("Semantic ranking path failed")
	}
	if err != nil {
		a.logger.WithField("query", query).WithError(err).Warn("Semantic search failed")
		return SemanticResult{Hits: []models.RawSemanticHit{}}, fmt.Errorf("semantic search: %w", err)
	}

	hits := outcome.Value
	if hits == nil {
		hits = []models.RawSemanticHit{}
	}
	return SemanticResult{Hits: hits, Method: outcome.Name}, nil
}

func (a *SemanticAdapter) BuildRankParams(query string, filters models.SearchFilters) vectorstore.RankParams {
	threshold := a.threshold
	if filters.SimilarityThreshold != nil {
		threshold = *filters.SimilarityThreshold
	}

	p := vectorstore.RankParams{
		Query:            strings.TrimSpace(query),
		Specializations:  specializationStrings(filters),
		ExperienceLevels: experienceStrings(filters),
		MinRate:          filters.MinRate,
		MaxRate:          filters.MaxRate,
		AvailableOnly:    availableOnly(filters),
		Threshold:        threshold,
		Limit:            limitOf(filters, a.defaultLimit),
	}
	if filters.Location != nil {
		if loc := strings.TrimSpace(*filters.Location); loc != "" {
			p.Location = &loc
		}
	}
	return p
}
