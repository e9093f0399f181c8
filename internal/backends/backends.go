// Package backends adapts the facet index and the vector store to the
// orchestrator's filter model.
package backends

import (
	"context"

	"github.com/Ayash-Bera/hirescout/backend/internal/facetindex"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
)

const DefaultLimit = 50

type FacetIndex interface {
	Search(ctx context.Context, q facetindex.Query) ([]models.RawFacetHit, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsConfigured() bool
}

type RankingStore interface {
	RankWithEmbedding(ctx context.Context, p vectorstore.RankParams, embedding []float32) ([]models.RawSemanticHit, error)
	RankByTextOnly(ctx context.Context, p vectorstore.RankParams) ([]models.RawSemanticHit, error)
}

func limitOf(filters models.SearchFilters, fallback int) int {
	if filters.Limit != nil && *filters.Limit > 0 {
		return *filters.Limit
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultLimit
}

func availableOnly(filters models.SearchFilters) bool {
	return filters.AvailableOnly != nil && *filters.AvailableOnly
}

func specializationStrings(filters models.SearchFilters) []string {
	if len(filters.Specializations) == 0 {
		return nil
	}
	out := make([]string, len(filters.Specializations))
	for i, s := range filters.Specializations {
		out[i] = string(s)
	}
	return out
}

func experienceStrings(filters models.SearchFilters) []string {
	if len(filters.ExperienceLevels) == 0 {
		return nil
	}
	out := make([]string, len(filters.ExperienceLevels))
	for i, e := range filters.ExperienceLevels {
		out[i] = string(e)
	}
	return out
}
