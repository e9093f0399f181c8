package backends

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/facetindex"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
)

type FacetAdapter struct {
	index        FacetIndex
	defaultLimit int
	logger       *logrus.Logger
}

func NewFacetAdapter(index FacetIndex, defaultLimit int, logger *logrus.Logger) *FacetAdapter {
	return &FacetAdapter{
		index:        index,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Search translates filters into facet and numeric constraints. Rates are
// converted from cents to the index's major units.
func (a *FacetAdapter) Search(ctx context.Context, query string, filters models.SearchFilters) ([]models.RawFacetHit, error) {
	q := BuildFacetQuery(query, filters, a.defaultLimit)

	hits, err := a.index.Search(ctx, q)
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"query": query,
		}).WithError(err).Warn("Facet search failed")
		return []models.RawFacetHit{}, fmt.Errorf("facet search: %w", err)
	}
	return hits, nil
}

func BuildFacetQuery(query string, filters models.SearchFilters, defaultLimit int) facetindex.Query {
	q := facetindex.Query{
		Text:             strings.TrimSpace(query),
		AvailableOnly:    availableOnly(filters),
		Specializations:  specializationStrings(filters),
		ExperienceLevels: experienceStrings(filters),
		Limit:            limitOf(filters, defaultLimit),
	}
	if filters.Location != nil {
		q.Location = strings.TrimSpace(*filters.Location)
	}
	if filters.MinRate != nil && *filters.MinRate > 0 {
		v := float64(*filters.MinRate) / 100
		q.MinRate = &v
	}
	if filters.MaxRate != nil && *filters.MaxRate > 0 {
		v := float64(*filters.MaxRate) / 100
		q.MaxRate = &v
	}
	return q
}
