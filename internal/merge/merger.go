// Package merge combines facet and semantic hits into one ranked list of
// candidate profiles.
package merge

import (
	"errors"
	"sort"

	"github.com/Ayash-Bera/hirescout/backend/internal/fallback"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	facetUnionDefaultScore = 0.5

	intersectionWeight = 0.8
	intersectionBoost  = 0.2

	rerankConfirmedWeight = 0.7
	rerankConfirmedBoost  = 0.3
	rerankFacetOnlyWeight = 0.3

	fallbackSemanticWeight = 0.6
	fallbackFacetScore     = 0.4
)

var errNoCandidates = errors.New("no candidates")

type Merger struct {
	logger *logrus.Logger
}

func NewMerger(logger *logrus.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge applies the strategy's merge algorithm. Every returned score lies in
// [0,1] and no identity appears twice.
func (m *Merger) Merge(query string, facet []models.RawFacetHit, semantic []models.RawSemanticHit, strategy models.SearchStrategy) []models.CandidateProfile {
	var merged []models.CandidateProfile
	switch strategy.MergeAlgorithm {
	case models.MergeIntersection:
		merged = Intersection(facet, semantic)
	case models.MergeRerank:
		merged = m.rerankWithFallback(query, facet, semantic)
	default:
		merged = Union(strategy.PrimarySource, facet, semantic)
	}

	m.logger.WithFields(logrus.Fields{
		"query":     query,
		"algorithm": strategy.MergeAlgorithm,
		"facet":     len(facet),
		"semantic":  len(semantic),
		"merged":    len(merged),
	}).Debug("Merged search results")

	return merged
}

// Union concatenates the primary source's hits, then the other source's,
// keeping each engine's own order. Facet hits without a native score get 0.5.
func Union(primary models.Backend, facet []models.RawFacetHit, semantic []models.RawSemanticHit) []models.CandidateProfile {
	out := make([]models.CandidateProfile, 0, len(facet)+len(semantic))
	seen := make(map[string]bool)

	addFacet := func() {
		for _, hit := range facet {
			if hit.ObjectID == "" || seen[hit.ObjectID] {
				continue
			}
			seen[hit.ObjectID] = true
			c := FromFacetHit(hit)
			c.RelevanceScore = Clamp(hit.NativeScore)
			if c.RelevanceScore == 0 {
				c.RelevanceScore = facetUnionDefaultScore
			}
			out = append(out, c)
		}
	}
	addSemantic := func() {
		for _, hit := range semantic {
			if hit.ID == "" || seen[hit.ID] {
				continue
			}
			seen[hit.ID] = true
			c := FromSemanticHit(hit)
			c.RelevanceScore = SemanticScore(hit)
			out = append(out, c)
		}
	}

	if primary == models.BackendSemantic {
		addSemantic()
		addFacet()
	} else {
		addFacet()
		addSemantic()
	}
	return out
}

// Intersection keeps semantic hits confirmed by the facet backend, scored
// similarity*0.8 + 0.2.
func Intersection(facet []models.RawFacetHit, semantic []models.RawSemanticHit) []models.CandidateProfile {
	facetIDs := make(map[string]bool, len(facet))
	for _, hit := range facet {
		facetIDs[hit.ObjectID] = true
	}

	out := make([]models.CandidateProfile, 0)
	seen := make(map[string]bool)
	for _, hit := range semantic {
		if hit.ID == "" || seen[hit.ID] || !facetIDs[hit.ID] {
			continue
		}
		seen[hit.ID] = true
		c := FromSemanticHit(hit)
		c.RelevanceScore = Clamp(SemanticScore(hit)*intersectionWeight + intersectionBoost)
		c.Source = SourceBoth
		out = append(out, c)
	}

	sortByScore(out)
	return out
}

// Rerank takes semantic hits confirmed by the facet backend, scored
// similarity*0.7 + 0.3, then appends the remaining facet hits at native*0.3.
// Semantic-only hits are dropped. Ties keep semantic order, then facet order.
func Rerank(facet []models.RawFacetHit, semantic []models.RawSemanticHit) []models.CandidateProfile {
	byFacetID := make(map[string]bool, len(facet))
	for _, hit := range facet {
		if hit.ObjectID != "" {
			byFacetID[hit.ObjectID] = true
		}
	}

	out := make([]models.CandidateProfile, 0, len(facet))
	seen := make(map[string]bool)
	for _, hit := range semantic {
		if hit.ID == "" || seen[hit.ID] || !byFacetID[hit.ID] {
			continue
		}
		seen[hit.ID] = true
		c := FromSemanticHit(hit)
		c.RelevanceScore = Clamp(SemanticScore(hit)*rerankConfirmedWeight + rerankConfirmedBoost)
		c.Source = SourceBoth
		out = append(out, c)
	}

	for _, hit := range facet {
		if hit.ObjectID == "" || seen[hit.ObjectID] {
			continue
		}
		seen[hit.ObjectID] = true
		c := FromFacetHit(hit)
		c.RelevanceScore = Clamp(Clamp(hit.NativeScore) * rerankFacetOnlyWeight)
		out = append(out, c)
	}

	sortByScore(out)
	return out
}

// SemanticOnly ranks semantic hits alone at similarity*0.6.
func SemanticOnly(semantic []models.RawSemanticHit) []models.CandidateProfile {
	out := make([]models.CandidateProfile, 0, len(semantic))
	seen := make(map[string]bool)
	for _, hit := range semantic {
		if hit.ID == "" || seen[hit.ID] {
			continue
		}
		seen[hit.ID] = true
		c := FromSemanticHit(hit)
		c.RelevanceScore = Clamp(SemanticScore(hit) * fallbackSemanticWeight)
		out = append(out, c)
	}
	sortByScore(out)
	return out
}

// FacetOnly keeps facet hits in engine order at a flat 0.4.
func FacetOnly(facet []models.RawFacetHit) []models.CandidateProfile {
	out := make([]models.CandidateProfile, 0, len(facet))
	seen := make(map[string]bool)
	for _, hit := range facet {
		if hit.ObjectID == "" || seen[hit.ObjectID] {
			continue
		}
		seen[hit.ObjectID] = true
		c := FromFacetHit(hit)
		c.RelevanceScore = fallbackFacetScore
		out = append(out, c)
	}
	return out
}

func (m *Merger) rerankWithFallback(query string, facet []models.RawFacetHit, semantic []models.RawSemanticHit) []models.CandidateProfile {
	nonEmpty := func(candidates []models.CandidateProfile) ([]models.CandidateProfile, error) {
		if len(candidates) == 0 {
			return nil, errNoCandidates
		}
		return candidates, nil
	}

	outcome, err := fallback.First(
		fallback.Attempt[[]models.CandidateProfile]{Name: "rerank", Run: func() ([]models.CandidateProfile, error) {
			return nonEmpty(Rerank(facet, semantic))
		}},
		fallback.Attempt[[]models.CandidateProfile]{Name: "semantic-only", Run: func() ([]models.CandidateProfile, error) {
			return nonEmpty(SemanticOnly(semantic))
		}},
		fallback.Attempt[[]models.CandidateProfile]{Name: "facet-only", Run: func() ([]models.CandidateProfile, error) {
			return nonEmpty(FacetOnly(facet))
		}},
	)
	if err != nil {
		return []models.CandidateProfile{}
	}
	if outcome.Name != "rerank" {
		m.logger.WithFields(logrus.Fields{
			"query":    query,
			"fallback": outcome.Name,
		}).Info("Rerank produced no candidates, using single engine results")
	}
	return outcome.Value
}

func sortByScore(candidates []models.CandidateProfile) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RelevanceScore > candidates[j].RelevanceScore
	})
}
