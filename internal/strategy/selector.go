// Package strategy decides which search backends run for a query and how
// their results are merged.
package strategy

import (
	"regexp"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
)

const (
	DefaultSemanticMinLength  = 15
	highConfidenceThreshold   = 0.7
	simpleKeywordMaxWordCount = 2
)

var (
	defaultSemanticPattern = regexp.MustCompile(`(?i)\b(?:experience|skilled|expert|proficient|familiar|background|build|develop|create|work on|project)\b`)
	punctuationPattern     = regexp.MustCompile(`[.,!?;:]`)
)

// Input is everything the selector looks at.
type Input struct {
	Query            string
	CleanQuery       string
	ExtractedFilters models.ExtractedFilters
	CallerFilters    models.SearchFilters
	Source           models.ExtractionSource
	Confidence       float64
}

type Option func(*Selector)

// WithSemanticPattern replaces the experiential-verb pattern.
func WithSemanticPattern(pattern *regexp.Regexp) Option {
	return func(s *Selector) {
		s.semanticPattern = pattern
	}
}

// WithSemanticMinLength sets the cleaned query length above which a query is
// treated as descriptive.
func WithSemanticMinLength(n int) Option {
	return func(s *Selector) {
		s.semanticMinLength = n
	}
}

// Selector is a pure function of its Input. It holds no request state and is
// safe for concurrent use.
type Selector struct {
	semanticPattern   *regexp.Regexp
	semanticMinLength int
}

func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		semanticPattern:   defaultSemanticPattern,
		semanticMinLength: DefaultSemanticMinLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select applies the decision rules in order; the first match wins.
func (s *Selector) Select(in Input) models.SearchStrategy {
	effective := models.MergeFilters(in.ExtractedFilters, in.CallerFilters)

	query := in.CleanQuery
	if strings.TrimSpace(query) == "" {
		query = in.Query
	}
	query = strings.TrimSpace(query)

	strict := effective.HasStrictFilters()
	semantic := s.IsSemanticQuery(query)
	simple := !semantic && !strict && isSimpleKeyword(query)

	switch {
	case strict && in.Source == models.ExtractionAI && in.Confidence > highConfidenceThreshold:
		return models.SearchStrategy{
			UseFacet:         true,
			UseSemantic:      true,
			PrimarySource:    models.BackendFacet,
			MergeAlgorithm:   models.MergeIntersection,
			EffectiveFilters: effective,
		}
	case strict:
		return models.SearchStrategy{
			UseFacet:         true,
			UseSemantic:      true,
			PrimarySource:    models.BackendFacet,
			MergeAlgorithm:   models.MergeRerank,
			EffectiveFilters: effective,
		}
	case semantic:
		return models.SearchStrategy{
			UseSemantic:      true,
			PrimarySource:    models.BackendSemantic,
			MergeAlgorithm:   models.MergeUnion,
			EffectiveFilters: effective,
		}
	case simple:
		return models.SearchStrategy{
			UseFacet:         true,
			PrimarySource:    models.BackendFacet,
			MergeAlgorithm:   models.MergeUnion,
			EffectiveFilters: effective,
		}
	}

	primary := models.BackendSemantic
	if in.Source == models.ExtractionAI {
		primary = models.BackendFacet
	}
	return models.SearchStrategy{
		UseFacet:         true,
		UseSemantic:      true,
		PrimarySource:    primary,
		MergeAlgorithm:   models.MergeRerank,
		EffectiveFilters: effective,
	}
}

// IsSemanticQuery reports whether a query reads as a description rather than
// a keyword lookup.
func (s *Selector) IsSemanticQuery(query string) bool {
	if len(query) > s.semanticMinLength {
		return true
	}
	return s.semanticPattern.MatchString(query)
}

func isSimpleKeyword(query string) bool {
	words := strings.Fields(query)
	return len(words) > 0 && len(words) <= simpleKeywordMaxWordCount && !punctuationPattern.MatchString(query)
}
