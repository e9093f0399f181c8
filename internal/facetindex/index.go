// Package facetindex is the keyword and facet search engine over freelancer
// profiles, backed by bleve.
package facetindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/sirupsen/logrus"
)

const DefaultLimit = 50

// Query is a keyword search narrowed by facet and numeric filters. Rates are
// in major units, as stored by the index.
type Query struct {
	Text             string
	AvailableOnly    bool
	Specializations  []string
	ExperienceLevels []string
	Location         string
	MinRate          *float64
	MaxRate          *float64
	Limit            int
}

type Index struct {
	index  bleve.Index
	path   string
	logger *logrus.Logger
}

// document is what bleve indexes for one profile. Source holds the stored
// record returned with each hit.
type document struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Keywords          string   `json:"keywords"`
	Skills            []string `json:"skills"`
	Specializations   []string `json:"specializations"`
	Languages         []string `json:"languages"`
	ExperienceLevel   string   `json:"experience_level"`
	LocationKey       string   `json:"location_key"`
	HourlyRateMin     *float64 `json:"hourly_rate_min,omitempty"`
	HourlyRateMax     *float64 `json:"hourly_rate_max,omitempty"`
	Rating            float64  `json:"rating"`
	ProjectsCompleted float64  `json:"projects_completed"`
	Available         bool     `json:"available"`
	IsVerified        bool     `json:"is_verified"`
	Source            string   `json:"source"`
}

type record struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Specializations   []string `json:"specializations"`
	Skills            []string `json:"skills"`
	ExperienceLevel   string   `json:"experience_level"`
	HourlyRateMin     *float64 `json:"hourly_rate_min"`
	HourlyRateMax     *float64 `json:"hourly_rate_max"`
	Location          string   `json:"location"`
	Timezone          string   `json:"timezone"`
	Languages         []string `json:"languages"`
	Rating            float64  `json:"rating"`
	ReviewsCount      int      `json:"reviews_count"`
	ProjectsCompleted int      `json:"projects_completed"`
	Available         bool     `json:"available"`
	IsVerified        bool     `json:"is_verified"`
}

// Open opens the index at path, creating it when the path does not exist.
func Open(path string, logger *logrus.Logger) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == nil {
		return &Index{index: idx, path: path, logger: logger}, nil
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return nil, fmt.Errorf("open facet index: %w", err)
	}

	idx, err = bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create facet index: %w", err)
	}

	logger.WithField("path", path).Info("Created facet index")
	return &Index{index: idx, path: path, logger: logger}, nil
}

// NewMemOnly creates a throwaway in-memory index.
func NewMemOnly(logger *logrus.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory facet index: %w", err)
	}
	return &Index{index: idx, logger: logger}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "en"
	textField.Store = false

	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("description", textField)
	docMapping.AddFieldMappingsAt("keywords", textField)
	docMapping.AddFieldMappingsAt("skills", textField)

	keywordField := bleve.NewKeywordFieldMapping()
	keywordField.Store = false
	docMapping.AddFieldMappingsAt("specializations", keywordField)
	docMapping.AddFieldMappingsAt("languages", keywordField)
	docMapping.AddFieldMappingsAt("experience_level", keywordField)
	docMapping.AddFieldMappingsAt("location_key", keywordField)

	numericField := bleve.NewNumericFieldMapping()
	numericField.Store = false
	docMapping.AddFieldMappingsAt("hourly_rate_min", numericField)
	docMapping.AddFieldMappingsAt("hourly_rate_max", numericField)
	docMapping.AddFieldMappingsAt("rating", numericField)
	docMapping.AddFieldMappingsAt("projects_completed", numericField)

	boolField := bleve.NewBooleanFieldMapping()
	boolField.Store = false
	docMapping.AddFieldMappingsAt("available", boolField)
	docMapping.AddFieldMappingsAt("is_verified", boolField)

	sourceField := bleve.NewTextFieldMapping()
	sourceField.Index = false
	sourceField.Store = true
	sourceField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("source", sourceField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func toDocument(f models.Freelancer) (document, error) {
	rec := record{
		Title:             f.Title,
		Description:       f.Description,
		Specializations:   []string(f.Specializations),
		Skills:            []string(f.Skills),
		ExperienceLevel:   f.ExperienceLevel,
		HourlyRateMin:     minorToMajor(f.HourlyRateMin),
		HourlyRateMax:     minorToMajor(f.HourlyRateMax),
		Location:          f.Location,
		Timezone:          f.Timezone,
		Languages:         []string(f.Languages),
		Rating:            f.Rating,
		ReviewsCount:      f.ReviewsCount,
		ProjectsCompleted: f.ProjectsCompleted,
		Available:         f.IsAvailable,
		IsVerified:        f.IsVerified,
	}
	source, err := json.Marshal(rec)
	if err != nil {
		return document{}, err
	}

	keywords := []string{f.Title}
	keywords = append(keywords, f.Skills...)
	for _, s := range f.Specializations {
		keywords = append(keywords, strings.ReplaceAll(s, "_", " "))
	}
	keywords = append(keywords, f.ExperienceLevel, f.Location)

	return document{
		Title:             f.Title,
		Description:       f.Description,
		Keywords:          strings.ToLower(strings.Join(keywords, " ")),
		Skills:            rec.Skills,
		Specializations:   rec.Specializations,
		Languages:         rec.Languages,
		ExperienceLevel:   f.ExperienceLevel,
		LocationKey:       locationKey(f.Location),
		HourlyRateMin:     rec.HourlyRateMin,
		HourlyRateMax:     rec.HourlyRateMax,
		Rating:            f.Rating,
		ProjectsCompleted: float64(f.ProjectsCompleted),
		Available:         f.IsAvailable,
		IsVerified:        f.IsVerified,
		Source:            string(source),
	}, nil
}

// Index adds or replaces one profile.
func (i *Index) Index(_ context.Context, f models.Freelancer) error {
	doc, err := toDocument(f)
	if err != nil {
		return fmt.Errorf("encode freelancer %s: %w", f.ID, err)
	}
	if err := i.index.Index(f.ID, doc); err != nil {
		return fmt.Errorf("index freelancer %s: %w", f.ID, err)
	}
	return nil
}

// Reindex replaces the index contents with freelancers in one batch. Profiles
// absent from the list are removed.
func (i *Index) Reindex(ctx context.Context, freelancers []models.Freelancer) error {
	existing, err := i.documentIDs(ctx)
	if err != nil {
		return err
	}

	batch := i.index.NewBatch()
	keep := make(map[string]bool, len(freelancers))
	for _, f := range freelancers {
		doc, err := toDocument(f)
		if err != nil {
			return fmt.Errorf("encode freelancer %s: %w", f.ID, err)
		}
		if err := batch.Index(f.ID, doc); err != nil {
			return fmt.Errorf("batch index freelancer %s: %w", f.ID, err)
		}
		keep[f.ID] = true
	}

	removed := 0
	for _, id := range existing {
		if !keep[id] {
			batch.Delete(id)
			removed++
		}
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("reindex batch: %w", err)
	}

	i.logger.WithFields(logrus.Fields{
		"indexed": len(freelancers),
		"removed": removed,
	}).Info("Facet index rebuilt")
	return nil
}

// Search runs q and returns hits in engine order. NativeScore is the hit score
// divided by the best score of the result set.
func (i *Index) Search(ctx context.Context, q Query) ([]models.RawFacetHit, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.Fields = []string{"source"}
	if strings.TrimSpace(q.Text) == "" {
		req.SortBy([]string{"-rating", "-projects_completed", "hourly_rate_min"})
	} else {
		req.SortBy([]string{"-_score", "-rating", "-projects_completed"})
	}

	results, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("facet search: %w", err)
	}

	hits := make([]models.RawFacetHit, 0, len(results.Hits))
	for _, h := range results.Hits {
		raw, _ := h.Fields["source"].(string)
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			i.logger.WithField("id", h.ID).WithError(err).Warn("Skipping facet hit with unreadable source")
			continue
		}

		score := 0.0
		if results.MaxScore > 0 {
			score = h.Score / results.MaxScore
		}
		available, verified, rating := rec.Available, rec.IsVerified, rec.Rating

		hits = append(hits, models.RawFacetHit{
			ObjectID:        h.ID,
			Title:           rec.Title,
			Description:     rec.Description,
			Specializations: rec.Specializations,
			Skills:          rec.Skills,
			ExperienceLevel: rec.ExperienceLevel,
			HourlyRateMin:   rec.HourlyRateMin,
			HourlyRateMax:   rec.HourlyRateMax,
			Location:        rec.Location,
			Timezone:        rec.Timezone,
			Languages:       rec.Languages,
			Rating:          &rating,
			ReviewsCount:    rec.ReviewsCount,
			ProjectsDone:    rec.ProjectsCompleted,
			IsAvailable:     &available,
			IsVerified:      &verified,
			NativeScore:     score,
		})
	}

	i.logger.WithFields(logrus.Fields{
		"query": q.Text,
		"total": results.Total,
		"hits":  len(hits),
	}).Debug("Facet search completed")

	return hits, nil
}

func buildQuery(q Query) blevequery.Query {
	var text blevequery.Query
	if terms := strings.TrimSpace(q.Text); terms == "" {
		text = bleve.NewMatchAllQuery()
	} else {
		text = bleve.NewDisjunctionQuery(
			matchField(terms, "title", 3),
			matchField(terms, "skills", 2),
			matchField(terms, "keywords", 1.5),
			matchField(terms, "description", 1),
		)
	}

	clauses := []blevequery.Query{text}

	if q.AvailableOnly {
		available := bleve.NewBoolFieldQuery(true)
		available.SetField("available")
		clauses = append(clauses, available)
	}
	if len(q.Specializations) > 0 {
		clauses = append(clauses, anyTerm("specializations", q.Specializations))
	}
	if len(q.ExperienceLevels) > 0 {
		clauses = append(clauses, anyTerm("experience_level", q.ExperienceLevels))
	}
	if loc := locationKey(q.Location); loc != "" {
		term := bleve.NewTermQuery(loc)
		term.SetField("location_key")
		clauses = append(clauses, term)
	}

	inclusive := true
	if q.MinRate != nil {
		r := bleve.NewNumericRangeInclusiveQuery(q.MinRate, nil, &inclusive, nil)
		r.SetField("hourly_rate_min")
		clauses = append(clauses, r)
	}
	if q.MaxRate != nil {
		r := bleve.NewNumericRangeInclusiveQuery(nil, q.MaxRate, nil, &inclusive)
		r.SetField("hourly_rate_max")
		clauses = append(clauses, r)
	}

	if len(clauses) == 1 {
		return text
	}
	return bleve.NewConjunctionQuery(clauses...)
}

func matchField(text, field string, boost float64) blevequery.Query {
	q := bleve.NewMatchQuery(text)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func anyTerm(field string, values []string) blevequery.Query {
	terms := make([]blevequery.Query, 0, len(values))
	for _, v := range values {
		t := bleve.NewTermQuery(v)
		t.SetField(field)
		terms = append(terms, t)
	}
	return bleve.NewDisjunctionQuery(terms...)
}

func (i *Index) documentIDs(ctx context.Context) ([]string, error) {
	count, err := i.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count facet documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	results, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list facet documents: %w", err)
	}

	ids := make([]string, 0, len(results.Hits))
	for _, h := range results.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

func (i *Index) Close() error {
	return i.index.Close()
}

func locationKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

func minorToMajor(cents *int) *float64 {
	if cents == nil {
		return nil
	}
	v := float64(*cents) / 100
	return &v
}
