package app

import (
	"context"
	"testing"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/backends"
	"github.com/Ayash-Bera/hirescout/backend/internal/config"
	"github.com/Ayash-Bera/hirescout/backend/internal/facetindex"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offlineEmbedder struct{}

func (offlineEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, nil }

func (offlineEmbedder) IsConfigured() bool { return false }

type textOnlyStore struct {
	hits []models.RawSemanticHit
}

func (s textOnlyStore) RankWithEmbedding(context.Context, vectorstore.RankParams, []float32) ([]models.RawSemanticHit, error) {
	panic("embedding path must not run without embeddings")
}

func (s textOnlyStore) RankByTextOnly(context.Context, vectorstore.RankParams) ([]models.RawSemanticHit, error) {
	return s.hits, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Search.DefaultLimit = 10
	cfg.Search.SimilarityThreshold = 0.2
	cfg.Search.AdapterTimeout = 2 * time.Second
	cfg.Search.MaxQueryLength = 2000
	return cfg
}

func TestNewSearchService_EndToEndWithoutOpenAI(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	index, err := facetindex.NewMemOnly(logger)
	require.NoError(t, err)
	defer index.Close()

	rateMin, rateMax := 8000, 12000
	require.NoError(t, index.Reindex(context.Background(), []models.Freelancer{{
		ID:              "react-sf",
		Title:           "Senior React Developer",
		Specializations: models.StringArray{"frontend_development", "web_development"},
		Skills:          models.StringArray{"React", "TypeScript"},
		ExperienceLevel: "expert",
		HourlyRateMin:   &rateMin,
		HourlyRateMax:   &rateMax,
		Location:        "San Francisco",
		Rating:          4.9,
		IsAvailable:     true,
	}}))

	rank := 0.4
	store := textOnlyStore{hits: []models.RawSemanticHit{{ID: "react-sf", Title: "Senior React Developer", TextRank: &rank}}}

	svc, err := NewSearchService(testConfig(), index, offlineEmbedder{}, store, logger)
	require.NoError(t, err)

	resp := svc.Search(context.Background(), "Senior React developer in San Francisco", models.SearchFilters{})

	require.True(t, resp.Success, resp.Error)
	require.NotEmpty(t, resp.Candidates)
	assert.Equal(t, "react-sf", resp.Candidates[0].ID)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, models.ExtractionManual, resp.Analysis.ExtractionSource)
	assert.Equal(t, models.BackendOK, resp.Analysis.FacetStatus)
	assert.Equal(t, models.BackendOK, resp.Analysis.SemanticStatus)
	assert.Equal(t, backends.MethodTextOnly, resp.Analysis.SemanticMethod)
}

func TestNewSearchService_KeywordQueryWithExtractedTags(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	index, err := facetindex.NewMemOnly(logger)
	require.NoError(t, err)
	defer index.Close()

	svc, err := NewSearchService(testConfig(), index, offlineEmbedder{}, textOnlyStore{}, logger)
	require.NoError(t, err)

	resp := svc.Search(context.Background(), "React developer", models.SearchFilters{})

	require.True(t, resp.Success, resp.Error)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, "React developer", resp.Analysis.CleanQuery)
	assert.Equal(t,
		[]models.Specialization{models.SpecFrontendDevelopment},
		resp.Analysis.ExtractedFilters.Specializations)
	assert.Equal(t, "hybrid-facet-primary", resp.Analysis.Strategy)
	assert.Equal(t, models.MergeRerank, resp.Analysis.MergeAlgorithm)
	assert.Empty(t, resp.Candidates)
}
