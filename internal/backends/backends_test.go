package backends

import (
	"context"
	"errors"
	"testing"

	"github.com/Ayash-Bera/hirescout/backend/internal/facetindex"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fakeIndex struct {
	hits  []models.RawFacetHit
	err   error
	query facetindex.Query
}

func (f *fakeIndex) Search(_ context.Context, q facetindex.Query) ([]models.RawFacetHit, error) {
	f.query = q
	return f.hits, f.err
}

type fakeEmbedder struct {
	configured bool
	err        error
	text       string
}

func (f *fakeEmbedder) IsConfigured() bool { return f.configured }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeStore struct {
	vectorHits []models.RawSemanticHit
	vectorErr  error
	textHits   []models.RawSemanticHit
	textErr    error

	vectorCalls int
	textCalls   int
	params      vectorstore.RankParams
}

func (f *fakeStore) RankWithEmbedding(_ context.Context, p vectorstore.RankParams, _ []float32) ([]models.RawSemanticHit, error) {
	f.vectorCalls++
	f.params = p
	return f.vectorHits, f.vectorErr
}

func (f *fakeStore) RankByTextOnly(_ context.Context, p vectorstore.RankParams) ([]models.RawSemanticHit, error) {
	f.textCalls++
	f.params = p
	return f.textHits, f.textErr
}

func TestFacetAdapter_TranslatesFilters(t *testing.T) {
	index := &fakeIndex{hits: []models.RawFacetHit{{ObjectID: "A"}}}
	adapter := NewFacetAdapter(index, 50, quietLogger())

	filters := models.SearchFilters{ExtractedFilters: models.ExtractedFilters{
		Specializations:  []models.Specialization{models.SpecFrontendDevelopment},
		ExperienceLevels: []models.ExperienceLevel{models.ExperienceExpert, models.ExperienceIntermediate},
		MinRate:          intPtr(6800),
		MaxRate:          intPtr(9200),
		Location:         strPtr(" San Francisco "),
		AvailableOnly:    boolPtr(true),
	}}

	hits, err := adapter.Search(context.Background(), "React developer", filters)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	q := index.query
	assert.Equal(t, "React developer", q.Text)
	assert.Equal(t, []string{"frontend_development"}, q.Specializations)
	assert.Equal(t, []string{"expert", "intermediate"}, q.ExperienceLevels)
	assert.Equal(t, "San Francisco", q.Location)
	assert.InDelta(t, 68.0, *q.MinRate, 1e-9)
	assert.InDelta(t, 92.0, *q.MaxRate, 1e-9)
	assert.True(t, q.AvailableOnly)
	assert.Equal(t, 50, q.Limit)
}

func TestFacetAdapter_UnconstrainedFilters(t *testing.T) {
	q := BuildFacetQuery("designer", models.SearchFilters{Limit: intPtr(5)}, 50)

	assert.False(t, q.AvailableOnly)
	assert.Nil(t, q.Specializations)
	assert.Nil(t, q.MinRate)
	assert.Nil(t, q.MaxRate)
	assert.Empty(t, q.Location)
	assert.Equal(t, 5, q.Limit)
}

func TestFacetAdapter_ErrorYieldsEmptyHits(t *testing.T) {
	adapter := NewFacetAdapter(&fakeIndex{err: errors.New("index closed")}, 50, quietLogger())

	hits, err := adapter.Search(context.Background(), "designer", models.SearchFilters{})

	assert.Error(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSemanticAdapter_VectorPath(t *testing.T) {
	store := &fakeStore{vectorHits: []models.RawSemanticHit{{ID: "A", SimilarityScore: floatPtr(0.8)}}}
	embedder := &fakeEmbedder{configured: true}
	adapter := NewSemanticAdapter(embedder, store, 0.2, 50, quietLogger())

	result, err := adapter.Search(context.Background(), "payments backend", models.SearchFilters{})

	require.NoError(t, err)
	assert.Equal(t, MethodVectorText, result.Method)
	assert.Len(t, result.Hits, 1)
	assert.Equal(t, "payments backend", embedder.text)
	assert.Equal(t, 0, store.textCalls)
	assert.InDelta(t, 0.2, store.params.Threshold, 1e-9)
}

func TestSemanticAdapter_FallsBackToTextOnly(t *testing.T) {
	tests := []struct {
		name     string
		embedder Embedder
		store    *fakeStore
	}{
		{"not configured", &fakeEmbedder{configured: false}, &fakeStore{}},
		{"embedding fails", &fakeEmbedder{configured: true, err: errors.New("rate limited")}, &fakeStore{}},
		{"vector query fails", &fakeEmbedder{configured: true}, &fakeStore{vectorErr: errors.New("no pgvector")}},
		{"no embedder", nil, &fakeStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.store.textHits = []models.RawSemanticHit{{ID: "T", TextRank: floatPtr(0.4)}}
			adapter := NewSemanticAdapter(tt.embedder, tt.store, 0.2, 50, quietLogger())

			result, err := adapter.Search(context.Background(), "payments backend", models.SearchFilters{})

			require.NoError(t, err)
			assert.Equal(t, MethodTextOnly, result.Method)
			require.Len(t, result.Hits, 1)
			assert.Equal(t, "T", result.Hits[0].ID)
			assert.Equal(t, 1, tt.store.textCalls)
		})
	}
}

func TestSemanticAdapter_BothPathsFail(t *testing.T) {
	store := &fakeStore{textErr: errors.New("connection refused")}
	adapter := NewSemanticAdapter(&fakeEmbedder{}, store, 0.2, 50, quietLogger())

	result, err := adapter.Search(context.Background(), "payments", models.SearchFilters{})

	assert.Error(t, err)
	assert.NotNil(t, result.Hits)
	assert.Empty(t, result.Hits)
}

func TestSemanticAdapter_RankParams(t *testing.T) {
	adapter := NewSemanticAdapter(nil, &fakeStore{}, 0.2, 50, quietLogger())

	p := adapter.BuildRankParams(" golang ", models.SearchFilters{
		ExtractedFilters: models.ExtractedFilters{
			Specializations: []models.Specialization{models.SpecBackendDevelopment},
			MinRate:         intPtr(5000),
			Location:        strPtr("  "),
		},
		SimilarityThreshold: floatPtr(0.5),
		Limit:               intPtr(10),
	})

	assert.Equal(t, "golang", p.Query)
	assert.Equal(t, []string{"backend_development"}, p.Specializations)
	assert.Nil(t, p.ExperienceLevels)
	assert.Equal(t, 5000, *p.MinRate)
	assert.Nil(t, p.MaxRate)
	assert.Nil(t, p.Location)
	assert.False(t, p.AvailableOnly)
	assert.InDelta(t, 0.5, p.Threshold, 1e-9)
	assert.Equal(t, 10, p.Limit)
}
