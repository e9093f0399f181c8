//go:build integration

package vectorstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ayash-Bera/hirescout/backend/internal/database"
	"github.com/Ayash-Bera/hirescout/backend/internal/migration"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/repository"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dimensions = 1536

func unitVector(axis int) []float32 {
	v := make([]float32, dimensions)
	v[axis] = 1
	return v
}

func intPtr(v int) *int { return &v }

// Requires TEST_DATABASE_URL pointing at a disposable Postgres with pgvector.
func setupStore(t *testing.T) (*vectorstore.Store, models.FreelancerRepository) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	manager, err := database.NewManager(&database.Config{DatabaseURL: url, RedisOptional: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	runner := migration.NewRunner(manager, logger)
	require.NoError(t, runner.RunMigrations(filepath.Join("..", "..", "migrations")))
	require.NoError(t, manager.ExecSQL(`TRUNCATE freelancers CASCADE`))

	store, err := vectorstore.New(context.Background(), url, logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store, repository.NewFreelancerRepository(manager.DB)
}

func seedProfile(t *testing.T, repo models.FreelancerRepository, f models.Freelancer, axis int) string {
	t.Helper()
	f.ID = uuid.NewString()
	require.NoError(t, repo.Upsert(&f))
	require.NoError(t, repo.UpdateEmbedding(f.ID, unitVector(axis)))
	return f.ID
}

func TestStore_RankWithEmbedding(t *testing.T) {
	store, repo := setupStore(t)
	ctx := context.Background()

	goID := seedProfile(t, repo, models.Freelancer{
		Title:           "Senior Go Engineer",
		Description:     "Distributed systems in Go",
		Specializations: models.StringArray{"backend_development"},
		Skills:          models.StringArray{"Go", "PostgreSQL"},
		ExperienceLevel: "expert",
		HourlyRateMin:   intPtr(9000),
		HourlyRateMax:   intPtr(12000),
		Location:        "Berlin",
		IsAvailable:     true,
	}, 0)
	seedProfile(t, repo, models.Freelancer{
		Title:           "Brand Designer",
		Description:     "Logos and identity",
		Specializations: models.StringArray{"graphic_design"},
		Skills:          models.StringArray{"Figma"},
		ExperienceLevel: "intermediate",
		HourlyRateMin:   intPtr(4000),
		HourlyRateMax:   intPtr(6000),
		Location:        "Lisbon",
		IsAvailable:     true,
	}, 1)

	hits, err := store.RankWithEmbedding(ctx, vectorstore.RankParams{
		Query:     "go engineer",
		Threshold: 0.5,
		Limit:     10,
	}, unitVector(0))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, goID, hits[0].ID)
	require.NotNil(t, hits[0].SimilarityScore)
	assert.InDelta(t, 1.0, *hits[0].SimilarityScore, 0.0001)

	hits, err = store.RankWithEmbedding(ctx, vectorstore.RankParams{
		Query:           "go engineer",
		Specializations: []string{"graphic_design"},
		Limit:           10,
	}, unitVector(0))
	require.NoError(t, err)
	for _, h := range hits {
		assert.Contains(t, h.Specializations, "graphic_design")
	}
}

func TestStore_RankByTextOnly(t *testing.T) {
	store, repo := setupStore(t)
	ctx := context.Background()

	goID := seedProfile(t, repo, models.Freelancer{
		Title:           "Backend Go Developer",
		Description:     "APIs and services",
		Specializations: models.StringArray{"backend_development"},
		Skills:          models.StringArray{"Go"},
		ExperienceLevel: "expert",
		Location:        "Remote",
		IsAvailable:     true,
	}, 2)

	hits, err := store.RankByTextOnly(ctx, vectorstore.RankParams{Query: "backend developer", Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, goID, hits[0].ID)
	assert.Nil(t, hits[0].SimilarityScore)
	require.NotNil(t, hits[0].TextRank)
	assert.Greater(t, *hits[0].TextRank, 0.0)

	hits, err = store.RankByTextOnly(ctx, vectorstore.RankParams{
		Query:            "backend developer",
		ExperienceLevels: []string{"entry"},
		Limit:            5,
	})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
