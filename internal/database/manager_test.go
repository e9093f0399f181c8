package database

import (
	"strings"
	"testing"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSearchCacheKey(t *testing.T) {
	limit := 10
	withLimit := models.SearchFilters{Limit: &limit}

	key := SearchCacheKey("React  Developer", models.SearchFilters{})

	assert.True(t, strings.HasPrefix(key, "search:results:"))
	assert.Equal(t, key, SearchCacheKey("react developer", models.SearchFilters{}))
	assert.NotEqual(t, key, SearchCacheKey("react developer", withLimit))
	assert.NotEqual(t, key, SearchCacheKey("vue developer", models.SearchFilters{}))
}

func TestPingRedis_Disabled(t *testing.T) {
	m := &Manager{}
	assert.ErrorIs(t, m.PingRedis(), ErrRedisDisabled)
}
