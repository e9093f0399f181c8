package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestMergeFilters_CallerWinsFieldByField(t *testing.T) {
	extracted := ExtractedFilters{
		Specializations:  []Specialization{SpecFrontendDevelopment},
		ExperienceLevels: []ExperienceLevel{ExperienceExpert},
		MinRate:          intPtr(6800),
		MaxRate:          intPtr(9200),
		Location:         strPtr("San Francisco"),
	}
	caller := SearchFilters{
		ExtractedFilters: ExtractedFilters{
			MaxRate:       intPtr(12000),
			Location:      strPtr("Remote"),
			AvailableOnly: boolPtr(true),
		},
		Limit: intPtr(10),
	}

	merged := MergeFilters(extracted, caller)

	assert.Equal(t, []Specialization{SpecFrontendDevelopment}, merged.Specializations)
	assert.Equal(t, []ExperienceLevel{ExperienceExpert}, merged.ExperienceLevels)
	assert.Equal(t, 6800, *merged.MinRate)
	assert.Equal(t, 12000, *merged.MaxRate)
	assert.Equal(t, "Remote", *merged.Location)
	assert.True(t, *merged.AvailableOnly)
	assert.Equal(t, 10, *merged.Limit)
	assert.Nil(t, merged.SimilarityThreshold)
}

func TestMergeFilters_ExplicitEmptyCallerSliceClearsExtracted(t *testing.T) {
	extracted := ExtractedFilters{Specializations: []Specialization{SpecDevOps}}
	caller := SearchFilters{ExtractedFilters: ExtractedFilters{Specializations: []Specialization{}}}

	merged := MergeFilters(extracted, caller)
	assert.Empty(t, merged.Specializations)
	assert.False(t, merged.HasStrictFilters())
}

func TestHasStrictFilters(t *testing.T) {
	assert.False(t, ExtractedFilters{}.HasStrictFilters())
	assert.False(t, ExtractedFilters{Skills: []string{"React"}}.HasStrictFilters())
	assert.False(t, ExtractedFilters{MinRate: intPtr(0)}.HasStrictFilters())
	assert.False(t, ExtractedFilters{Location: strPtr("  ")}.HasStrictFilters())
	assert.True(t, ExtractedFilters{MinRate: intPtr(100)}.HasStrictFilters())
	assert.True(t, ExtractedFilters{Location: strPtr("Remote")}.HasStrictFilters())
	assert.True(t, ExtractedFilters{ExperienceLevels: []ExperienceLevel{ExperienceEntry}}.HasStrictFilters())
}

func TestSearchFilters_Validate(t *testing.T) {
	require.NoError(t, SearchFilters{}.Validate())

	bad := []SearchFilters{
		{ExtractedFilters: ExtractedFilters{Specializations: []Specialization{"astrology"}}},
		{ExtractedFilters: ExtractedFilters{ExperienceLevels: []ExperienceLevel{"guru"}}},
		{ExtractedFilters: ExtractedFilters{MinRate: intPtr(9000), MaxRate: intPtr(100)}},
		{ExtractedFilters: ExtractedFilters{MinRate: intPtr(-1)}},
		{SimilarityThreshold: floatPtr(1.5)},
		{Limit: intPtr(0)},
		{Limit: intPtr(MaxSearchLimit + 1)},
	}
	for _, f := range bad {
		assert.Error(t, f.Validate())
	}
}

func TestStrategyLabel(t *testing.T) {
	assert.Equal(t, "hybrid-facet-primary", SearchStrategy{UseFacet: true, UseSemantic: true, PrimarySource: BackendFacet}.Label())
	assert.Equal(t, "facet-only", SearchStrategy{UseFacet: true, PrimarySource: BackendFacet}.Label())
	assert.Equal(t, "semantic-only", SearchStrategy{UseSemantic: true, PrimarySource: BackendSemantic}.Label())
}

func TestStringArray_RoundTrip(t *testing.T) {
	original := StringArray{"React", "Node.js", `say "hi"`, "a,b"}
	value, err := original.Value()
	require.NoError(t, err)

	var scanned StringArray
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)

	require.NoError(t, scanned.Scan([]byte("{}")))
	assert.Empty(t, scanned)

	require.NoError(t, scanned.Scan("{go,rust}"))
	assert.Equal(t, StringArray{"go", "rust"}, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestFreelancerValidate(t *testing.T) {
	f := &Freelancer{ID: "a", Title: "Go engineer", ExperienceLevel: "expert", Rating: 4.5}
	require.NoError(t, f.Validate())

	f.Specializations = StringArray{"backend_development", "knitting"}
	assert.Error(t, f.Validate())

	f.Specializations = nil
	f.HourlyRateMin, f.HourlyRateMax = intPtr(9000), intPtr(5000)
	assert.Error(t, f.Validate())
}
