package merge

import (
	"math"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
)

const (
	SourceFacet    = "facet"
	SourceSemantic = "semantic"
	SourceBoth     = "both"
)

// FromFacetHit converts a facet index hit to the canonical profile. The index
// stores rates in major units, profiles carry cents.
func FromFacetHit(hit models.RawFacetHit) models.CandidateProfile {
	return models.CandidateProfile{
		ID:                hit.ObjectID,
		Title:             hit.Title,
		Description:       hit.Description,
		Specializations:   nonNil(hit.Specializations),
		Skills:            nonNil(hit.Skills),
		ExperienceLevel:   hit.ExperienceLevel,
		HourlyRateMin:     majorToMinor(hit.HourlyRateMin),
		HourlyRateMax:     majorToMinor(hit.HourlyRateMax),
		Location:          hit.Location,
		Timezone:          hit.Timezone,
		Languages:         nonNil(hit.Languages),
		Rating:            deref(hit.Rating),
		ReviewsCount:      hit.ReviewsCount,
		ProjectsCompleted: hit.ProjectsDone,
		IsAvailable:       derefBool(hit.IsAvailable),
		IsVerified:        derefBool(hit.IsVerified),
		Source:            SourceFacet,
	}
}

// FromSemanticHit converts a ranking row to the canonical profile.
func FromSemanticHit(hit models.RawSemanticHit) models.CandidateProfile {
	return models.CandidateProfile{
		ID:                       hit.ID,
		Title:                    hit.Title,
		Description:              derefString(hit.Description),
		Specializations:          nonNil(hit.Specializations),
		Skills:                   nonNil(hit.Skills),
		ExperienceLevel:          derefString(hit.ExperienceLevel),
		HourlyRateMin:            hit.HourlyRateMin,
		HourlyRateMax:            hit.HourlyRateMax,
		AvailabilityHoursPerWeek: hit.AvailabilityHoursPerWeek,
		Location:                 derefString(hit.Location),
		Timezone:                 derefString(hit.Timezone),
		Languages:                nonNil(hit.Languages),
		Rating:                   deref(hit.Rating),
		ReviewsCount:             derefInt(hit.ReviewsCount),
		ProjectsCompleted:        derefInt(hit.ProjectsCompleted),
		ResponseTimeHours:        hit.ResponseTimeHours,
		IsAvailable:              derefBool(hit.IsAvailable),
		IsVerified:               derefBool(hit.IsVerified),
		Source:                   SourceSemantic,
	}
}

// SemanticScore is the row's similarity, or its text rank on the text-only
// path, clamped into [0,1].
func SemanticScore(hit models.RawSemanticHit) float64 {
	switch {
	case hit.SimilarityScore != nil:
		return Clamp(*hit.SimilarityScore)
	case hit.TextRank != nil:
		return Clamp(*hit.TextRank)
	}
	return 0
}

// Clamp bounds a score to [0,1]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func majorToMinor(v *float64) *int {
	if v == nil || math.IsNaN(*v) || *v < 0 {
		return nil
	}
	cents := int(math.Round(*v * 100))
	return &cents
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefBool(v *bool) bool {
	return v != nil && *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
