package extraction

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
)

const manualConfidence = 0.5

// ManualExtractor recovers filters with keyword tables. It performs no I/O and
// never fails.
type ManualExtractor struct{}

func NewManualExtractor() *ManualExtractor {
	return &ManualExtractor{}
}

func (m *ManualExtractor) Name() models.ExtractionSource {
	return models.ExtractionManual
}

func (m *ManualExtractor) Extract(_ context.Context, query string) (models.ExtractionResult, error) {
	return m.Parse(query), nil
}

// Parse extracts seniority, rate band, location and specializations. Filter
// phrases are stripped from the cleaned query while role and skill terms are
// kept, so parsing the cleaned query again yields a subset of the filters.
func (m *ManualExtractor) Parse(query string) models.ExtractionResult {
	var filters models.ExtractedFilters
	working := query

	for _, r := range seniorityRules {
		if filters.ExperienceLevels == nil && r.pattern.MatchString(working) {
			filters.ExperienceLevels = []models.ExperienceLevel{r.level}
		}
	}
	for _, r := range seniorityRules {
		working = r.pattern.ReplaceAllString(working, " ")
	}

	if match := ratePattern.FindStringSubmatch(working); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil && value > 0 {
			minRate, maxRate := rateBand(value)
			filters.MinRate = &minRate
			filters.MaxRate = &maxRate
			working = ratePattern.ReplaceAllString(working, " ")
			for _, p := range rateFillerPatterns {
				working = p.ReplaceAllString(working, " ")
			}
		}
	}

	// Remote wins over a named place, but the place phrase is still stripped
	// so the cleaned query carries no location.
	remote := remotePattern.MatchString(working)
	if remote {
		location := "Remote"
		filters.Location = &location
		working = remotePattern.ReplaceAllString(working, " ")
	}
	if place, span := findPlace(working); place != "" {
		if !remote {
			filters.Location = &place
		}
		working = strings.Replace(working, span, " ", 1)
	}

	filters.Specializations = matchSpecializations(working)

	clean := tidy(working)
	if clean == "" {
		clean = tidy(query)
	}

	confidence := 0.0
	if !filters.IsEmpty() {
		confidence = manualConfidence
	}

	return models.ExtractionResult{
		Filters:    filters,
		CleanQuery: clean,
		Confidence: confidence,
		Source:     models.ExtractionManual,
	}
}

// rateBand widens a single rate into a band of ±max(5, 15%) in cents.
func rateBand(rate float64) (int, int) {
	cents := math.Round(rate * 100)
	tolerance := math.Max(minRateTolerance*100, cents*relativeRatePercent/100)
	minRate := int(math.Floor(cents - tolerance))
	if minRate < 0 {
		minRate = 0
	}
	maxRate := int(math.Ceil(cents + tolerance))
	return minRate, maxRate
}

// findPlace returns the first "in <Capitalized Words>" phrase that is not a
// technology or role, along with the matched span.
func findPlace(text string) (string, string) {
	for _, idx := range placePattern.FindAllStringSubmatchIndex(text, -1) {
		span := text[idx[0]:idx[1]]
		candidate := strings.TrimRight(text[idx[2]:idx[3]], ".")
		if isPlaceName(candidate) {
			return candidate, span
		}
	}
	return "", ""
}

func isPlaceName(candidate string) bool {
	if candidate == "" {
		return false
	}
	for _, word := range strings.Fields(strings.ToLower(candidate)) {
		if nonPlaceTerms[strings.TrimRight(word, ".")] {
			return false
		}
	}
	for _, group := range specializationGroups {
		for _, r := range group.specific {
			if r.pattern.MatchString(candidate) {
				return false
			}
		}
		if group.generic != nil && group.generic.pattern.MatchString(candidate) {
			return false
		}
	}
	return true
}

func matchSpecializations(text string) []models.Specialization {
	var tags []models.Specialization
	seen := make(map[models.Specialization]bool)
	add := func(list []models.Specialization) {
		for _, tag := range list {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	matchedSpecific := false
	for _, group := range specializationGroups {
		for _, r := range group.specific {
			if r.pattern.MatchString(text) {
				add(r.tags)
				matchedSpecific = true
				break
			}
		}
	}

	if !matchedSpecific {
		for _, group := range specializationGroups {
			if group.generic != nil && group.generic.pattern.MatchString(text) {
				add(group.generic.tags)
			}
		}
	}

	return tags
}

// tidy collapses whitespace and trims dangling punctuation and prepositions.
func tidy(s string) string {
	s = multiSpace.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(s)
	for {
		trimmed := danglingPunctuation.ReplaceAllString(s, "")
		trimmed = strings.TrimSpace(trailingPreposition.ReplaceAllString(trimmed, ""))
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
