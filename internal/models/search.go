package models

import (
	"fmt"
	"strings"
)

// Specialization is one of the fixed freelancer domain tags.
type Specialization string

const (
	SpecWebDevelopment       Specialization = "web_development"
	SpecMobileDevelopment    Specialization = "mobile_development"
	SpecUIUXDesign           Specialization = "ui_ux_design"
	SpecDataScience          Specialization = "data_science"
	SpecMachineLearning      Specialization = "machine_learning"
	SpecDevOps               Specialization = "devops"
	SpecBackendDevelopment   Specialization = "backend_development"
	SpecFrontendDevelopment  Specialization = "frontend_development"
	SpecFullstackDevelopment Specialization = "fullstack_development"
	SpecBlockchain           Specialization = "blockchain"
	SpecCybersecurity        Specialization = "cybersecurity"
	SpecGameDevelopment      Specialization = "game_development"
	SpecDigitalMarketing     Specialization = "digital_marketing"
	SpecContentWriting       Specialization = "content_writing"
	SpecGraphicDesign        Specialization = "graphic_design"
	SpecVideoEditing         Specialization = "video_editing"
	SpecPhotography          Specialization = "photography"
	SpecTranslation          Specialization = "translation"
	SpecConsulting           Specialization = "consulting"
	SpecProjectManagement    Specialization = "project_management"
)

// AllSpecializations lists every valid tag in declaration order.
var AllSpecializations = []Specialization{
	SpecWebDevelopment, SpecMobileDevelopment, SpecUIUXDesign, SpecDataScience,
	SpecMachineLearning, SpecDevOps, SpecBackendDevelopment, SpecFrontendDevelopment,
	SpecFullstackDevelopment, SpecBlockchain, SpecCybersecurity, SpecGameDevelopment,
	SpecDigitalMarketing, SpecContentWriting, SpecGraphicDesign, SpecVideoEditing,
	SpecPhotography, SpecTranslation, SpecConsulting, SpecProjectManagement,
}

func (s Specialization) IsValid() bool {
	for _, known := range AllSpecializations {
		if s == known {
			return true
		}
	}
	return false
}

// ExperienceLevel is a seniority tier.
type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "entry"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

var AllExperienceLevels = []ExperienceLevel{ExperienceEntry, ExperienceIntermediate, ExperienceExpert}

func (e ExperienceLevel) IsValid() bool {
	return e == ExperienceEntry || e == ExperienceIntermediate || e == ExperienceExpert
}

// ExtractedFilters holds the structured constraints recovered from a query.
// A nil field means "absent", which the backends read as unconstrained.
// Rates are in minor currency units (cents).
type ExtractedFilters struct {
	Specializations          []Specialization  `json:"specializations,omitempty"`
	ExperienceLevels         []ExperienceLevel `json:"experience_levels,omitempty"`
	MinRate                  *int              `json:"min_rate,omitempty"`
	MaxRate                  *int              `json:"max_rate,omitempty"`
	Location                 *string           `json:"location,omitempty"`
	Skills                   []string          `json:"skills,omitempty"`
	AvailabilityHoursPerWeek *int              `json:"availability_hours_per_week,omitempty"`
	AvailableOnly            *bool             `json:"available_only,omitempty"`
}

// NonEmptyFieldCount counts the fields that carry a usable value.
func (f ExtractedFilters) NonEmptyFieldCount() int {
	count := 0
	if len(f.Specializations) > 0 {
		count++
	}
	if len(f.ExperienceLevels) > 0 {
		count++
	}
	if f.MinRate != nil {
		count++
	}
	if f.MaxRate != nil {
		count++
	}
	if f.Location != nil && *f.Location != "" {
		count++
	}
	if len(f.Skills) > 0 {
		count++
	}
	if f.AvailabilityHoursPerWeek != nil {
		count++
	}
	if f.AvailableOnly != nil {
		count++
	}
	return count
}

// IsEmpty reports whether no constraint was recovered.
func (f ExtractedFilters) IsEmpty() bool {
	return f.NonEmptyFieldCount() == 0
}

// HasStrictFilters is true when the filters narrow the candidate pool on
// structured attributes (tags, tiers, location or a positive rate bound).
func (f ExtractedFilters) HasStrictFilters() bool {
	if len(f.Specializations) > 0 || len(f.ExperienceLevels) > 0 {
		return true
	}
	if f.Location != nil && strings.TrimSpace(*f.Location) != "" {
		return true
	}
	if f.MinRate != nil && *f.MinRate > 0 {
		return true
	}
	return f.MaxRate != nil && *f.MaxRate > 0
}

// SearchFilters are caller supplied constraints plus the semantic tuning knobs.
type SearchFilters struct {
	ExtractedFilters
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	Limit               *int     `json:"limit,omitempty"`
}

const MaxSearchLimit = 100

// Validate rejects caller filters the backends cannot honour.
func (f SearchFilters) Validate() error {
	for _, s := range f.Specializations {
		if !s.IsValid() {
			return fmt.Errorf("unknown specialization: %s", s)
		}
	}
	for _, e := range f.ExperienceLevels {
		if !e.IsValid() {
			return fmt.Errorf("unknown experience level: %s", e)
		}
	}
	if f.MinRate != nil && *f.MinRate < 0 {
		return fmt.Errorf("min_rate cannot be negative")
	}
	if f.MaxRate != nil && *f.MaxRate < 0 {
		return fmt.Errorf("max_rate cannot be negative")
	}
	if f.MinRate != nil && f.MaxRate != nil && *f.MinRate > *f.MaxRate {
		return fmt.Errorf("min_rate %d exceeds max_rate %d", *f.MinRate, *f.MaxRate)
	}
	if f.SimilarityThreshold != nil && (*f.SimilarityThreshold < 0 || *f.SimilarityThreshold > 1) {
		return fmt.Errorf("similarity_threshold must be within [0,1]")
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > MaxSearchLimit) {
		return fmt.Errorf("limit must be between 1 and %d", MaxSearchLimit)
	}
	return nil
}

// MergeFilters overlays caller filters on extracted ones field by field.
// A caller field that is set always wins.
func MergeFilters(extracted ExtractedFilters, caller SearchFilters) SearchFilters {
	merged := SearchFilters{
		ExtractedFilters:    extracted,
		SimilarityThreshold: caller.SimilarityThreshold,
		Limit:               caller.Limit,
	}
	if caller.Specializations != nil {
		merged.Specializations = caller.Specializations
	}
	if caller.ExperienceLevels != nil {
		merged.ExperienceLevels = caller.ExperienceLevels
	}
	if caller.MinRate != nil {
		merged.MinRate = caller.MinRate
	}
	if caller.MaxRate != nil {
		merged.MaxRate = caller.MaxRate
	}
	if caller.Location != nil {
		merged.Location = caller.Location
	}
	if caller.Skills != nil {
		merged.Skills = caller.Skills
	}
	if caller.AvailabilityHoursPerWeek != nil {
		merged.AvailabilityHoursPerWeek = caller.AvailabilityHoursPerWeek
	}
	if caller.AvailableOnly != nil {
		merged.AvailableOnly = caller.AvailableOnly
	}
	return merged
}

// ExtractionSource names the extractor that produced a result.
type ExtractionSource string

const (
	ExtractionAI     ExtractionSource = "ai"
	ExtractionManual ExtractionSource = "manual"
)

// ExtractionResult is the output of the filter extraction stage.
type ExtractionResult struct {
	Filters    ExtractedFilters `json:"filters"`
	CleanQuery string           `json:"clean_query"`
	Confidence float64          `json:"confidence"`
	Source     ExtractionSource `json:"source"`
}

type Backend string

const (
	BackendFacet    Backend = "facet"
	BackendSemantic Backend = "semantic"
)

type MergeAlgorithm string

const (
	MergeUnion        MergeAlgorithm = "union"
	MergeIntersection MergeAlgorithm = "intersection"
	MergeRerank       MergeAlgorithm = "rerank"
)

// SearchStrategy is the per-request execution plan.
type SearchStrategy struct {
	UseFacet         bool           `json:"use_facet"`
	UseSemantic      bool           `json:"use_semantic"`
	PrimarySource    Backend        `json:"primary_source"`
	MergeAlgorithm   MergeAlgorithm `json:"merge_algorithm"`
	EffectiveFilters SearchFilters  `json:"effective_filters"`
}

// Label renders the strategy the way it is reported in the analysis block.
func (s SearchStrategy) Label() string {
	switch {
	case s.UseFacet && s.UseSemantic:
		return fmt.Sprintf("hybrid-%s-primary", s.PrimarySource)
	case s.UseFacet:
		return "facet-only"
	default:
		return "semantic-only"
	}
}

// RawFacetHit is a facet index hit before normalization. Rates are in major
// units, as stored by the index. NativeScore is the index relevance scaled to [0,1].
type RawFacetHit struct {
	ObjectID        string
	Title           string
	Description     string
	Specializations []string
	Skills          []string
	ExperienceLevel string
	HourlyRateMin   *float64
	HourlyRateMax   *float64
	Location        string
	Timezone        string
	Languages       []string
	Rating          *float64
	ReviewsCount    int
	ProjectsDone    int
	IsAvailable     *bool
	IsVerified      *bool
	NativeScore     float64
}

// RawSemanticHit is a row from the ranking functions. Rates are in minor units.
// Exactly one of SimilarityScore and TextRank is set.
type RawSemanticHit struct {
	ID                       string
	Title                    string
	Description              *string
	Specializations          []string
	Skills                   []string
	ExperienceLevel          *string
	HourlyRateMin            *int
	HourlyRateMax            *int
	AvailabilityHoursPerWeek *int
	Location                 *string
	Timezone                 *string
	Languages                []string
	Rating                   *float64
	ReviewsCount             *int
	ProjectsCompleted        *int
	ResponseTimeHours        *int
	IsAvailable              *bool
	IsVerified               *bool
	SimilarityScore          *float64
	TextRank                 *float64
}

// CandidateProfile is the canonical record returned to callers.
type CandidateProfile struct {
	ID                       string   `json:"id"`
	Title                    string   `json:"title"`
	Description              string   `json:"description"`
	Specializations          []string `json:"specializations"`
	Skills                   []string `json:"skills"`
	ExperienceLevel          string   `json:"experience_level,omitempty"`
	HourlyRateMin            *int     `json:"hourly_rate_min,omitempty"`
	HourlyRateMax            *int     `json:"hourly_rate_max,omitempty"`
	AvailabilityHoursPerWeek *int     `json:"availability_hours_per_week,omitempty"`
	Location                 string   `json:"location,omitempty"`
	Timezone                 string   `json:"timezone,omitempty"`
	Languages                []string `json:"languages"`
	Rating                   float64  `json:"rating"`
	ReviewsCount             int      `json:"reviews_count"`
	ProjectsCompleted        int      `json:"projects_completed"`
	ResponseTimeHours        *int     `json:"response_time_hours,omitempty"`
	IsAvailable              bool     `json:"is_available"`
	IsVerified               bool     `json:"is_verified"`
	RelevanceScore           float64  `json:"relevance_score"`
	Source                   string   `json:"source"`
}

type BackendStatus string

const (
	BackendOK      BackendStatus = "ok"
	BackendFailed  BackendStatus = "failed"
	BackendSkipped BackendStatus = "skipped"
)

// SearchAnalysis carries the diagnostics of one orchestrated search.
type SearchAnalysis struct {
	OriginalQuery        string           `json:"original_query"`
	CleanQuery           string           `json:"clean_query"`
	ExtractionSource     ExtractionSource `json:"extraction_source"`
	ExtractionConfidence float64          `json:"extraction_confidence"`
	ExtractedFilters     ExtractedFilters `json:"extracted_filters"`
	EffectiveFilters     SearchFilters    `json:"effective_filters"`
	Strategy             string           `json:"strategy"`
	MergeAlgorithm       MergeAlgorithm   `json:"merge_algorithm"`
	FacetResults         int              `json:"facet_results"`
	FacetStatus          BackendStatus    `json:"facet_status"`
	SemanticResults      int              `json:"semantic_results"`
	SemanticStatus       BackendStatus    `json:"semantic_status"`
	SemanticMethod       string           `json:"semantic_method,omitempty"`
	MergedResults        int              `json:"merged_results"`
	ProcessingTimeMs     int64            `json:"processing_time_ms"`
}

// SearchResponse is the orchestrator's output. It is produced even when
// every backend fails; Success is false only for validation or unexpected errors.
type SearchResponse struct {
	Success    bool               `json:"success"`
	Candidates []CandidateProfile `json:"candidates"`
	Analysis   *SearchAnalysis    `json:"analysis,omitempty"`
	Error      string             `json:"error,omitempty"`
}
