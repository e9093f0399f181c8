package models

// GORM models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	quoted := make([]string, len(s))
	for i, item := range s {
		item = strings.ReplaceAll(item, `\`, `\\`)
		item = strings.ReplaceAll(item, `"`, `\"`)
		quoted[i] = `"` + item + `"`
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = parseArrayLiteral(v)
	case []byte:
		return s.Scan(string(v))
	case []string:
		*s = StringArray(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// parseArrayLiteral reads a one dimensional postgres text[] literal.
func parseArrayLiteral(v string) StringArray {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "{")
	v = strings.TrimSuffix(v, "}")
	if v == "" {
		return StringArray{}
	}

	var (
		items   StringArray
		current strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range v {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			items = append(items, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(items, current.String())
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Freelancer is a searchable profile. Rates are stored in cents.
// The embedding and full text columns are added by the SQL migrations.
type Freelancer struct {
	ID                       string      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID                   *string     `json:"user_id" gorm:"type:uuid"`
	Title                    string      `json:"title" gorm:"not null"`
	Description              string      `json:"description"`
	Specializations          StringArray `json:"specializations" gorm:"type:text[]"`
	Skills                   StringArray `json:"skills" gorm:"type:text[]"`
	ExperienceLevel          string      `json:"experience_level" gorm:"not null;check:experience_level IN ('entry','intermediate','expert')"`
	HourlyRateMin            *int        `json:"hourly_rate_min"`
	HourlyRateMax            *int        `json:"hourly_rate_max"`
	AvailabilityHoursPerWeek *int        `json:"availability_hours_per_week"`
	PortfolioURL             string      `json:"portfolio_url"`
	GithubURL                string      `json:"github_url"`
	LinkedinURL              string      `json:"linkedin_url"`
	Location                 string      `json:"location"`
	Timezone                 string      `json:"timezone"`
	Languages                StringArray `json:"languages" gorm:"type:text[]"`
	Rating                   float64     `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewsCount             int         `json:"reviews_count" gorm:"default:0"`
	ProjectsCompleted        int         `json:"projects_completed" gorm:"default:0"`
	ResponseTimeHours        *int        `json:"response_time_hours"`
	IsAvailable              bool        `json:"is_available" gorm:"not null"`
	IsVerified               bool        `json:"is_verified" gorm:"not null"`
	CreatedAt                time.Time   `json:"created_at"`
	UpdatedAt                time.Time   `json:"updated_at"`
}

// SearchQuery represents search analytics
type SearchQuery struct {
	BaseModel
	QueryText        string    `json:"query_text" gorm:"not null"`
	CleanQuery       string    `json:"clean_query"`
	UserSession      string    `json:"user_session"`
	ResultsCount     int       `json:"results_count" gorm:"default:0"`
	Strategy         string    `json:"strategy"`
	ExtractionSource string    `json:"extraction_source"`
	ClickedResultID  *string   `json:"clicked_result_id"`
	SearchTimestamp  time.Time `json:"search_timestamp" gorm:"default:NOW()"`
	ResponseTimeMs   int       `json:"response_time_ms"`
	UserAgent        string    `json:"user_agent"`
	IPAddress        string    `json:"ip_address" gorm:"type:inet"`

	// Associations
	Feedback []UserFeedback `json:"feedback" gorm:"foreignKey:QueryID"`
}

// UserFeedback represents user feedback on search results
type UserFeedback struct {
	BaseModel
	QueryID      uint   `json:"query_id" gorm:"not null"`
	CandidateID  string `json:"candidate_id"`
	FeedbackType string `json:"feedback_type" gorm:"not null;check:feedback_type IN ('helpful','not_helpful','partially_helpful')"`
	FeedbackText string `json:"feedback_text"`
	UserSession  string `json:"user_session"`
}

// PopularQuery represents frequently searched terms
type PopularQuery struct {
	BaseModel
	QueryText         string    `json:"query_text" gorm:"unique;not null"`
	SearchCount       int       `json:"search_count" gorm:"default:1"`
	AvgResultsCount   float64   `json:"avg_results_count" gorm:"type:decimal(5,2);default:0"`
	AvgResponseTimeMs int       `json:"avg_response_time_ms" gorm:"default:0"`
	LastSearched      time.Time `json:"last_searched" gorm:"default:NOW()"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

var ErrSearchQueryNotFound = errors.New("search query not found")

// Database interfaces for repository pattern
type FreelancerRepository interface {
	Upsert(freelancer *Freelancer) error
	UpdateEmbedding(id string, embedding []float32) error
	GetAll() ([]Freelancer, error)
	Count() (int64, error)
}

type SearchQueryRepository interface {
	Create(query *SearchQuery) error
	GetByID(id uint) (*SearchQuery, error)
	GetRecentSearches(limit int) ([]SearchQuery, error)
	UpdateClickedResult(id uint, resultID string) error
}

type UserFeedbackRepository interface {
	Create(feedback *UserFeedback) error
}

type PopularQueryRepository interface {
	IncrementCount(queryText string) error
	GetTop(limit int) ([]PopularQuery, error)
	UpdateStats(queryText string, resultsCount float64, responseTime int) error
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
}

// TableName methods for custom table names
func (Freelancer) TableName() string   { return "freelancers" }
func (SearchQuery) TableName() string  { return "search_queries" }
func (UserFeedback) TableName() string { return "user_feedback" }
func (PopularQuery) TableName() string { return "popular_queries" }
func (SystemHealth) TableName() string { return "system_health" }

// Model validation methods
func (f *Freelancer) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("freelancer id is required")
	}
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("freelancer title is required")
	}
	if !ExperienceLevel(f.ExperienceLevel).IsValid() {
		return fmt.Errorf("invalid experience level: %s", f.ExperienceLevel)
	}
	for _, s := range f.Specializations {
		if !Specialization(s).IsValid() {
			return fmt.Errorf("invalid specialization: %s", s)
		}
	}
	if f.HourlyRateMin != nil && f.HourlyRateMax != nil && *f.HourlyRateMin > *f.HourlyRateMax {
		return fmt.Errorf("hourly_rate_min exceeds hourly_rate_max")
	}
	if f.Rating < 0 || f.Rating > 5 {
		return fmt.Errorf("rating must be within [0,5]")
	}
	return nil
}

func (sq *SearchQuery) Validate() error {
	if sq.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if sq.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

func (uf *UserFeedback) Validate() error {
	if uf.QueryID == 0 {
		return fmt.Errorf("query ID is required")
	}
	if !IsValidFeedbackType(uf.FeedbackType) {
		return fmt.Errorf("invalid feedback type: %s", uf.FeedbackType)
	}
	return nil
}

func IsValidFeedbackType(feedbackType string) bool {
	switch feedbackType {
	case "helpful", "not_helpful", "partially_helpful":
		return true
	}
	return false
}

// GORM hooks
func (f *Freelancer) BeforeSave(tx *gorm.DB) error {
	return f.Validate()
}

func (sq *SearchQuery) BeforeCreate(tx *gorm.DB) error {
	return sq.Validate()
}

func (uf *UserFeedback) BeforeCreate(tx *gorm.DB) error {
	return uf.Validate()
}
