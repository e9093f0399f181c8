package repository

import (
	"errors"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FreelancerRepositoryImpl implements FreelancerRepository
type FreelancerRepositoryImpl struct {
	db *gorm.DB
}

func NewFreelancerRepository(db *gorm.DB) models.FreelancerRepository {
	return &FreelancerRepositoryImpl{db: db}
}

// Upsert inserts the profile or overwrites every column of an existing one.
func (r *FreelancerRepositoryImpl) Upsert(freelancer *models.Freelancer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(freelancer).Error
}

func (r *FreelancerRepositoryImpl) UpdateEmbedding(id string, embedding []float32) error {
	return r.db.Exec(
		`UPDATE freelancers SET embedding = ?::vector, updated_at = NOW() WHERE id = ?`,
		vectorstore.FormatVector(embedding), id,
	).Error
}

func (r *FreelancerRepositoryImpl) GetAll() ([]models.Freelancer, error) {
	var freelancers []models.Freelancer
	// QueryFields keeps the embedding column out of the select list.
	err := r.db.Session(&gorm.Session{QueryFields: true}).
		Order("created_at").
		Find(&freelancers).Error
	return freelancers, err
}

func (r *FreelancerRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Freelancer{}).Count(&count).Error
	return count, err
}

// SearchQueryRepositoryImpl implements SearchQueryRepository
type SearchQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchQueryRepository(db *gorm.DB) models.SearchQueryRepository {
	return &SearchQueryRepositoryImpl{db: db}
}

func (r *SearchQueryRepositoryImpl) Create(query *models.SearchQuery) error {
	return r.db.Create(query).Error
}

func (r *SearchQueryRepositoryImpl) GetByID(id uint) (*models.SearchQuery, error) {
	var query models.SearchQuery
	err := r.db.First(&query, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrSearchQueryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &query, nil
}

// GetRecentSearches returns the newest searches first.
func (r *SearchQueryRepositoryImpl) GetRecentSearches(limit int) ([]models.SearchQuery, error) {
	var queries []models.SearchQuery
	err := r.db.Order("search_timestamp DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

func (r *SearchQueryRepositoryImpl) UpdateClickedResult(id uint, resultID string) error {
	return r.db.Model(&models.SearchQuery{}).
		Where("id = ?", id).
		Update("clicked_result_id", resultID).Error
}

// UserFeedbackRepositoryImpl implements UserFeedbackRepository
type UserFeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewUserFeedbackRepository(db *gorm.DB) models.UserFeedbackRepository {
	return &UserFeedbackRepositoryImpl{db: db}
}

func (r *UserFeedbackRepositoryImpl) Create(feedback *models.UserFeedback) error {
	return r.db.Create(feedback).Error
}

// PopularQueryRepositoryImpl implements PopularQueryRepository
type PopularQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularQueryRepository(db *gorm.DB) models.PopularQueryRepository {
	return &PopularQueryRepositoryImpl{db: db}
}

func (r *PopularQueryRepositoryImpl) IncrementCount(queryText string) error {
	return r.db.Exec(`
		INSERT INTO popular_queries (query_text, search_count, last_searched, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW(), NOW())
		ON CONFLICT (query_text)
		DO UPDATE SET
			search_count = popular_queries.search_count + 1,
			last_searched = NOW(),
			updated_at = NOW()
	`, queryText).Error
}

func (r *PopularQueryRepositoryImpl) GetTop(limit int) ([]models.PopularQuery, error) {
	var queries []models.PopularQuery
	err := r.db.Order("search_count DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

func (r *PopularQueryRepositoryImpl) UpdateStats(queryText string, resultsCount float64, responseTime int) error {
	return r.db.Exec(`
		UPDATE popular_queries
		SET
			avg_results_count = (avg_results_count * (search_count - 1) + ?) / search_count,
			avg_response_time_ms = (avg_response_time_ms * (search_count - 1) + ?) / search_count,
			updated_at = NOW()
		WHERE query_text = ?
	`, resultsCount, responseTime, queryText).Error
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Freelancer   models.FreelancerRepository
	SearchQuery  models.SearchQueryRepository
	UserFeedback models.UserFeedbackRepository
	PopularQuery models.PopularQueryRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Freelancer:   NewFreelancerRepository(db),
		SearchQuery:  NewSearchQueryRepository(db),
		UserFeedback: NewUserFeedbackRepository(db),
		PopularQuery: NewPopularQueryRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
