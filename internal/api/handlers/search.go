package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/database"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/services"
	"github.com/Ayash-Bera/hirescout/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	defaultSuggestionLimit = 5
	maxSuggestionLimit     = 10
	popularQueriesTTL      = 10 * time.Minute
	defaultRecentLimit     = 20
	maxRecentLimit         = 100
)

type SearchRunner interface {
	Search(ctx context.Context, query string, filters models.SearchFilters) models.SearchResponse
}

// SearchCache is satisfied by *database.Cache. A nil SearchCache disables caching.
type SearchCache interface {
	GetCachedSearchResponse(ctx context.Context, key string) (*models.SearchResponse, error)
	CacheSearchResponse(ctx context.Context, key string, response *models.SearchResponse, expiration time.Duration) error
	GetCachedPopularQueries(ctx context.Context) ([]models.PopularQuery, error)
	CachePopularQueries(ctx context.Context, queries []models.PopularQuery, expiration time.Duration) error
}

// Analytics groups the repositories the handler writes to. Any of them may be nil.
type Analytics struct {
	SearchQuery  models.SearchQueryRepository
	UserFeedback models.UserFeedbackRepository
	PopularQuery models.PopularQueryRepository
}

type SearchHandler struct {
	search    SearchRunner
	analytics Analytics
	cache     SearchCache
	cacheTTL  time.Duration
	timeout   time.Duration
	logger    *logrus.Logger

	pending sync.WaitGroup
}

func NewSearchHandler(
	search SearchRunner,
	analytics Analytics,
	cache SearchCache,
	cacheTTL time.Duration,
	timeout time.Duration,
	logger *logrus.Logger,
) *SearchHandler {
	return &SearchHandler{
		search:    search,
		analytics: analytics,
		cache:     cache,
		cacheTTL:  cacheTTL,
		timeout:   timeout,
		logger:    logger,
	}
}

// SearchPayload is the data field of a search response.
type SearchPayload struct {
	models.SearchResponse
	QueryID uint `json:"query_id,omitempty"`
	Cached  bool `json:"cached"`
}

// HandleSearch processes search requests
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	startTime := time.Now()

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid search request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := req.Filters.Validate(); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid filters", err)
		return
	}

	query := strings.TrimSpace(req.Query)
	userSession := h.getUserSession(c)

	h.logger.WithFields(logrus.Fields{
		"query":        query,
		"user_session": userSession,
		"request_id":   c.GetString(utils.RequestIDKey),
	}).Info("Processing search request")

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	cacheKey := database.SearchCacheKey(query, req.Filters)
	response, cached := h.lookup(ctx, cacheKey)
	if !cached {
		response = h.search.Search(ctx, query, req.Filters)
	}

	if !response.Success {
		status := http.StatusInternalServerError
		if response.Error == services.ErrEmptyQuery.Error() || response.Error == services.ErrQueryTooLong.Error() {
			status = http.StatusBadRequest
		}
		utils.ErrorResponse(c, status, "Search failed", errors.New(response.Error))
		return
	}

	if !cached && cacheable(response) {
		h.store(ctx, cacheKey, &response)
	}

	responseTime := time.Since(startTime)
	queryID := h.trackSearchQuery(c, userSession, query, response, responseTime)
	h.updatePopularQueries(query, len(response.Candidates), responseTime)

	h.logger.WithFields(logrus.Fields{
		"results_count": len(response.Candidates),
		"response_time": responseTime.Milliseconds(),
		"cached":        cached,
	}).Info("Search completed successfully")

	utils.SuccessResponse(c, http.StatusOK, "Search completed", SearchPayload{
		SearchResponse: response,
		QueryID:        queryID,
		Cached:         cached,
	})
}

// cacheable skips responses where every backend that ran failed, so an outage
// is not served from cache after recovery.
func cacheable(response models.SearchResponse) bool {
	if response.Analysis == nil {
		return false
	}
	for _, status := range []models.BackendStatus{response.Analysis.FacetStatus, response.Analysis.SemanticStatus} {
		if status != models.BackendSkipped && status != models.BackendFailed {
			return true
		}
	}
	return false
}

func (h *SearchHandler) lookup(ctx context.Context, key string) (models.SearchResponse, bool) {
	if h.cache == nil {
		return models.SearchResponse{}, false
	}
	cached, err := h.cache.GetCachedSearchResponse(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrCacheMiss) {
			h.logger.WithError(err).Warn("Failed to read search cache")
		}
		return models.SearchResponse{}, false
	}
	h.logger.Debug("Search results served from cache")
	return *cached, true
}

func (h *SearchHandler) store(ctx context.Context, key string, response *models.SearchResponse) {
	if h.cache == nil || h.cacheTTL <= 0 {
		return
	}
	if err := h.cache.CacheSearchResponse(ctx, key, response, h.cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache search results")
	}
}

// HandleFeedback processes user feedback on search results
func (h *SearchHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	if !models.IsValidFeedbackType(req.FeedbackType) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback type", nil)
		return
	}

	if h.analytics.UserFeedback == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Feedback storage unavailable", nil)
		return
	}

	if h.analytics.SearchQuery != nil {
		if _, err := h.analytics.SearchQuery.GetByID(req.QueryID); err != nil {
			if errors.Is(err, models.ErrSearchQueryNotFound) {
				utils.ErrorResponse(c, http.StatusNotFound, "Unknown search query", err)
				return
			}
			h.logger.WithError(err).WithField("query_id", req.QueryID).Warn("Failed to look up search query")
		}
	}

	feedback := &models.UserFeedback{
		QueryID:      req.QueryID,
		CandidateID:  req.CandidateID,
		FeedbackType: req.FeedbackType,
		FeedbackText: req.FeedbackText,
		UserSession:  h.getUserSession(c),
	}

	if err := h.analytics.UserFeedback.Create(feedback); err != nil {
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}

	if req.CandidateID != "" && h.analytics.SearchQuery != nil && req.FeedbackType == "helpful" {
		if err := h.analytics.SearchQuery.UpdateClickedResult(req.QueryID, req.CandidateID); err != nil {
			h.logger.WithError(err).Warn("Failed to record clicked result")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"query_id":      req.QueryID,
		"feedback_type": req.FeedbackType,
		"user_session":  feedback.UserSession,
	}).Info("Feedback recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", nil)
}

// HandleSearchSuggestions returns popular queries containing q
func (h *SearchHandler) HandleSearchSuggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'q' is required", nil)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSuggestionLimit)))
	if err != nil || limit < 1 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	popular, err := h.popularQueries(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get search suggestions")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get suggestions", err)
		return
	}

	filtered := make([]models.PopularQuery, 0, limit)
	queryLower := strings.ToLower(query)
	for _, suggestion := range popular {
		if len(filtered) == limit {
			break
		}
		if strings.Contains(strings.ToLower(suggestion.QueryText), queryLower) {
			filtered = append(filtered, suggestion)
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", filtered)
}

// HandleRecentSearches returns the latest tracked searches, newest first.
func (h *SearchHandler) HandleRecentSearches(c *gin.Context) {
	if h.analytics.SearchQuery == nil {
		utils.SuccessResponse(c, http.StatusOK, "Recent searches retrieved", []models.SearchQuery{})
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = min(n, maxRecentLimit)
	}

	recent, err := h.analytics.SearchQuery.GetRecentSearches(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent searches")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get recent searches", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Recent searches retrieved", recent)
}

// HandlePopularQueries returns the most searched queries.
func (h *SearchHandler) HandlePopularQueries(c *gin.Context) {
	popular, err := h.popularQueries(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get popular queries")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get popular queries", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Popular queries retrieved", popular)
}

const popularPoolSize = 50

func (h *SearchHandler) popularQueries(ctx context.Context) ([]models.PopularQuery, error) {
	if h.cache != nil {
		if cached, err := h.cache.GetCachedPopularQueries(ctx); err == nil {
			return cached, nil
		}
	}
	if h.analytics.PopularQuery == nil {
		return []models.PopularQuery{}, nil
	}

	popular, err := h.analytics.PopularQuery.GetTop(popularPoolSize)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.CachePopularQueries(ctx, popular, popularQueriesTTL); err != nil {
			h.logger.WithError(err).Debug("Failed to cache popular queries")
		}
	}
	return popular, nil
}

// Wait blocks until background analytics writes finish.
func (h *SearchHandler) Wait() {
	h.pending.Wait()
}

// Helper methods

func (h *SearchHandler) getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}

	// Basic fingerprint from IP and User-Agent
	return utils.GenerateSessionID(c.ClientIP() + c.GetHeader("User-Agent"))
}

func (h *SearchHandler) trackSearchQuery(c *gin.Context, userSession, query string, response models.SearchResponse, responseTime time.Duration) uint {
	if h.analytics.SearchQuery == nil {
		return 0
	}

	searchQuery := &models.SearchQuery{
		QueryText:       query,
		UserSession:     userSession,
		ResultsCount:    len(response.Candidates),
		SearchTimestamp: time.Now(),
		ResponseTimeMs:  int(responseTime.Milliseconds()),
		UserAgent:       c.GetHeader("User-Agent"),
		IPAddress:       c.ClientIP(),
	}
	if a := response.Analysis; a != nil {
		searchQuery.CleanQuery = a.CleanQuery
		searchQuery.Strategy = a.Strategy
		searchQuery.ExtractionSource = string(a.ExtractionSource)
	}

	if err := h.analytics.SearchQuery.Create(searchQuery); err != nil {
		h.logger.WithError(err).Error("Failed to track search query")
		return 0
	}
	return searchQuery.ID
}

func (h *SearchHandler) updatePopularQueries(query string, resultsCount int, responseTime time.Duration) {
	if h.analytics.PopularQuery == nil {
		return
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		if err := h.analytics.PopularQuery.IncrementCount(normalized); err != nil {
			h.logger.WithError(err).Error("Failed to update popular queries")
			return
		}
		if err := h.analytics.PopularQuery.UpdateStats(normalized, float64(resultsCount), int(responseTime.Milliseconds())); err != nil {
			h.logger.WithError(err).Error("Failed to update query stats")
		}
	}()
}
