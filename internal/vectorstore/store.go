// Package vectorstore ranks freelancer profiles inside Postgres, by pgvector
// similarity or by full text rank alone.
package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const DefaultLimit = 50

// RankParams carries the effective filters. Rates are in cents; nil slices
// and pointers leave the dimension unconstrained.
type RankParams struct {
	Query            string
	Specializations  []string
	ExperienceLevels []string
	MinRate          *int
	MaxRate          *int
	Location         *string
	AvailableOnly    bool
	Threshold        float64
	Limit            int
}

type Store struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func New(ctx context.Context, databaseURL string, logger *logrus.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewWithPool(pool, logger), nil
}

func NewWithPool(pool *pgxpool.Pool, logger *logrus.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

const rankWithEmbeddingSQL = `SELECT * FROM search_freelancers($1, $2::text::vector, $3, $4, $5, $6, $7, $8, $9, $10)`

const rankByTextSQL = `SELECT * FROM search_freelancers_by_text($1, $2, $3, $4, $5, $6, $7, $8)`

// RankWithEmbedding ranks by cosine similarity to embedding, filtered by p.
// Rows carry both a similarity score and a text rank.
func (s *Store) RankWithEmbedding(ctx context.Context, p RankParams, embedding []float32) ([]models.RawSemanticHit, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is required")
	}

	rows, err := s.pool.Query(ctx, rankWithEmbeddingSQL,
		p.Query, FormatVector(embedding),
		nullableStrings(p.Specializations), nullableStrings(p.ExperienceLevels),
		p.MinRate, p.MaxRate, p.Location, p.AvailableOnly,
		p.Threshold, limitOrDefault(p.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search_freelancers: %w", err)
	}

	hits, err := collectHits(rows)
	if err != nil {
		return nil, fmt.Errorf("search_freelancers: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"query":     p.Query,
		"threshold": p.Threshold,
		"hits":      len(hits),
	}).Debug("Vector ranking completed")
	return hits, nil
}

// RankByTextOnly ranks with Postgres full text search. Rows carry only a text
// rank.
func (s *Store) RankByTextOnly(ctx context.Context, p RankParams) ([]models.RawSemanticHit, error) {
	rows, err := s.pool.Query(ctx, rankByTextSQL,
		p.Query,
		nullableStrings(p.Specializations), nullableStrings(p.ExperienceLevels),
		p.MinRate, p.MaxRate, p.Location, p.AvailableOnly,
		limitOrDefault(p.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search_freelancers_by_text: %w", err)
	}

	hits, err := collectHits(rows)
	if err != nil {
		return nil, fmt.Errorf("search_freelancers_by_text: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"query": p.Query,
		"hits":  len(hits),
	}).Debug("Text ranking completed")
	return hits, nil
}

func collectHits(rows pgx.Rows) ([]models.RawSemanticHit, error) {
	defer rows.Close()

	hits := make([]models.RawSemanticHit, 0)
	for rows.Next() {
		var h models.RawSemanticHit
		if err := rows.Scan(
			&h.ID, &h.Title, &h.Description, &h.Specializations, &h.Skills,
			&h.ExperienceLevel, &h.HourlyRateMin, &h.HourlyRateMax,
			&h.AvailabilityHoursPerWeek, &h.Location, &h.Timezone, &h.Languages,
			&h.Rating, &h.ReviewsCount, &h.ProjectsCompleted, &h.ResponseTimeHours,
			&h.IsAvailable, &h.IsVerified, &h.SimilarityScore, &h.TextRank,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// FormatVector renders v as a pgvector text literal, e.g. [0.1,0.2].
func FormatVector(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*10 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func nullableStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
