// Package embedding turns text into dense vectors with an OpenAI compatible
// embeddings API.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	ErrNotConfigured     = errors.New("embedding service is not configured")
	ErrEmptyText         = errors.New("cannot embed empty text")
	ErrDimensionMismatch = errors.New("embedding has unexpected dimensions")
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	MaxRetries int
}

type Service struct {
	embedder   embeddings.Embedder
	dimensions int
	retry      RetryConfig
	logger     *logrus.Logger
}

// NewService returns an unconfigured service when no API key is set. Every
// call on it fails with ErrNotConfigured.
func NewService(cfg Config, logger *logrus.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return &Service{dimensions: cfg.Dimensions, logger: logger}, nil
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return NewServiceWithEmbedder(embedder, cfg.Dimensions, DefaultRetryConfig(cfg.MaxRetries), logger), nil
}

func NewServiceWithEmbedder(embedder embeddings.Embedder, dimensions int, retry RetryConfig, logger *logrus.Logger) *Service {
	return &Service{
		embedder:   embedder,
		dimensions: dimensions,
		retry:      retry,
		logger:     logger,
	}
}

func (s *Service) IsConfigured() bool {
	return s.embedder != nil
}

func (s *Service) Dimensions() int {
	return s.dimensions
}

// Embed returns the vector for a single query text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var vector []float32
	err := retryOperation(ctx, s.logger, s.retry, func() error {
		var err error
		vector, err = s.embedder.EmbedQuery(ctx, text)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if err := s.checkDimensions(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

// EmbedBatch embeds documents in one request. The result is index aligned
// with texts.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !s.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text %d: %w", i, ErrEmptyText)
		}
	}

	var vectors [][]float32
	err := retryOperation(ctx, s.logger, s.retry, func() error {
		var err error
		vectors, err = s.embedder.EmbedDocuments(ctx, texts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	for _, vector := range vectors {
		if err := s.checkDimensions(vector); err != nil {
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"count": len(vectors),
	}).Debug("Embedded documents")

	return vectors, nil
}

func (s *Service) checkDimensions(vector []float32) error {
	if s.dimensions > 0 && len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimensions)
	}
	return nil
}
