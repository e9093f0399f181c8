// Package app assembles the search pipeline and its storage from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/Ayash-Bera/hirescout/backend/internal/backends"
	"github.com/Ayash-Bera/hirescout/backend/internal/config"
	"github.com/Ayash-Bera/hirescout/backend/internal/database"
	"github.com/Ayash-Bera/hirescout/backend/internal/embedding"
	"github.com/Ayash-Bera/hirescout/backend/internal/extraction"
	"github.com/Ayash-Bera/hirescout/backend/internal/facetindex"
	"github.com/Ayash-Bera/hirescout/backend/internal/merge"
	"github.com/Ayash-Bera/hirescout/backend/internal/repository"
	"github.com/Ayash-Bera/hirescout/backend/internal/services"
	"github.com/Ayash-Bera/hirescout/backend/internal/strategy"
	"github.com/Ayash-Bera/hirescout/backend/internal/vectorstore"
	"github.com/sirupsen/logrus"
)

// Components holds everything the binaries share.
type Components struct {
	DB         *database.Manager
	Repos      *repository.RepositoryManager
	Cache      *database.Cache
	Index      *facetindex.Index
	Store      *vectorstore.Store
	Embeddings *embedding.Service
	Search     *services.HybridSearchService

	logger *logrus.Logger
}

// Open connects to Postgres, Redis (optional), the bleve index and the
// embedding API, then builds the search service.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Components, error) {
	c := &Components{logger: logger}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL:   cfg.Database.URL,
		RedisURL:      cfg.Redis.URL,
		LogLevel:      cfg.LogLevel,
		RedisOptional: true,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database manager: %w", err)
	}
	c.DB = dbManager
	c.Repos = repository.NewRepositoryManager(dbManager.DB)
	if dbManager.Redis != nil {
		c.Cache = database.NewCache(dbManager.Redis, logger)
	}

	if c.Index, err = facetindex.Open(cfg.Index.Path, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open facet index: %w", err)
	}

	if c.Store, err = vectorstore.New(ctx, cfg.Database.URL, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect vector store: %w", err)
	}

	c.Embeddings, err = embedding.NewService(embedding.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		MaxRetries: cfg.OpenAI.MaxRetries,
	}, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embeddings: %w", err)
	}

	c.Search, err = NewSearchService(cfg, c.Index, c.Embeddings, c.Store, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// NewSearchService wires extraction, strategy selection, both backend
// adapters and the merger.
func NewSearchService(
	cfg *config.Config,
	index backends.FacetIndex,
	embedder backends.Embedder,
	store backends.RankingStore,
	logger *logrus.Logger,
) (*services.HybridSearchService, error) {
	extractors := []extraction.Extractor{}
	if cfg.OpenAIConfigured() {
		ai, err := extraction.NewAIExtractor(extraction.AIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
			Timeout: cfg.OpenAI.ExtractionTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AI extraction: %w", err)
		}
		extractors = append(extractors, ai)
	} else {
		logger.Warn("OPENAI_API_KEY not set, using keyword extraction only")
	}
	extractors = append(extractors, extraction.NewManualExtractor())

	return services.NewHybridSearchService(
		extraction.NewChain(logger, extractors...),
		strategy.NewSelector(),
		backends.NewFacetAdapter(index, cfg.Search.DefaultLimit, logger),
		backends.NewSemanticAdapter(embedder, store, cfg.Search.SimilarityThreshold, cfg.Search.DefaultLimit, logger),
		merge.NewMerger(logger),
		services.SearchConfig{
			DefaultLimit:   cfg.Search.DefaultLimit,
			AdapterTimeout: cfg.Search.AdapterTimeout,
			MaxQueryLength: cfg.Search.MaxQueryLength,
		},
		logger,
	), nil
}

func (c *Components) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
	if c.Index != nil {
		if err := c.Index.Close(); err != nil {
			c.logger.WithError(err).Error("Failed to close facet index")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.WithError(err).Error("Failed to close database connections")
		}
	}
}
