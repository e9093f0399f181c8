package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/api/handlers"
	"github.com/Ayash-Bera/hirescout/backend/internal/app"
	"github.com/Ayash-Bera/hirescout/backend/internal/config"
	"github.com/Ayash-Bera/hirescout/backend/internal/health"
	"github.com/Ayash-Bera/hirescout/backend/internal/middleware"
	"github.com/Ayash-Bera/hirescout/backend/internal/migration"
	"github.com/Ayash-Bera/hirescout/backend/internal/scheduler"
	"github.com/Ayash-Bera/hirescout/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const serviceName = "hirescout-search"

var (
	migrationsPath = flag.String("migrations", "migrations", "Directory holding SQL migrations")
	skipMigrations = flag.Bool("skip-migrations", false, "Don't run migrations on startup")
	healthInterval = flag.Duration("health-interval", time.Minute, "Interval between background health checks")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	utils.Logger = logger
	logger.Info("Starting hybrid search service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize components")
	}
	defer components.Close()

	if !*skipMigrations {
		if err := migration.NewRunner(components.DB, logger).RunMigrations(*migrationsPath); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	var cache handlers.SearchCache
	var invalidator scheduler.CacheInvalidator
	var healthCache health.HealthCache
	if components.Cache != nil {
		cache = components.Cache
		invalidator = components.Cache
		healthCache = components.Cache
	}

	resync := scheduler.New(components.Repos.Freelancer, components.Index, invalidator, cfg.Index.ResyncSpec, logger)
	if err := resync.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start index scheduler")
	}
	defer resync.Stop()

	checker := health.NewHealthChecker(components.DB, components.Index, components.Embeddings, healthCache, components.Repos.SystemHealth, logger)
	go checker.PeriodicHealthCheck(ctx, *healthInterval)

	searchHandler := handlers.NewSearchHandler(
		components.Search,
		handlers.Analytics{
			SearchQuery:  components.Repos.SearchQuery,
			UserFeedback: components.Repos.UserFeedback,
			PopularQuery: components.Repos.PopularQuery,
		},
		cache,
		cfg.Search.CacheTTL,
		cfg.Server.RequestTimeout,
		logger,
	)
	healthHandler := handlers.NewHealthHandler(checker, serviceName)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit)
	defer limiter.Stop()

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.SecurityHeaders(),
	)

	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/health/detailed", healthHandler.HandleDetailedHealth)

	v1 := router.Group("/api/v1")
	v1.Use(limiter.RateLimit())
	{
		v1.POST("/search", searchHandler.HandleSearch)
		v1.GET("/search/suggestions", searchHandler.HandleSearchSuggestions)
		v1.GET("/search/popular", searchHandler.HandlePopularQueries)
		v1.GET("/search/recent", searchHandler.HandleRecentSearches)
		v1.POST("/feedback", searchHandler.HandleFeedback)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}
	searchHandler.Wait()
	logger.Info("Stopped")
}
