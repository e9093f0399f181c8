package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ayash-Bera/hirescout/backend/internal/app"
	"github.com/Ayash-Bera/hirescout/backend/internal/config"
	"github.com/Ayash-Bera/hirescout/backend/internal/migration"
	"github.com/Ayash-Bera/hirescout/backend/internal/seeder"
	"github.com/Ayash-Bera/hirescout/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	profilesPath   = flag.String("file", "data/freelancers.yaml", "YAML file with freelancer profiles")
	migrationsPath = flag.String("migrations", "migrations", "Directory holding SQL migrations")
	dryRun         = flag.Bool("dry-run", false, "Validate profiles without writing anything")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	batchSize      = flag.Int("batch", seeder.DefaultBatchSize, "Profiles per embedding request")
	concurrent     = flag.Int("concurrent", seeder.DefaultPoolSize, "Number of concurrent embedding requests")
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
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.WithField("file", *profilesPath).Info("Starting freelancer profile seeder...")

	profiles, err := seeder.LoadProfiles(*profilesPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load profiles")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := seeder.Options{
		BatchSize: *batchSize,
		PoolSize:  *concurrent,
		DryRun:    *dryRun,
	}

	if *dryRun {
		report, err := seeder.New(nil, nil, nil, options, logger).Seed(ctx, profiles)
		if err != nil {
			logger.WithError(err).Fatal("Validation failed")
		}
		logger.WithFields(logrus.Fields{
			"total":   report.Total,
			"valid":   report.Valid,
			"invalid": report.Invalid,
		}).Info("Dry run completed")
		for _, e := range report.Errors {
			logger.Warn(e)
		}
		return
	}

	if !cfg.OpenAIConfigured() {
		logger.Warn("OPENAI_API_KEY not set, profiles are stored without embeddings")
	}

	components, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize components")
	}
	defer components.Close()

	if err := migration.NewRunner(components.DB, logger).RunMigrations(*migrationsPath); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	s := seeder.New(components.Repos.Freelancer, components.Embeddings, components.Index, options, logger)
	report, err := s.Seed(ctx, profiles)
	if err != nil {
		logger.WithError(err).Fatal("Seeding failed")
	}

	if components.Cache != nil {
		if err := components.Cache.InvalidateSearchCache(ctx); err != nil {
			logger.WithError(err).Warn("Failed to invalidate search cache")
		}
	}

	for _, e := range report.Errors {
		logger.Warn(e)
	}
	logger.WithFields(logrus.Fields{
		"stored":   report.Stored,
		"embedded": report.Embedded,
		"indexed":  report.Indexed,
	}).Info("Profile seeding completed successfully!")
}
