package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/internal/domain/categorization"
	"github.com/FACorreiaa/bookkeeper/internal/domain/transactions"
	"github.com/FACorreiaa/bookkeeper/internal/llm"
	"github.com/FACorreiaa/bookkeeper/pkg/config"
	"github.com/FACorreiaa/bookkeeper/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	AccountsRepo       *accounts.Repository
	TransactionsRepo   *transactions.Repository
	CategorizationRepo *categorization.Repository

	// Services
	CategorizationService *categorization.Service
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
	})
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initRepositories() {
	d.AccountsRepo = accounts.NewRepository(d.DB.Pool)
	d.TransactionsRepo = transactions.NewRepository(d.DB.Pool)
	d.CategorizationRepo = categorization.NewRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices(ctx context.Context) error {
	var fallback *categorization.FallbackAdapter

	// The engine runs rules-only when no API key is configured.
	if d.Config.Gemini.APIKey != "" {
		classifier, err := llm.NewGeminiClassifier(
			ctx,
			d.Config.Gemini,
			llm.NewHistorySource(d.TransactionsRepo),
			d.Logger,
		)
		if err != nil {
			return fmt.Errorf("failed to init classifier: %w", err)
		}
		fallback = categorization.NewFallbackAdapter(
			classifier,
			d.Config.Engine.FallbackTimeout,
			float64(d.Config.Engine.FallbackRatePerSecond),
			d.Logger,
		)
	} else {
		d.Logger.Warn("GEMINI_API_KEY not set, classifier fallback disabled")
	}

	d.CategorizationService = categorization.NewService(
		d.CategorizationRepo,
		fallback,
		d.Config.Engine.AcceptanceThreshold,
		d.Config.Engine.BatchWorkers,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
