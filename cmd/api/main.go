package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata" // country timezones for the digest greeting

	"jbcnews/internal/app"
	"jbcnews/internal/config"
	"jbcnews/internal/database"
	"jbcnews/internal/logger"
	"jbcnews/internal/validator"
)

// @title           JBC News API
// @version         1.0
// @description     Staff and pipeline API of the JBC News content system.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	if err := database.Seed(dbManager.DB()); err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}

	if err := validator.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	application, err := app.New(appConfig, dbManager.DB())
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return application.Run(ctx)
}
