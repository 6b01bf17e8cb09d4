package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/local_directory/internal/config"
	"github.com/Pesokrava/local_directory/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/local_directory/internal/delivery/http"
	"github.com/Pesokrava/local_directory/internal/delivery/http/handler"
	"github.com/Pesokrava/local_directory/internal/pkg/cache"
	"github.com/Pesokrava/local_directory/internal/pkg/database"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/local_directory/internal/repository/cache"
	"github.com/Pesokrava/local_directory/internal/repository/postgres"
	"github.com/Pesokrava/local_directory/internal/usecase/catalog"
	"github.com/Pesokrava/local_directory/internal/usecase/identity"
	"github.com/Pesokrava/local_directory/internal/usecase/review"

	_ "github.com/Pesokrava/local_directory/docs"
)

// @title Local Directory API
// @version 1.0
// @description A local-directory catalog of businesses and tourism places with user reviews, owner replies and rating aggregation.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/local_directory
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @tag.name Catalog
// @tag.description Catalog browsing and listing management endpoints

// @tag.name Reviews
// @tag.description Review lifecycle and owner reply endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Local Directory API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ReviewsListTTL)

	identityService := identity.NewService(userRepo, catalogRepo, appLogger)
	reviewService := review.NewService(reviewRepo, catalogRepo, identityService, redisCache, publisher, appLogger)
	catalogService := catalog.NewService(
		catalogRepo,
		locationRepo,
		userRepo,
		reviewRepo,
		identityService,
		cfg.Catalog.PageSize,
		appLogger,
	)

	catalogHandler := handler.NewCatalogHandler(catalogService, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)

	router := httpDelivery.NewRouter(catalogHandler, reviewHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
