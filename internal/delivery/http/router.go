package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/local_directory/internal/config"
	"github.com/Pesokrava/local_directory/internal/delivery/http/handler"
	"github.com/Pesokrava/local_directory/internal/delivery/http/middleware"
	"github.com/Pesokrava/local_directory/internal/delivery/http/response"
	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	catalogHandler *handler.CatalogHandler
	reviewHandler  *handler.ReviewHandler
	logger         *logger.Logger
	cfg            *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	catalogHandler *handler.CatalogHandler,
	reviewHandler *handler.ReviewHandler,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		catalogHandler: catalogHandler,
		reviewHandler:  reviewHandler,
		logger:         log,
		cfg:            cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Identity())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		rt.mountFamily(r, "/businesses", domain.EntityTypeBusiness)
		rt.mountFamily(r, "/tourism-places", domain.EntityTypeTourismPlace)

		r.Route("/reviews", func(r chi.Router) {
			r.Put("/{id}", rt.reviewHandler.Edit)
			r.Delete("/{id}", rt.reviewHandler.Delete)
			r.Post("/{id}/reply", rt.reviewHandler.Reply)
			r.Get("/{id}/can-edit", rt.reviewHandler.CanEdit)
		})
	})

	return r
}

// mountFamily wires the shared catalog and review routes for one entity family
func (rt *Router) mountFamily(r chi.Router, pattern string, entity domain.EntityType) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", rt.catalogHandler.List(entity))
		r.Post("/", rt.catalogHandler.Create(entity))
		r.Get("/slug/{slug}", rt.catalogHandler.GetBySlug(entity))
		r.Patch("/{id}/status", rt.catalogHandler.UpdateStatus(entity))
		r.Post("/{id}/reviews", rt.reviewHandler.Submit(entity))
		r.Get("/{id}/reviews", rt.reviewHandler.ListByEntity(entity))
		r.Get("/{id}/rating", rt.reviewHandler.RatingSummary(entity))
	})
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
