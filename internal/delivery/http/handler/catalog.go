package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pesokrava/local_directory/internal/delivery/http/middleware"
	"github.com/Pesokrava/local_directory/internal/delivery/http/request"
	"github.com/Pesokrava/local_directory/internal/delivery/http/response"
	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	"github.com/Pesokrava/local_directory/internal/usecase/catalog"
)

// CatalogHandler handles HTTP requests for both catalog entity families
type CatalogHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *catalog.Service, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  log,
	}
}

// UpdateStatusRequest represents the request body for an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// List handles GET /api/v1/{businesses|tourism-places}
// @Summary List catalog entities
// @Description List a page of catalog entities with conjunctive filters, sorting and fixed-size pagination.
// @Tags Catalog
// @Produce json
// @Param status query string false "Lifecycle status filter; 'all' bypasses" default(published)
// @Param search query string false "Case-insensitive substring match on name"
// @Param city_id query string false "City ID (UUID)"
// @Param area_id query string false "Area ID (UUID)"
// @Param category query string false "Category slug"
// @Param owner_id query string false "Owner/creator ID (UUID)"
// @Param featured query bool false "Featured flag filter"
// @Param sort query string false "Sort order: newest, name, verified, featured" default(newest)
// @Param page query int false "1-based page number" default(1)
// @Success 200 {object} map[string]interface{} "Page of enriched entities"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /businesses [get]
func (h *CatalogHandler) List(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := domain.CatalogFilter{
			Status:       request.GetStringQuery(r, "status", domain.StatusPublished),
			Search:       request.GetStringQuery(r, "search", ""),
			CityID:       request.GetUUIDQuery(r, "city_id"),
			AreaID:       request.GetUUIDQuery(r, "area_id"),
			CategoryID:   request.GetUUIDQuery(r, "category_id"),
			CategorySlug: request.GetStringQuery(r, "category", ""),
			OwnerID:      request.GetUUIDQuery(r, "owner_id"),
			Featured:     request.GetBoolQuery(r, "featured"),
		}
		sortBy := request.GetStringQuery(r, "sort", domain.SortNewest)
		page := request.GetPageQuery(r)

		result, err := h.service.List(r.Context(), entity, filter, sortBy, page)
		if err != nil {
			h.handleError(w, err)
			return
		}

		response.Success(w, result)
	}
}

// GetBySlug handles GET /api/v1/{businesses|tourism-places}/slug/{slug}
// @Summary Get a catalog entity by slug
// @Description Get a single enriched catalog entity, including its live rating summary for businesses.
// @Tags Catalog
// @Produce json
// @Param slug path string true "Entity slug"
// @Success 200 {object} map[string]interface{} "Enriched entity"
// @Failure 404 {object} map[string]string "Entity not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /businesses/slug/{slug} [get]
func (h *CatalogHandler) GetBySlug(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			response.Error(w, http.StatusBadRequest, "Missing slug")
			return
		}

		result, err := h.service.GetBySlug(r.Context(), entity, slug)
		if err != nil {
			h.handleError(w, err)
			return
		}

		response.Success(w, result)
	}
}

// Create handles POST /api/v1/{businesses|tourism-places}
// @Summary Create a listing
// @Description Create a new catalog listing in the family's initial status. A first business listing promotes the creator to business_owner.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param listing body domain.NewCatalogInput true "Listing details"
// @Success 201 {object} map[string]interface{} "Listing created"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Missing identity"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /businesses [post]
func (h *CatalogHandler) Create(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.CurrentUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var input domain.NewCatalogInput
		if err := request.DecodeJSON(r, &input); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		record, err := h.service.Create(r.Context(), entity, userID, input)
		if err != nil {
			h.handleError(w, err)
			return
		}

		response.Created(w, record)
	}
}

// UpdateStatus handles PATCH /api/v1/{businesses|tourism-places}/{id}/status
// @Summary Update listing status
// @Description Apply an admin-only lifecycle transition to a listing.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Entity ID (UUID)"
// @Param status body UpdateStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "Status updated"
// @Failure 400 {object} map[string]string "Invalid status"
// @Failure 403 {object} map[string]string "Not an admin"
// @Failure 404 {object} map[string]string "Entity not found"
// @Router /businesses/{id}/status [patch]
func (h *CatalogHandler) UpdateStatus(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.CurrentUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		id, err := request.GetUUIDParam(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid entity ID")
			return
		}

		var req UpdateStatusRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := h.service.UpdateStatus(r.Context(), entity, id, req.Status, userID); err != nil {
			h.handleError(w, err)
			return
		}

		response.Success(w, map[string]string{"status": req.Status})
	}
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *CatalogHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Entity not found")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Conflicting resource")
	default:
		h.logger.Error("Internal error in catalog handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
