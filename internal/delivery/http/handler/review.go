package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/local_directory/internal/delivery/http/middleware"
	"github.com/Pesokrava/local_directory/internal/delivery/http/request"
	"github.com/Pesokrava/local_directory/internal/delivery/http/response"
	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	"github.com/Pesokrava/local_directory/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews and replies
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// ReplyRequest represents the request body for an owner reply
type ReplyRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// Submit handles POST /api/v1/{businesses|tourism-places}/{id}/reviews
// @Summary Submit a review
// @Description Create a review for a catalog entity. One active review per user per entity.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Entity ID (UUID)"
// @Param review body review.ReviewInput true "Review details"
// @Success 201 {object} map[string]interface{} "Review created"
// @Failure 400 {object} map[string]string "Invalid rating or body"
// @Failure 401 {object} map[string]string "Missing identity"
// @Failure 404 {object} map[string]string "Entity not found"
// @Failure 409 {object} map[string]string "Duplicate review"
// @Router /businesses/{id}/reviews [post]
func (h *ReviewHandler) Submit(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.CurrentUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		entityID, err := request.GetUUIDParam(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid entity ID")
			return
		}

		var input review.ReviewInput
		if err := request.DecodeJSON(r, &input); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		created, err := h.service.Submit(r.Context(), entity, entityID, userID, input)
		if err != nil {
			h.handleError(w, err)
			return
		}

		response.Created(w, created)
	}
}

// ListByEntity handles GET /api/v1/{businesses|tourism-places}/{id}/reviews
// @Summary List reviews for an entity
// @Description Get a paginated list of published reviews with owner replies attached. Results are cached.
// @Tags Reviews
// @Produce json
// @Param id path string true "Entity ID (UUID)"
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Param offset query int false "Number of items to skip" default(0)
// @Success 200 {object} map[string]interface{} "Paginated list of reviews"
// @Failure 400 {object} map[string]string "Invalid entity ID"
// @Router /businesses/{id}/reviews [get]
func (h *ReviewHandler) ListByEntity(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := request.GetUUIDParam(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid entity ID")
			return
		}

		limit, offset := request.GetPaginationParams(r)

		reviews, total, err := h.service.ListByEntity(r.Context(), entity, entityID, limit, offset)
		if err != nil {
			h.handleError(w, err)
			return
		}

		response.Paginated(w, reviews, total, limit, offset)
	}
}

// RatingSummary handles GET /api/v1/{businesses|tourism-places}/{id}/rating
// @Summary Get an entity's rating summary
// @Description Compute count, mean and 1-5 distribution from the live set of published reviews.
// @Tags Reviews
// @Produce json
// @Param id path string true "Entity ID (UUID)"
// @Success 200 {object} map[string]interface{} "Rating summary"
// @Failure 400 {object} map[string]string "Invalid entity ID"
// @Router /businesses/{id}/rating [get]
func (h *ReviewHandler) RatingSummary(entity domain.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := request.GetUUIDParam(r, "id")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid entity ID")
			return
		}

		summary, err := h.service.GetRatingSummary(r.Context(), entity, entityID)
		if err != nil {
			h.handleError(w, err)
			return
		}

		response.Success(w, summary)
	}
}

// Edit handles PUT /api/v1/reviews/{id}
// @Summary Edit a review
// @Description Apply an author edit; at most two edits per review.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param review body review.ReviewInput true "Updated review details"
// @Success 200 {object} map[string]interface{} "Review updated"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 409 {object} map[string]string "Edit limit reached"
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var input review.ReviewInput
	if err := request.DecodeJSON(r, &input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Edit(r.Context(), id, userID, input)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, updated)
}

// Delete handles DELETE /api/v1/reviews/{id}
// @Summary Delete a review
// @Description Soft delete the author's review. The row is retained but excluded from all read paths.
// @Tags Reviews
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Success 204 "Review deleted"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	if err := h.service.SoftDelete(r.Context(), id, userID); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// Reply handles POST /api/v1/reviews/{id}/reply
// @Summary Reply to a review
// @Description Record the entity owner's single, append-only reply to a review.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Param reply body ReplyRequest true "Reply content"
// @Success 201 {object} map[string]interface{} "Reply created"
// @Failure 403 {object} map[string]string "Not the entity owner"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 409 {object} map[string]string "Reply already exists"
// @Router /reviews/{id}/reply [post]
func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req ReplyRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.service.Reply(r.Context(), id, userID, req.Content)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, reply)
}

// CanEdit handles GET /api/v1/reviews/{id}/can-edit
// @Summary Check edit eligibility
// @Description Report whether the caller may still edit a review, and its current edit count.
// @Tags Reviews
// @Produce json
// @Param id path string true "Review ID (UUID)"
// @Success 200 {object} map[string]interface{} "Edit eligibility"
// @Failure 404 {object} map[string]string "Review not found"
// @Router /reviews/{id}/can-edit [get]
func (h *ReviewHandler) CanEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	result, err := h.service.CanEdit(r.Context(), id, userID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, result)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *ReviewHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Review or entity not found")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, domain.ErrForbidden):
		response.Error(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrDuplicateReview):
		response.Error(w, http.StatusConflict, "You have already reviewed this listing")
	case errors.Is(err, domain.ErrDuplicateReply):
		response.Error(w, http.StatusConflict, "This review already has a reply")
	case errors.Is(err, domain.ErrEditLimitReached):
		response.Error(w, http.StatusConflict, "Edit limit reached for this review")
	default:
		h.logger.Error("Internal error in review handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
