// Package review implements the review lifecycle: submission, bounded edits,
// soft deletion and single owner replies.
package review

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/local_directory/internal/pkg/validator"
	"github.com/Pesokrava/local_directory/internal/usecase/rating"
)

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// OwnershipResolver gates owner replies
type OwnershipResolver interface {
	IsOwner(ctx context.Context, entity domain.EntityType, entityID, userID uuid.UUID) (bool, error)
}

// ReviewCache caches review pages per entity
type ReviewCache interface {
	GetEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int) ([]*domain.Review, error)
	SetEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int, reviews []*domain.Review) error
	InvalidateEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) error
}

// ReviewEvent represents a lifecycle event emitted for a review
type ReviewEvent struct {
	EventType  string            `json:"event_type"`
	Timestamp  time.Time         `json:"timestamp"`
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   uuid.UUID         `json:"entity_id"`
	ReviewID   uuid.UUID         `json:"review_id"`
}

// ReviewInput carries the caller-supplied fields of a review
type ReviewInput struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Title   *string `json:"title,omitempty" validate:"omitempty,max=150"`
	Content string  `json:"content" validate:"required,min=1,max=5000"`
}

// CanEditResult reports whether the caller may still edit a review
type CanEditResult struct {
	CanEdit   bool `json:"can_edit"`
	EditCount int  `json:"edit_count"`
}

// Service is the review lifecycle manager
type Service struct {
	repo      domain.ReviewRepository
	catalog   domain.CatalogRepository
	ownership OwnershipResolver
	cache     ReviewCache
	publisher EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new review service
func NewService(
	repo domain.ReviewRepository,
	catalog domain.CatalogRepository,
	ownership OwnershipResolver,
	cache ReviewCache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		ownership: ownership,
		cache:     cache,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		logger:    log,
	}
}

// Submit creates a review for an entity. A user gets one active review per
// entity: the repository pre-check yields a friendly duplicate error and the
// storage-level unique index closes the concurrent race with the same error.
func (s *Service) Submit(ctx context.Context, entity domain.EntityType, entityID, userID uuid.UUID, input ReviewInput) (*domain.Review, error) {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Review validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.catalog.GetByID(ctx, family, entityID); err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to check entity for review", err)
		}
		return nil, err
	}

	exists, err := s.repo.HasActiveReview(ctx, entity, entityID, userID)
	if err != nil {
		s.logger.Error("Failed to check for existing review", err)
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReview
	}

	review := &domain.Review{
		EntityType: entity,
		EntityID:   entityID,
		UserID:     userID,
		Rating:     input.Rating,
		Title:      input.Title,
		Content:    input.Content,
		Status:     domain.ReviewStatusPublished,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if err != domain.ErrDuplicateReview {
			s.logger.Error("Failed to create review", err)
		}
		return nil, err
	}

	s.invalidateCache(ctx, entity, entityID)
	s.publishEvent(ctx, "review.created", review)

	s.logger.WithFields(map[string]interface{}{
		"review_id":   review.ID,
		"entity_type": entity,
		"entity_id":   entityID,
		"rating":      review.Rating,
	}).Info("Review created successfully")

	return review, nil
}

// Edit applies an author edit. Only the author may edit, at most
// domain.MaxReviewEdits times.
func (s *Service) Edit(ctx context.Context, reviewID, userID uuid.UUID, input ReviewInput) (*domain.Review, error) {
	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Review validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.UserID != userID {
		return nil, domain.ErrForbidden
	}

	if review.EditCount >= domain.MaxReviewEdits {
		return nil, domain.ErrEditLimitReached
	}

	review.Rating = input.Rating
	review.Title = input.Title
	review.Content = input.Content
	review.EditCount++

	if err := s.repo.Update(ctx, review); err != nil {
		s.logger.Error("Failed to update review", err)
		return nil, err
	}

	s.invalidateCache(ctx, review.EntityType, review.EntityID)
	s.publishEvent(ctx, "review.updated", review)

	s.logger.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"edit_count": review.EditCount,
	}).Info("Review updated successfully")

	return review, nil
}

// SoftDelete marks the author's review deleted. The row is retained for
// audit and excluded from every read path.
func (s *Service) SoftDelete(ctx context.Context, reviewID, userID uuid.UUID) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, reviewID); err != nil {
		s.logger.Error("Failed to delete review", err)
		return err
	}

	s.invalidateCache(ctx, review.EntityType, review.EntityID)
	s.publishEvent(ctx, "review.deleted", review)

	s.logger.WithFields(map[string]interface{}{
		"review_id":   reviewID,
		"entity_type": review.EntityType,
		"entity_id":   review.EntityID,
	}).Info("Review deleted successfully")

	return nil
}

// Reply records the entity owner's single, append-only reply to a review.
func (s *Service) Reply(ctx context.Context, reviewID, replierID uuid.UUID, content string) (*domain.ReviewReply, error) {
	if content == "" || len(content) > 2000 {
		return nil, domain.ErrInvalidInput
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	isOwner, err := s.ownership.IsOwner(ctx, review.EntityType, review.EntityID, replierID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, domain.ErrForbidden
	}

	exists, err := s.repo.ReplyExists(ctx, reviewID)
	if err != nil {
		s.logger.Error("Failed to check for existing reply", err)
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateReply
	}

	reply := &domain.ReviewReply{
		ReviewID:   reviewID,
		EntityType: review.EntityType,
		EntityID:   review.EntityID,
		UserID:     replierID,
		Content:    content,
	}

	if err := s.repo.CreateReply(ctx, reply); err != nil {
		if err != domain.ErrDuplicateReply {
			s.logger.Error("Failed to create reply", err)
		}
		return nil, err
	}

	s.invalidateCache(ctx, review.EntityType, review.EntityID)

	s.logger.WithFields(map[string]interface{}{
		"reply_id":  reply.ID,
		"review_id": reviewID,
	}).Info("Review reply created successfully")

	return reply, nil
}

// CanEdit combines the ownership and edit-limit checks so callers can decide
// whether to expose an edit affordance.
func (s *Service) CanEdit(ctx context.Context, reviewID, userID uuid.UUID) (CanEditResult, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return CanEditResult{}, err
	}

	return CanEditResult{
		CanEdit:   review.UserID == userID && review.EditCount < domain.MaxReviewEdits,
		EditCount: review.EditCount,
	}, nil
}

// ListByEntity retrieves published reviews for an entity with caching.
// Replies are attached after the cache layer so a fresh reply is never hidden
// by a cached page.
func (s *Service) ListByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int) ([]*domain.Review, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.cache.GetEntityReviews(ctx, entity, entityID, limit, offset)
	if err != nil {
		s.logger.Debugf("Cache miss for %s %s reviews (limit=%d, offset=%d)", entity, entityID, limit, offset)

		reviews, err = s.repo.ListByEntity(ctx, entity, entityID, limit, offset)
		if err != nil {
			s.logger.Error("Failed to list reviews by entity", err)
			return nil, 0, err
		}

		if err := s.cache.SetEntityReviews(ctx, entity, entityID, limit, offset, reviews); err != nil {
			s.logger.Warnf("Failed to cache reviews for %s %s: %v", entity, entityID, err)
		}
	}

	total, err := s.repo.CountByEntity(ctx, entity, entityID)
	if err != nil {
		s.logger.Error("Failed to count reviews", err)
		return nil, 0, err
	}

	if err := s.attachReplies(ctx, reviews); err != nil {
		s.logger.Error("Failed to attach replies", err)
		return nil, 0, err
	}

	return reviews, total, nil
}

// GetRatingSummary recomputes the rating aggregate from the live review set.
func (s *Service) GetRatingSummary(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) (domain.RatingSummary, error) {
	ratings, err := s.repo.RatingsByEntity(ctx, entity, entityID)
	if err != nil {
		s.logger.Error("Failed to load ratings for summary", err)
		return domain.RatingSummary{}, err
	}

	return rating.Summarize(ratings), nil
}

func (s *Service) attachReplies(ctx context.Context, reviews []*domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}

	replies, err := s.repo.RepliesByReviewIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, r := range reviews {
		r.Reply = replies[r.ID]
	}
	return nil
}

func (s *Service) invalidateCache(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) {
	// Stale pages would show deleted reviews or hide fresh ones
	if err := s.cache.InvalidateEntityReviews(ctx, entity, entityID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for %s %s: %v", entity, entityID, err)
	}
}

// publishEvent publishes a review event (non-blocking)
func (s *Service) publishEvent(ctx context.Context, eventType string, review *domain.Review) {
	event := ReviewEvent{
		EventType:  eventType,
		Timestamp:  time.Now(),
		EntityType: review.EntityType,
		EntityID:   review.EntityID,
		ReviewID:   review.ID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for review %s", review.ID)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), "reviews.events", data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for review %s", review.ID)
		}
	}()
}
