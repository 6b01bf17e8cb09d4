package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxReviewEdits is how many times an author may modify a review after creation.
const MaxReviewEdits = 2

// Review statuses. Reviews publish immediately in the current workflow; the
// pending and rejected states exist for moderation tooling.
const (
	ReviewStatusPending   = "pending"
	ReviewStatusPublished = "published"
	ReviewStatusRejected  = "rejected"
)

// Review represents a user review of a catalog entity
type Review struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	EntityType EntityType   `json:"entity_type" db:"entity_type" validate:"required"`
	EntityID   uuid.UUID    `json:"entity_id" db:"entity_id" validate:"required"`
	UserID     uuid.UUID    `json:"user_id" db:"user_id" validate:"required"`
	Rating     int          `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Title      *string      `json:"title,omitempty" db:"title" validate:"omitempty,max=150"`
	Content    string       `json:"content" db:"content" validate:"required,min=1,max=5000"`
	Status     string       `json:"status" db:"status"`
	EditCount  int          `json:"edit_count" db:"edit_count"`
	EditedAt   *time.Time   `json:"edited_at,omitempty" db:"edited_at"`
	IsDeleted  bool         `json:"-" db:"is_deleted"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
	Reply      *ReviewReply `json:"reply,omitempty" db:"-"`
}

// ReviewReply is the single, append-only owner reply to a review
type ReviewReply struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ReviewID   uuid.UUID  `json:"review_id" db:"review_id"`
	EntityType EntityType `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id" db:"entity_id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Content    string     `json:"content" db:"content" validate:"required,min=1,max=2000"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// RatingSummary is the derived aggregate over the published, non-deleted
// reviews of one entity. It is recomputed on demand and never persisted.
type RatingSummary struct {
	TotalReviews       int         `json:"total_reviews"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// ReviewRepository defines the interface for review and reply data access.
// Every read path excludes soft-deleted rows.
type ReviewRepository interface {
	// Create inserts a new review; a storage-level uniqueness violation on the
	// (entity, user) pair is translated to ErrDuplicateReview
	Create(ctx context.Context, review *Review) error

	// GetByID retrieves a review by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// HasActiveReview reports whether the user has a non-deleted review for the entity
	HasActiveReview(ctx context.Context, entity EntityType, entityID, userID uuid.UUID) (bool, error)

	// ListByEntity retrieves published reviews for an entity with pagination, newest first
	ListByEntity(ctx context.Context, entity EntityType, entityID uuid.UUID, limit, offset int) ([]*Review, error)

	// CountByEntity returns the number of published reviews for an entity
	CountByEntity(ctx context.Context, entity EntityType, entityID uuid.UUID) (int, error)

	// RatingsByEntity returns the published ratings of one entity
	RatingsByEntity(ctx context.Context, entity EntityType, entityID uuid.UUID) ([]int, error)

	// RatingsByEntities returns the published ratings for a batch of entities
	RatingsByEntities(ctx context.Context, entity EntityType, entityIDs []uuid.UUID) (map[uuid.UUID][]int, error)

	// Update applies an author edit
	Update(ctx context.Context, review *Review) error

	// SoftDelete marks a review deleted while retaining the row
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// CreateReply inserts the owner reply; a uniqueness violation on review_id
	// is translated to ErrDuplicateReply
	CreateReply(ctx context.Context, reply *ReviewReply) error

	// ReplyExists reports whether a review already has a reply
	ReplyExists(ctx context.Context, reviewID uuid.UUID) (bool, error)

	// RepliesByReviewIDs returns the replies for a batch of reviews
	RepliesByReviewIDs(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]*ReviewReply, error)
}
