package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/local_directory/internal/domain"
)

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review. The partial unique index on
// (entity_type, entity_id, user_id) closes the check-then-insert race; its
// violation is reported as the same duplicate error the pre-check produces.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (entity_type, entity_id, user_id, rating, title, content, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, edit_count, is_deleted, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.EntityType,
		review.EntityID,
		review.UserID,
		review.Rating,
		review.Title,
		review.Content,
		review.Status,
	).Scan(
		&review.ID,
		&review.EditCount,
		&review.IsDeleted,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReview
		}
		return err
	}

	return nil
}

// GetByID retrieves a review by ID (excludes soft-deleted)
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `
		SELECT id, entity_type, entity_id, user_id, rating, title, content, status,
		       edit_count, edited_at, is_deleted, created_at, updated_at
		FROM reviews
		WHERE id = $1 AND NOT is_deleted
	`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// HasActiveReview reports whether the user has a non-deleted review for the
// entity. Soft-deleted rows are excluded so the user may review again.
func (r *ReviewRepository) HasActiveReview(ctx context.Context, entity domain.EntityType, entityID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reviews
			WHERE entity_type = $1 AND entity_id = $2 AND user_id = $3 AND NOT is_deleted
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entity, entityID, userID); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByEntity retrieves published reviews for an entity with pagination
func (r *ReviewRepository) ListByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	query := `
		SELECT id, entity_type, entity_id, user_id, rating, title, content, status,
		       edit_count, edited_at, is_deleted, created_at, updated_at
		FROM reviews
		WHERE entity_type = $1 AND entity_id = $2 AND status = $3 AND NOT is_deleted
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	var reviews []*domain.Review
	err := r.db.SelectContext(ctx, &reviews, query, entity, entityID, domain.ReviewStatusPublished, limit, offset)
	if err != nil {
		return nil, err
	}

	return reviews, nil
}

// CountByEntity returns the number of published reviews for an entity
func (r *ReviewRepository) CountByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM reviews
		WHERE entity_type = $1 AND entity_id = $2 AND status = $3 AND NOT is_deleted
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, entity, entityID, domain.ReviewStatusPublished); err != nil {
		return 0, err
	}
	return count, nil
}

// RatingsByEntity returns the published ratings of one entity
func (r *ReviewRepository) RatingsByEntity(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) ([]int, error) {
	query := `
		SELECT rating FROM reviews
		WHERE entity_type = $1 AND entity_id = $2 AND status = $3 AND NOT is_deleted
	`

	var ratings []int
	err := r.db.SelectContext(ctx, &ratings, query, entity, entityID, domain.ReviewStatusPublished)
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// RatingsByEntities returns the published ratings for a batch of entities
func (r *ReviewRepository) RatingsByEntities(ctx context.Context, entity domain.EntityType, entityIDs []uuid.UUID) (map[uuid.UUID][]int, error) {
	ratings := make(map[uuid.UUID][]int, len(entityIDs))
	if len(entityIDs) == 0 {
		return ratings, nil
	}

	query := `
		SELECT entity_id, rating FROM reviews
		WHERE entity_type = $1 AND entity_id = ANY($2::uuid[]) AND status = $3 AND NOT is_deleted
	`

	rows, err := r.db.QueryxContext(ctx, query, entity, pqUUIDArray(entityIDs), domain.ReviewStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entityID uuid.UUID
		var rating int
		if err := rows.Scan(&entityID, &rating); err != nil {
			return nil, err
		}
		ratings[entityID] = append(ratings[entityID], rating)
	}

	return ratings, rows.Err()
}

// Update applies an author edit, stamping edited_at and bumping edit_count
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $1, title = $2, content = $3, edit_count = $4,
		    edited_at = $5, updated_at = $5
		WHERE id = $6 AND NOT is_deleted
		RETURNING updated_at
	`

	now := time.Now()
	review.EditedAt = &now

	err := r.db.QueryRowxContext(
		ctx,
		query,
		review.Rating,
		review.Title,
		review.Content,
		review.EditCount,
		now,
		review.ID,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

// SoftDelete marks a review deleted; the row is retained for audit
func (r *ReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reviews
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND NOT is_deleted
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// CreateReply inserts the owner reply. The unique index on review_id closes
// the duplicate-reply race.
func (r *ReviewRepository) CreateReply(ctx context.Context, reply *domain.ReviewReply) error {
	query := `
		INSERT INTO review_replies (review_id, entity_type, entity_id, user_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		reply.ReviewID,
		reply.EntityType,
		reply.EntityID,
		reply.UserID,
		reply.Content,
	).Scan(
		&reply.ID,
		&reply.CreatedAt,
		&reply.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReply
		}
		return err
	}

	return nil
}

// ReplyExists reports whether a review already has a reply
func (r *ReviewRepository) ReplyExists(ctx context.Context, reviewID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM review_replies WHERE review_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, reviewID); err != nil {
		return false, err
	}
	return exists, nil
}

// RepliesByReviewIDs returns the replies for a batch of reviews
func (r *ReviewRepository) RepliesByReviewIDs(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]*domain.ReviewReply, error) {
	replies := make(map[uuid.UUID]*domain.ReviewReply, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return replies, nil
	}

	query := `
		SELECT id, review_id, entity_type, entity_id, user_id, content, created_at, updated_at
		FROM review_replies
		WHERE review_id = ANY($1::uuid[])
	`

	var rows []*domain.ReviewReply
	if err := r.db.SelectContext(ctx, &rows, query, pqUUIDArray(reviewIDs)); err != nil {
		return nil, err
	}

	for _, reply := range rows {
		replies[reply.ReviewID] = reply
	}
	return replies, nil
}
