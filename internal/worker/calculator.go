package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
)

// Calculator maintains the denormalized average_rating and review_count
// columns on catalog rows. The authoritative summary is always recomputed
// from the reviews table; these columns only serve catalog display.
type Calculator struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewCalculator creates a new rating calculator
func NewCalculator(db *sqlx.DB, logger *logger.Logger) *Calculator {
	return &Calculator{
		db:     db,
		logger: logger,
	}
}

// CalculateAndUpdate recalculates the rating columns for one entity from the
// live review set. Full recalculation keeps the operation idempotent and
// self-correcting.
func (c *Calculator) CalculateAndUpdate(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) error {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return fmt.Errorf("unknown entity type %q", entity)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET
			average_rating = COALESCE(
				(SELECT ROUND(AVG(rating)::numeric, 1)
				 FROM reviews
				 WHERE entity_type = $1 AND entity_id = $2
				   AND status = 'published' AND NOT is_deleted),
				0
			),
			review_count = (
				SELECT COUNT(*)
				FROM reviews
				WHERE entity_type = $1 AND entity_id = $2
				  AND status = 'published' AND NOT is_deleted
			),
			updated_at = $3
		WHERE id = $2
	`, family.Table)

	result, err := c.db.ExecContext(ctx, query, entity, entityID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update rating for %s %s: %w", entity, entityID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// The entity may have been removed since the event was emitted;
		// nothing to recalculate.
		c.logger.WithFields(map[string]any{
			"entity_type": entity,
			"entity_id":   entityID.String(),
		}).Warn("Entity not found during rating recalculation")
		return nil
	}

	c.logger.WithFields(map[string]any{
		"entity_type": entity,
		"entity_id":   entityID.String(),
	}).Info("Rating recalculated")

	return nil
}
