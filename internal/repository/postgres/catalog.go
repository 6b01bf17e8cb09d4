package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/local_directory/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository for PostgreSQL. One
// implementation serves both entity families; the family descriptor supplies
// the table, the owner column and the category relation shape.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new PostgreSQL catalog repository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// selectColumns builds the column list for a family. The owner column is
// aliased to owner_id and businesses get a NULL category_id so both families
// scan into the same struct.
func selectColumns(f domain.Family) string {
	categoryCol := "NULL::uuid AS category_id"
	if !f.ManyCategories {
		categoryCol = "category_id"
	}
	return fmt.Sprintf(
		"id, slug, name, description, city_id, area_id, %s, %s AS owner_id, status, is_featured, is_verified, average_rating, review_count, created_at, updated_at, published_at",
		categoryCol, f.OwnerColumn,
	)
}

// List retrieves the full filtered set, newest first. The category predicate
// is included here only for the single-category family; the many-to-many
// membership pass belongs to the query engine so that pagination counts stay
// correct.
func (r *CatalogRepository) List(ctx context.Context, family domain.Family, filter domain.CatalogFilter) ([]*domain.CatalogEntity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", selectColumns(family), family.Table)

	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" && filter.Status != domain.StatusAll {
		clauses = append(clauses, "status = "+arg(filter.Status))
	}
	if filter.Search != "" {
		clauses = append(clauses, "name ILIKE "+arg("%"+filter.Search+"%"))
	}
	if filter.CityID != nil {
		clauses = append(clauses, "city_id = "+arg(*filter.CityID))
	}
	if filter.AreaID != nil {
		clauses = append(clauses, "area_id = "+arg(*filter.AreaID))
	}
	if filter.OwnerID != nil {
		clauses = append(clauses, family.OwnerColumn+" = "+arg(*filter.OwnerID))
	}
	if filter.Featured != nil {
		clauses = append(clauses, "is_featured = "+arg(*filter.Featured))
	}
	if filter.CategoryID != nil && !family.ManyCategories {
		clauses = append(clauses, "category_id = "+arg(*filter.CategoryID))
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	var entities []*domain.CatalogEntity
	if err := r.db.SelectContext(ctx, &entities, query, args...); err != nil {
		return nil, err
	}

	for _, e := range entities {
		e.EntityType = family.Entity
	}
	return entities, nil
}

// GetByID retrieves an entity by ID
func (r *CatalogRepository) GetByID(ctx context.Context, family domain.Family, id uuid.UUID) (*domain.CatalogEntity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns(family), family.Table)

	var entity domain.CatalogEntity
	if err := r.db.GetContext(ctx, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	entity.EntityType = family.Entity
	return &entity, nil
}

// GetBySlug retrieves an entity by its per-family unique slug
func (r *CatalogRepository) GetBySlug(ctx context.Context, family domain.Family, slug string) (*domain.CatalogEntity, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE slug = $1", selectColumns(family), family.Table)

	var entity domain.CatalogEntity
	if err := r.db.GetContext(ctx, &entity, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	entity.EntityType = family.Entity
	return &entity, nil
}

// Create inserts a new entity. Slug collisions surface as domain.ErrConflict.
func (r *CatalogRepository) Create(ctx context.Context, family domain.Family, entity *domain.CatalogEntity) error {
	var query string
	var row *sqlx.Row

	if family.ManyCategories {
		query = fmt.Sprintf(`
			INSERT INTO %s (slug, name, description, city_id, area_id, %s, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, family.Table, family.OwnerColumn)
		row = r.db.QueryRowxContext(ctx, query,
			entity.Slug, entity.Name, entity.Description,
			entity.CityID, entity.AreaID, entity.OwnerID, entity.Status,
		)
	} else {
		query = fmt.Sprintf(`
			INSERT INTO %s (slug, name, description, city_id, area_id, category_id, %s, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`, family.Table, family.OwnerColumn)
		row = r.db.QueryRowxContext(ctx, query,
			entity.Slug, entity.Name, entity.Description,
			entity.CityID, entity.AreaID, entity.CategoryID, entity.OwnerID, entity.Status,
		)
	}

	if err := row.Scan(&entity.ID, &entity.CreatedAt, &entity.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}

	entity.EntityType = family.Entity
	return nil
}

// UpdateStatus applies an admin status transition
func (r *CatalogRepository) UpdateStatus(ctx context.Context, family domain.Family, id uuid.UUID, status string, publishedAt *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = $2, published_at = COALESCE($3, published_at)
		WHERE id = $4
	`, family.Table)

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), publishedAt, id)
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

// SlugExists reports whether a slug is already taken within the family
func (r *CatalogRepository) SlugExists(ctx context.Context, family domain.Family, slug string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)", family.Table)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, err
	}
	return exists, nil
}
