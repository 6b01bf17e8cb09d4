package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/local_directory/internal/domain"
)

// LocationRepository implements domain.LocationRepository for PostgreSQL
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new PostgreSQL location repository
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// pqUUIDArray converts UUIDs to a pq array bindable as $n::uuid[]
func pqUUIDArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}

func (r *LocationRepository) namesByID(ctx context.Context, table string, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query := "SELECT id, name FROM " + table + " WHERE id = ANY($1::uuid[])"

	rows, err := r.db.QueryxContext(ctx, query, pqUUIDArray(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// CityNames resolves a batch of city IDs to names
func (r *LocationRepository) CityNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.namesByID(ctx, "cities", ids)
}

// AreaNames resolves a batch of area IDs to names
func (r *LocationRepository) AreaNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.namesByID(ctx, "areas", ids)
}

// CategoryNames resolves a batch of category IDs to names
func (r *LocationRepository) CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.namesByID(ctx, "categories", ids)
}

// CategoryBySlug resolves an active category slug within a family
func (r *LocationRepository) CategoryBySlug(ctx context.Context, entity domain.EntityType, slug string) (*domain.Category, error) {
	query := `
		SELECT id, slug, name, entity_type, is_active
		FROM categories
		WHERE entity_type = $1 AND slug = $2 AND is_active
	`

	var category domain.Category
	if err := r.db.GetContext(ctx, &category, query, entity, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// EntityIDsWithCategory returns the business IDs linked to a category
func (r *LocationRepository) EntityIDsWithCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT business_id FROM business_categories WHERE category_id = $1`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, categoryID); err != nil {
		return nil, err
	}
	return ids, nil
}

// CategoriesForEntities returns the categories linked to each business
func (r *LocationRepository) CategoriesForEntities(ctx context.Context, entityIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error) {
	categories := make(map[uuid.UUID][]domain.Category, len(entityIDs))
	if len(entityIDs) == 0 {
		return categories, nil
	}

	query := `
		SELECT bc.business_id, c.id, c.slug, c.name, c.entity_type, c.is_active
		FROM business_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.business_id = ANY($1::uuid[])
	`

	rows, err := r.db.QueryxContext(ctx, query, pqUUIDArray(entityIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var businessID uuid.UUID
		var c domain.Category
		if err := rows.Scan(&businessID, &c.ID, &c.Slug, &c.Name, &c.Entity, &c.IsActive); err != nil {
			return nil, err
		}
		categories[businessID] = append(categories[businessID], c)
	}
	return categories, rows.Err()
}

// LinkCategories attaches categories to a business
func (r *LocationRepository) LinkCategories(ctx context.Context, entityID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO business_categories (business_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	for _, categoryID := range categoryIDs {
		if _, err := r.db.ExecContext(ctx, query, entityID, categoryID); err != nil {
			return err
		}
	}
	return nil
}
