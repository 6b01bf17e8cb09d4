package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies one of the two catalog entity families.
type EntityType string

const (
	EntityTypeBusiness     EntityType = "business"
	EntityTypeTourismPlace EntityType = "tourism_place"
)

// Lifecycle statuses shared by both families. Businesses start as pending and
// can additionally be suspended; tourism places start as draft.
const (
	StatusPending   = "pending"
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusRejected  = "rejected"
	StatusSuspended = "suspended"

	// StatusAll bypasses the status filter predicate
	StatusAll = "all"
)

// Family describes how one entity family is stored, so that a single query
// engine can serve both. ManyCategories selects between the link-table
// relation (businesses) and the single category_id column (tourism places).
type Family struct {
	Entity         EntityType
	Table          string
	OwnerColumn    string
	ManyCategories bool
	Statuses       []string
	InitialStatus  string
}

var (
	BusinessFamily = Family{
		Entity:         EntityTypeBusiness,
		Table:          "businesses",
		OwnerColumn:    "owner_id",
		ManyCategories: true,
		Statuses:       []string{StatusPending, StatusPublished, StatusRejected, StatusSuspended},
		InitialStatus:  StatusPending,
	}

	TourismFamily = Family{
		Entity:         EntityTypeTourismPlace,
		Table:          "tourism_places",
		OwnerColumn:    "created_by",
		ManyCategories: false,
		Statuses:       []string{StatusDraft, StatusPublished, StatusRejected},
		InitialStatus:  StatusDraft,
	}
)

// FamilyFor maps an entity type to its family descriptor.
func FamilyFor(entity EntityType) (Family, bool) {
	switch entity {
	case EntityTypeBusiness:
		return BusinessFamily, true
	case EntityTypeTourismPlace:
		return TourismFamily, true
	default:
		return Family{}, false
	}
}

// ValidStatus reports whether status is a lifecycle status of this family.
func (f Family) ValidStatus(status string) bool {
	for _, s := range f.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// CatalogEntity is the shared shape of both entity families. CategoryID is
// only populated for tourism places; business categories live in the link
// table and are attached during enrichment.
type CatalogEntity struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	EntityType    EntityType `json:"entity_type" db:"-"`
	Slug          string     `json:"slug" db:"slug"`
	Name          string     `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description   *string    `json:"description,omitempty" db:"description"`
	CityID        uuid.UUID  `json:"city_id" db:"city_id" validate:"required"`
	AreaID        *uuid.UUID `json:"area_id,omitempty" db:"area_id"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	OwnerID       uuid.UUID  `json:"owner_id" db:"owner_id"`
	Status        string     `json:"status" db:"status"`
	IsFeatured    bool       `json:"is_featured" db:"is_featured"`
	IsVerified    bool       `json:"is_verified" db:"is_verified"`
	AverageRating float64    `json:"average_rating" db:"average_rating"`
	ReviewCount   int        `json:"review_count" db:"review_count"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	PublishedAt   *time.Time `json:"published_at,omitempty" db:"published_at"`
}

// EnrichedEntity is a catalog entity joined to its related display names and,
// for businesses, a live rating summary.
type EnrichedEntity struct {
	CatalogEntity
	CityName      string         `json:"city_name"`
	AreaName      *string        `json:"area_name,omitempty"`
	CategoryNames []string       `json:"category_names,omitempty"`
	OwnerName     string         `json:"owner_name"`
	Rating        *RatingSummary `json:"rating,omitempty"`
}

// Sort orders available to the catalog query engine.
const (
	SortNewest   = "newest"
	SortName     = "name"
	SortVerified = "verified"
	SortFeatured = "featured"
)

// CatalogFilter is the closed set of filter predicates. All predicates are
// optional and conjunctive. An empty or "all" Status bypasses the status
// predicate. CategorySlug is resolved to an id against the family's active
// category set; a failed resolution yields an empty result set, not an error.
type CatalogFilter struct {
	Status       string
	Search       string
	CityID       *uuid.UUID
	AreaID       *uuid.UUID
	CategoryID   *uuid.UUID
	CategorySlug string
	OwnerID      *uuid.UUID
	Featured     *bool
}

// CatalogPage is one page of enriched catalog results.
type CatalogPage struct {
	Items      []*EnrichedEntity `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// NewCatalogInput carries the caller-supplied fields for listing creation.
type NewCatalogInput struct {
	Name        string      `json:"name" validate:"required,min=1,max=255"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=5000"`
	CityID      uuid.UUID   `json:"city_id" validate:"required"`
	AreaID      *uuid.UUID  `json:"area_id,omitempty"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
}

// CatalogRepository defines family-parameterized access to catalog entities.
// List returns the full filtered set ordered by creation time descending;
// category membership, sorting and pagination are applied by the query engine
// on top of it.
type CatalogRepository interface {
	// List retrieves all entities matching the filter, except the category
	// predicate for the many-to-many family, newest first
	List(ctx context.Context, family Family, filter CatalogFilter) ([]*CatalogEntity, error)

	// GetByID retrieves an entity by ID
	GetByID(ctx context.Context, family Family, id uuid.UUID) (*CatalogEntity, error)

	// GetBySlug retrieves an entity by its per-family unique slug
	GetBySlug(ctx context.Context, family Family, slug string) (*CatalogEntity, error)

	// Create inserts a new entity
	Create(ctx context.Context, family Family, entity *CatalogEntity) error

	// UpdateStatus applies an admin status transition
	UpdateStatus(ctx context.Context, family Family, id uuid.UUID, status string, publishedAt *time.Time) error

	// SlugExists reports whether a slug is already taken within the family
	SlugExists(ctx context.Context, family Family, slug string) (bool, error)
}

// City is a top-level location reference.
type City struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}

// Area is a subdivision of a city.
type Area struct {
	ID     uuid.UUID `json:"id" db:"id"`
	CityID uuid.UUID `json:"city_id" db:"city_id"`
	Name   string    `json:"name" db:"name"`
}

// Category classifies catalog entities within one family.
type Category struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Slug     string     `json:"slug" db:"slug"`
	Name     string     `json:"name" db:"name"`
	Entity   EntityType `json:"entity_type" db:"entity_type"`
	IsActive bool       `json:"is_active" db:"is_active"`
}

// LocationRepository defines access to cities, areas and categories,
// including the business category link table.
type LocationRepository interface {
	// CityNames resolves a batch of city IDs to names
	CityNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// AreaNames resolves a batch of area IDs to names
	AreaNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// CategoryBySlug resolves an active category slug within a family
	CategoryBySlug(ctx context.Context, entity EntityType, slug string) (*Category, error)

	// CategoryNames resolves a batch of category IDs to names
	CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// EntityIDsWithCategory returns the business IDs linked to a category
	EntityIDsWithCategory(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error)

	// CategoriesForEntities returns the categories linked to each business
	CategoriesForEntities(ctx context.Context, entityIDs []uuid.UUID) (map[uuid.UUID][]Category, error)

	// LinkCategories attaches categories to a business
	LinkCategories(ctx context.Context, entityID uuid.UUID, categoryIDs []uuid.UUID) error
}
