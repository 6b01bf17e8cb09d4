// Package catalog implements the catalog query engine: filtering, category
// scoping, sorting and pagination over both entity families.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/local_directory/internal/pkg/validator"
	"github.com/Pesokrava/local_directory/internal/usecase/rating"
)

// RoleResolver supplies role reads and first-listing promotion
type RoleResolver interface {
	GetRole(ctx context.Context, userID uuid.UUID) (domain.Role, error)
	PromoteIfFirstListing(ctx context.Context, userID uuid.UUID) error
}

// Service is the catalog query engine, shared by both entity families
type Service struct {
	catalog   domain.CatalogRepository
	locations domain.LocationRepository
	users     domain.UserRepository
	reviews   domain.ReviewRepository
	roles     RoleResolver
	validate  *validator.Validate
	logger    *logger.Logger
	pageSize  int
}

// NewService creates a new catalog service
func NewService(
	catalog domain.CatalogRepository,
	locations domain.LocationRepository,
	users domain.UserRepository,
	reviews domain.ReviewRepository,
	roles RoleResolver,
	pageSize int,
	log *logger.Logger,
) *Service {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &Service{
		catalog:   catalog,
		locations: locations,
		users:     users,
		reviews:   reviews,
		roles:     roles,
		validate:  pkgvalidator.Get(),
		logger:    log,
		pageSize:  pageSize,
	}
}

// List runs the query engine: filter, category scoping, stable sort, then
// paginate and enrich. Category membership for businesses is intersected
// against the full filtered set before pagination so total counts stay
// correct; a category slug that fails to resolve yields an empty page rather
// than an error, so browsing never hard-fails on a stale filter link.
func (s *Service) List(ctx context.Context, entity domain.EntityType, filter domain.CatalogFilter, sortBy string, page int) (*domain.CatalogPage, error) {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	if page < 1 {
		page = 1
	}

	if filter.CategorySlug != "" && filter.CategoryID == nil {
		category, err := s.locations.CategoryBySlug(ctx, entity, filter.CategorySlug)
		if err != nil {
			if err == domain.ErrNotFound {
				return s.emptyPage(page), nil
			}
			s.logger.Error("Failed to resolve category slug", err)
			return nil, err
		}
		filter.CategoryID = &category.ID
	}

	entities, err := s.catalog.List(ctx, family, filter)
	if err != nil {
		s.logger.Error("Failed to list catalog entities", err)
		return nil, err
	}

	// Second pass: many-to-many category membership, applied to the full
	// filtered set before pagination.
	if filter.CategoryID != nil && family.ManyCategories {
		memberIDs, err := s.locations.EntityIDsWithCategory(ctx, *filter.CategoryID)
		if err != nil {
			s.logger.Error("Failed to load category membership", err)
			return nil, err
		}
		entities = intersectByID(entities, memberIDs)
	}

	sortEntities(entities, sortBy)

	total := len(entities)
	totalPages := (total + s.pageSize - 1) / s.pageSize

	start := (page - 1) * s.pageSize
	if start > total {
		start = total
	}
	end := start + s.pageSize
	if end > total {
		end = total
	}
	pageItems := entities[start:end]

	enriched, err := s.enrich(ctx, family, pageItems)
	if err != nil {
		return nil, err
	}

	return &domain.CatalogPage{
		Items:      enriched,
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetBySlug retrieves one enriched entity by its per-family unique slug
func (s *Service) GetBySlug(ctx context.Context, entity domain.EntityType, slug string) (*domain.EnrichedEntity, error) {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	record, err := s.catalog.GetBySlug(ctx, family, slug)
	if err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to get entity by slug", err)
		}
		return nil, err
	}

	enriched, err := s.enrich(ctx, family, []*domain.CatalogEntity{record})
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

// Create inserts a new listing with a generated slug and the family's initial
// status. Creating a first business listing promotes a plain user to
// business_owner.
func (s *Service) Create(ctx context.Context, entity domain.EntityType, ownerID uuid.UUID, input domain.NewCatalogInput) (*domain.CatalogEntity, error) {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	if err := s.validate.Struct(input); err != nil {
		s.logger.Error("Listing validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	slug, err := s.uniqueSlug(ctx, family, input.Name)
	if err != nil {
		s.logger.Error("Failed to generate slug", err)
		return nil, err
	}

	record := &domain.CatalogEntity{
		Slug:        slug,
		Name:        input.Name,
		Description: input.Description,
		CityID:      input.CityID,
		AreaID:      input.AreaID,
		OwnerID:     ownerID,
		Status:      family.InitialStatus,
	}
	if !family.ManyCategories && len(input.CategoryIDs) > 0 {
		record.CategoryID = &input.CategoryIDs[0]
	}

	if err := s.catalog.Create(ctx, family, record); err != nil {
		s.logger.Error("Failed to create listing", err)
		return nil, err
	}

	if family.ManyCategories {
		if err := s.locations.LinkCategories(ctx, record.ID, input.CategoryIDs); err != nil {
			// The listing row is committed; report the partial failure
			// without discarding it.
			s.logger.Errorf(err, "Listing %s created but category links failed", record.ID)
		}

		if err := s.roles.PromoteIfFirstListing(ctx, ownerID); err != nil {
			s.logger.Warnf("Failed to promote user %s: %v", ownerID, err)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"entity_type": entity,
		"entity_id":   record.ID,
		"slug":        record.Slug,
	}).Info("Listing created successfully")

	return record, nil
}

// UpdateStatus applies an admin-only lifecycle transition
func (s *Service) UpdateStatus(ctx context.Context, entity domain.EntityType, id uuid.UUID, status string, actorID uuid.UUID) error {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return domain.ErrInvalidInput
	}
	if !family.ValidStatus(status) {
		return domain.ErrInvalidInput
	}

	role, err := s.roles.GetRole(ctx, actorID)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	var publishedAt *time.Time
	if status == domain.StatusPublished {
		now := time.Now()
		publishedAt = &now
	}

	if err := s.catalog.UpdateStatus(ctx, family, id, status, publishedAt); err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to update listing status", err)
		}
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"entity_type": entity,
		"entity_id":   id,
		"status":      status,
	}).Info("Listing status updated")

	return nil
}

func (s *Service) emptyPage(page int) *domain.CatalogPage {
	return &domain.CatalogPage{
		Items:      []*domain.EnrichedEntity{},
		Total:      0,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: 0,
	}
}

// enrich joins a page of entities to city, area, category and owner names by
// secondary lookups, and attaches a live rating summary to businesses.
func (s *Service) enrich(ctx context.Context, family domain.Family, entities []*domain.CatalogEntity) ([]*domain.EnrichedEntity, error) {
	enriched := make([]*domain.EnrichedEntity, 0, len(entities))
	if len(entities) == 0 {
		return enriched, nil
	}

	var cityIDs, areaIDs, categoryIDs, ownerIDs, entityIDs []uuid.UUID
	for _, e := range entities {
		cityIDs = append(cityIDs, e.CityID)
		if e.AreaID != nil {
			areaIDs = append(areaIDs, *e.AreaID)
		}
		if e.CategoryID != nil {
			categoryIDs = append(categoryIDs, *e.CategoryID)
		}
		ownerIDs = append(ownerIDs, e.OwnerID)
		entityIDs = append(entityIDs, e.ID)
	}

	cityNames, err := s.locations.CityNames(ctx, cityIDs)
	if err != nil {
		s.logger.Error("Failed to resolve city names", err)
		return nil, err
	}
	areaNames, err := s.locations.AreaNames(ctx, areaIDs)
	if err != nil {
		s.logger.Error("Failed to resolve area names", err)
		return nil, err
	}
	ownerNames, err := s.users.DisplayNames(ctx, ownerIDs)
	if err != nil {
		s.logger.Error("Failed to resolve owner names", err)
		return nil, err
	}

	var linkedCategories map[uuid.UUID][]domain.Category
	var categoryNames map[uuid.UUID]string
	if family.ManyCategories {
		linkedCategories, err = s.locations.CategoriesForEntities(ctx, entityIDs)
	} else {
		categoryNames, err = s.locations.CategoryNames(ctx, categoryIDs)
	}
	if err != nil {
		s.logger.Error("Failed to resolve categories", err)
		return nil, err
	}

	var ratings map[uuid.UUID][]int
	if family.Entity == domain.EntityTypeBusiness {
		ratings, err = s.reviews.RatingsByEntities(ctx, family.Entity, entityIDs)
		if err != nil {
			s.logger.Error("Failed to load ratings for enrichment", err)
			return nil, err
		}
	}

	for _, e := range entities {
		item := &domain.EnrichedEntity{
			CatalogEntity: *e,
			CityName:      cityNames[e.CityID],
			OwnerName:     ownerNames[e.OwnerID],
		}
		if e.AreaID != nil {
			if name, ok := areaNames[*e.AreaID]; ok {
				item.AreaName = &name
			}
		}
		if family.ManyCategories {
			for _, c := range linkedCategories[e.ID] {
				item.CategoryNames = append(item.CategoryNames, c.Name)
			}
		} else if e.CategoryID != nil {
			if name, ok := categoryNames[*e.CategoryID]; ok {
				item.CategoryNames = []string{name}
			}
		}
		if ratings != nil {
			summary := rating.Summarize(ratings[e.ID])
			item.Rating = &summary
		}
		enriched = append(enriched, item)
	}

	return enriched, nil
}

// uniqueSlug derives a URL slug from the listing name, suffixing on collision
func (s *Service) uniqueSlug(ctx context.Context, family domain.Family, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = string(family.Entity)
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.catalog.SlugExists(ctx, family, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// sortEntities applies a stable ordering. Newest is the default; boolean
// sorts put the flag first and break ties by recency.
func sortEntities(entities []*domain.CatalogEntity, sortBy string) {
	switch sortBy {
	case domain.SortName:
		sort.SliceStable(entities, func(i, j int) bool {
			return strings.ToLower(entities[i].Name) < strings.ToLower(entities[j].Name)
		})
	case domain.SortVerified:
		sort.SliceStable(entities, func(i, j int) bool {
			if entities[i].IsVerified != entities[j].IsVerified {
				return entities[i].IsVerified
			}
			return entities[i].CreatedAt.After(entities[j].CreatedAt)
		})
	case domain.SortFeatured:
		sort.SliceStable(entities, func(i, j int) bool {
			if entities[i].IsFeatured != entities[j].IsFeatured {
				return entities[i].IsFeatured
			}
			return entities[i].CreatedAt.After(entities[j].CreatedAt)
		})
	default: // domain.SortNewest
		sort.SliceStable(entities, func(i, j int) bool {
			return entities[i].CreatedAt.After(entities[j].CreatedAt)
		})
	}
}

// intersectByID keeps the entities whose IDs appear in the membership set,
// preserving order.
func intersectByID(entities []*domain.CatalogEntity, ids []uuid.UUID) []*domain.CatalogEntity {
	member := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		member[id] = struct{}{}
	}

	kept := entities[:0]
	for _, e := range entities {
		if _, ok := member[e.ID]; ok {
			kept = append(kept, e)
		}
	}
	return kept
}
