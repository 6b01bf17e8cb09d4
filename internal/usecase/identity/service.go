// Package identity resolves user roles and catalog entity ownership.
package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/local_directory/internal/domain"
	"github.com/Pesokrava/local_directory/internal/pkg/logger"
)

// Service is the role and ownership resolver. It is the only component that
// writes role state.
type Service struct {
	users   domain.UserRepository
	catalog domain.CatalogRepository
	logger  *logger.Logger
}

// NewService creates a new identity service
func NewService(users domain.UserRepository, catalog domain.CatalogRepository, log *logger.Logger) *Service {
	return &Service{
		users:   users,
		catalog: catalog,
		logger:  log,
	}
}

// GetRole returns the user's current role; absent profiles default to RoleUser
func (s *Service) GetRole(ctx context.Context, userID uuid.UUID) (domain.Role, error) {
	role, err := s.users.GetRole(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get user role", err)
		return "", err
	}
	return role, nil
}

// IsOwner reports whether the entity's owner reference equals userID. Admins
// are not implicitly owners; callers apply admin overrides where needed.
func (s *Service) IsOwner(ctx context.Context, entity domain.EntityType, entityID, userID uuid.UUID) (bool, error) {
	family, ok := domain.FamilyFor(entity)
	if !ok {
		return false, domain.ErrInvalidInput
	}

	record, err := s.catalog.GetByID(ctx, family, entityID)
	if err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to load entity for ownership check", err)
		}
		return false, err
	}

	return record.OwnerID == userID, nil
}

// PromoteIfFirstListing promotes a plain user to business_owner. Idempotent:
// it never demotes and never overrides admin.
func (s *Service) PromoteIfFirstListing(ctx context.Context, userID uuid.UUID) error {
	role, err := s.users.GetRole(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get role for promotion", err)
		return err
	}

	if role != domain.RoleUser {
		return nil
	}

	if err := s.users.UpdateRole(ctx, userID, domain.RoleBusinessOwner); err != nil {
		s.logger.Error("Failed to promote user to business owner", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"role":    domain.RoleBusinessOwner,
	}).Info("User promoted to business owner")

	return nil
}
