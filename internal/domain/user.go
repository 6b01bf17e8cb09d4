package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the access level attached to an authenticated identity.
type Role string

const (
	RoleUser          Role = "user"
	RoleBusinessOwner Role = "business_owner"
	RoleAdmin         Role = "admin"
)

// User represents a registered user of the directory
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email" validate:"required,email"`
	DisplayName string    `json:"display_name" db:"display_name" validate:"required,min=1,max=100"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UserRepository defines the interface for user and role data access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetRole retrieves the current role of a user; absent profiles default to RoleUser
	GetRole(ctx context.Context, id uuid.UUID) (Role, error)

	// UpdateRole sets the role of a user
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error

	// DisplayNames resolves a batch of user IDs to display names
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
