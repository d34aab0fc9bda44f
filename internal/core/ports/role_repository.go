package ports

import (
	"context"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// NewRole is the normalized field set written on role insert.
type NewRole struct {
	Name        string
	Description string
	Permissions []domain.Permission
	IsActive    bool
}

// RolePatch carries the role fields to replace; nil means untouched.
type RolePatch struct {
	Name        *string
	Description *string
	Permissions *[]domain.Permission
	IsActive    *bool
}

// RoleRepository is the store collaborator for roles.
type RoleRepository interface {
	Insert(ctx context.Context, role NewRole) (*domain.Role, error)
	FindAll(ctx context.Context) ([]*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	// FindByName matches the stored name ignoring case; names are unique
	// under the same comparison.
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	UpdateByID(ctx context.Context, id string, patch RolePatch) (*domain.Role, error)
	// DeleteByID reports whether a document was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)
}
