package ports

import (
	"context"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// CreateRoleInput is the caller-supplied role field set.
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
	IsActive    *bool // nil defaults to true
}

// UpdateRoleInput carries the fields to change; nil means untouched.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions *[]string
	IsActive    *bool
}

// RoleService owns role create/find/update/delete.
type RoleService interface {
	Create(ctx context.Context, input CreateRoleInput) (*domain.Role, error)
	FindAll(ctx context.Context) ([]*domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	Update(ctx context.Context, id string, input UpdateRoleInput) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
}

// RoleResolver turns a role id or role name into a canonical role id.
type RoleResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}
