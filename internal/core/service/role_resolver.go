package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

// RoleResolver maps a role reference (id or name) to a role id.
//
// An identifier-shaped reference is returned lower-cased without a store
// query unless strict is set, in which case its existence is checked. Any
// other reference is matched case-insensitively against the name of every
// stored role. Results are not cached: each name lookup scans all roles.
type RoleResolver struct {
	roles  ports.RoleRepository
	strict bool
}

func NewRoleResolver(roles ports.RoleRepository, strict bool) *RoleResolver {
	return &RoleResolver{roles: roles, strict: strict}
}

var _ ports.RoleResolver = (*RoleResolver)(nil)

// Resolve returns *domain.ReferenceNotFoundError when no role matches.
func (r *RoleResolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", domain.NewValidationError("role", "is required")
	}

	if id, ok := domain.CanonicalID(ref); ok {
		ref = id
		if !r.strict {
			return ref, nil
		}
		if _, err := r.roles.FindByID(ctx, ref); err != nil {
			if errors.Is(err, ports.ErrNoDocument) {
				return "", &domain.ReferenceNotFoundError{Input: ref}
			}
			return "", fmt.Errorf("resolve role: %w", err)
		}
		return ref, nil
	}

	roles, err := r.roles.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, ref) {
			return role.ID, nil
		}
	}
	return "", &domain.ReferenceNotFoundError{Input: ref}
}
