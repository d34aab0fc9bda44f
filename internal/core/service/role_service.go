package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
)

// DeletePolicy decides whether a role referenced by accounts may be deleted.
type DeletePolicy string

const (
	// DeleteAllow deletes unconditionally; referencing accounts keep a
	// dangling role id.
	DeleteAllow DeletePolicy = "allow"
	// DeleteRestrict refuses with *domain.RoleInUseError while any account
	// references the role.
	DeleteRestrict DeletePolicy = "restrict"
)

// RoleService validates role field sets and translates store failures into
// domain errors.
type RoleService struct {
	repo      ports.RoleRepository
	accounts  ports.AccountRepository
	validator *validation.Validator
	policy    DeletePolicy
	logger    zerolog.Logger
}

// NewRoleService returns a RoleService. accounts is only consulted under
// DeleteRestrict and may be nil otherwise.
func NewRoleService(repo ports.RoleRepository, accounts ports.AccountRepository, v *validation.Validator, policy DeletePolicy, logger zerolog.Logger) *RoleService {
	if policy == "" {
		policy = DeleteAllow
	}
	return &RoleService{repo: repo, accounts: accounts, validator: v, policy: policy, logger: logger}
}

var _ ports.RoleService = (*RoleService)(nil)

func (s *RoleService) Create(ctx context.Context, input ports.CreateRoleInput) (*domain.Role, error) {
	if err := s.validator.CreateRole(&input); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	created, err := s.repo.Insert(ctx, ports.NewRole{
		Name:        input.Name,
		Description: input.Description,
		Permissions: validation.Permissions(input.Permissions),
		IsActive:    active,
	})
	if err != nil {
		return nil, storeError("create role", domain.KindRole, "", err)
	}

	s.logger.Info().Str("role_id", created.ID).Str("name", created.Name).Msg("role created")
	return created, nil
}

func (s *RoleService) FindAll(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *RoleService) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	id, ok := domain.CanonicalID(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindRole, ID: id}
	}
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find role", domain.KindRole, id, err)
	}
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, id string, input ports.UpdateRoleInput) (*domain.Role, error) {
	id, ok := domain.CanonicalID(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindRole, ID: id}
	}
	if err := s.validator.UpdateRole(&input); err != nil {
		return nil, err
	}

	patch := ports.RolePatch{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	if input.Permissions != nil {
		perms := validation.Permissions(*input.Permissions)
		patch.Permissions = &perms
	}

	if patch.Name == nil && patch.Description == nil && patch.Permissions == nil && patch.IsActive == nil {
		return s.FindByID(ctx, id)
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, storeError("update role", domain.KindRole, id, err)
	}

	s.logger.Info().Str("role_id", id).Msg("role updated")
	return updated, nil
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	id, ok := domain.CanonicalID(id)
	if !ok {
		return &domain.NotFoundError{Kind: domain.KindRole, ID: id}
	}

	if s.policy == DeleteRestrict {
		if _, err := s.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := s.accounts.CountByRole(ctx, id)
		if err != nil {
			return fmt.Errorf("delete role: count users: %w", err)
		}
		if n > 0 {
			return &domain.RoleInUseError{ID: id, Accounts: n}
		}
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return storeError("delete role", domain.KindRole, id, err)
	}
	if !deleted {
		return &domain.NotFoundError{Kind: domain.KindRole, ID: id}
	}

	s.logger.Info().Str("role_id", id).Str("policy", string(s.policy)).Msg("role deleted")
	return nil
}
