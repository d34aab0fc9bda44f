package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
)

// SeedAccount holds the canonical admin account values.
type SeedAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SeedService upserts the admin and user roles and the admin account.
type SeedService struct {
	roles     ports.RoleRepository
	accounts  ports.AccountRepository
	hasher    ports.SecretHasher
	locker    ports.SeedLocker
	validator *validation.Validator
	admin     SeedAccount
	logger    zerolog.Logger
}

// NewSeedService returns a SeedService. locker may be nil, in which case
// concurrent seeds are not serialized and rely on the unique indexes. admin
// is checked against the account rules on every Seed.
func NewSeedService(
	roles ports.RoleRepository,
	accounts ports.AccountRepository,
	hasher ports.SecretHasher,
	locker ports.SeedLocker,
	admin SeedAccount,
	logger zerolog.Logger,
) *SeedService {
	return &SeedService{
		roles:     roles,
		accounts:  accounts,
		hasher:    hasher,
		locker:    locker,
		validator: validation.New(),
		admin:     admin,
		logger:    logger,
	}
}

var _ ports.SeedService = (*SeedService)(nil)

func canonicalRoles() []ports.NewRole {
	return []ports.NewRole{
		{
			Name:        domain.RoleAdmin,
			Description: "Administrator with full access",
			Permissions: append([]domain.Permission(nil), domain.AllPermissions...),
			IsActive:    true,
		},
		{
			Name:        domain.RoleUser,
			Description: "Regular user with read access",
			Permissions: []domain.Permission{domain.PermissionRead},
			IsActive:    true,
		},
	}
}

// Seed is idempotent: repeated runs return the same ids and reset the
// non-key fields to the canonical values. Each upsert is independent; a
// failure after the roles were written leaves them in place.
func (s *SeedService) Seed(ctx context.Context) (*ports.SeedResult, error) {
	admin := ports.CreateAccountInput{
		FirstName: s.admin.FirstName,
		LastName:  s.admin.LastName,
		Email:     s.admin.Email,
		Password:  s.admin.Password,
	}
	if err := s.validator.UnassignedAccount(&admin); err != nil {
		return nil, fmt.Errorf("seed: admin user: %w", err)
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("seed: acquire lock: %w", err)
		}
		defer release()
	}

	result := &ports.SeedResult{}
	for _, want := range canonicalRoles() {
		role, err := s.upsertRole(ctx, want)
		if err != nil {
			return nil, err
		}
		result.Roles = append(result.Roles, role)
	}

	account, err := s.upsertAccount(ctx, admin, result.Roles[0].ID)
	if err != nil {
		return nil, err
	}
	result.Accounts = append(result.Accounts, account)

	s.logger.Info().
		Str("admin_role_id", result.Roles[0].ID).
		Str("user_role_id", result.Roles[1].ID).
		Str("admin_user_id", account.ID).
		Msg("database seeded")

	return result, nil
}

func (s *SeedService) upsertRole(ctx context.Context, want ports.NewRole) (*domain.Role, error) {
	existing, err := s.roles.FindByName(ctx, want.Name)
	switch {
	case errors.Is(err, ports.ErrNoDocument):
		created, insertErr := s.roles.Insert(ctx, want)
		if insertErr == nil {
			return created, nil
		}
		var cv *ports.ConstraintViolation
		if !errors.As(insertErr, &cv) {
			return nil, fmt.Errorf("seed role %s: %w", want.Name, insertErr)
		}
		// Another seeder inserted it first; overwrite theirs.
		existing, err = s.roles.FindByName(ctx, want.Name)
		if err != nil {
			return nil, fmt.Errorf("seed role %s: %w", want.Name, err)
		}
	case err != nil:
		return nil, fmt.Errorf("seed role %s: %w", want.Name, err)
	}

	updated, err := s.roles.UpdateByID(ctx, existing.ID, ports.RolePatch{
		Description: &want.Description,
		Permissions: &want.Permissions,
		IsActive:    &want.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("seed role %s: %w", want.Name, err)
	}
	return updated, nil
}

func (s *SeedService) upsertAccount(ctx context.Context, admin ports.CreateAccountInput, adminRoleID string) (*domain.Account, error) {
	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return nil, fmt.Errorf("seed user: hash password: %w", err)
	}
	want := ports.NewAccount{
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		Email:        admin.Email,
		PasswordHash: hash,
		RoleID:       adminRoleID,
		IsActive:     true,
	}

	existing, err := s.accounts.FindByEmail(ctx, want.Email)
	switch {
	case errors.Is(err, ports.ErrNoDocument):
		created, insertErr := s.accounts.Insert(ctx, want)
		if insertErr == nil {
			return created, nil
		}
		var cv *ports.ConstraintViolation
		if !errors.As(insertErr, &cv) {
			return nil, fmt.Errorf("seed user %s: %w", want.Email, insertErr)
		}
		existing, err = s.accounts.FindByEmail(ctx, want.Email)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", want.Email, err)
		}
	case err != nil:
		return nil, fmt.Errorf("seed user %s: %w", want.Email, err)
	}

	empty := ""
	updated, err := s.accounts.UpdateByID(ctx, existing.ID, ports.AccountPatch{
		FirstName:        &want.FirstName,
		LastName:         &want.LastName,
		PasswordHash:     &want.PasswordHash,
		Phone:            &empty,
		ClearDateOfBirth: true,
		RoleID:           &want.RoleID,
		IsActive:         &want.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", want.Email, err)
	}
	return updated, nil
}
