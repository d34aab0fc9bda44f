package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
)

// AccountService validates account field sets, hashes passwords and
// translates store failures into domain errors.
type AccountService struct {
	repo      ports.AccountRepository
	hasher    ports.SecretHasher
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.SecretHasher, v *validation.Validator, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, validator: v, logger: logger}
}

var _ ports.AccountService = (*AccountService)(nil)

// Create inserts a new account. The role in input must already be resolved.
func (s *AccountService) Create(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error) {
	if err := s.validator.CreateAccount(&input); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	created, err := s.repo.Insert(ctx, ports.NewAccount{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        input.Phone,
		DateOfBirth:  input.DateOfBirth,
		RoleID:       input.Role,
		IsActive:     active,
	})
	if err != nil {
		return nil, storeError("create user", domain.KindAccount, "", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("role_id", input.Role).Msg("user created")
	return created, nil
}

// FindAll returns every account with its role populated.
func (s *AccountService) FindAll(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return accounts, nil
}

// FindByID returns a *domain.NotFoundError when id names no account.
func (s *AccountService) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	id, ok := domain.CanonicalID(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindAccount, ID: id}
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", domain.KindAccount, id, err)
	}
	return account, nil
}

// Update replaces the fields present in input. A present password is
// re-hashed; the role is stored as given.
func (s *AccountService) Update(ctx context.Context, id string, input ports.UpdateAccountInput) (*domain.Account, error) {
	id, ok := domain.CanonicalID(id)
	if !ok {
		return nil, &domain.NotFoundError{Kind: domain.KindAccount, ID: id}
	}
	if err := s.validator.UpdateAccount(&input); err != nil {
		return nil, err
	}

	patch := ports.AccountPatch{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Phone:       input.Phone,
		DateOfBirth: input.DateOfBirth,
		RoleID:      input.Role,
		IsActive:    input.IsActive,

		ClearDateOfBirth: input.ClearDateOfBirth,
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	if accountPatchEmpty(patch) {
		return s.FindByID(ctx, id)
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, storeError("update user", domain.KindAccount, id, err)
	}

	s.logger.Info().Str("user_id", id).Bool("password_changed", patch.PasswordHash != nil).Msg("user updated")
	return updated, nil
}

// Delete hard-deletes the account.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	id, ok := domain.CanonicalID(id)
	if !ok {
		return &domain.NotFoundError{Kind: domain.KindAccount, ID: id}
	}
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return storeError("delete user", domain.KindAccount, id, err)
	}
	if !deleted {
		return &domain.NotFoundError{Kind: domain.KindAccount, ID: id}
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func accountPatchEmpty(p ports.AccountPatch) bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.PasswordHash == nil && p.Phone == nil && p.DateOfBirth == nil && !p.ClearDateOfBirth &&
		p.RoleID == nil && p.IsActive == nil
}
