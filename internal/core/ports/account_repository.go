package ports

import (
	"context"
	"time"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// NewAccount is the normalized field set written on account insert.
// PasswordHash is already hashed; RoleID is an unchecked reference.
type NewAccount struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	DateOfBirth  *time.Time
	RoleID       string
	IsActive     bool
}

// AccountPatch carries the account fields to replace; nil means untouched.
type AccountPatch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	Phone        *string
	DateOfBirth  *time.Time
	RoleID       *string
	IsActive     *bool

	// ClearDateOfBirth unsets the stored date; it wins over DateOfBirth.
	ClearDateOfBirth bool
}

// AccountRepository is the store collaborator for accounts. Every read
// returns accounts with the role populated and without the password hash.
type AccountRepository interface {
	Insert(ctx context.Context, account NewAccount) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// FindByEmail expects an already-normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateByID(ctx context.Context, id string, patch AccountPatch) (*domain.Account, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
}
