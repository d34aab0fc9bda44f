package ports

import (
	"context"
	"time"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// CreateAccountInput is the caller-supplied account field set. Role must
// already be a resolved role id.
type CreateAccountInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Phone       string
	DateOfBirth *time.Time
	Role        string
	IsActive    *bool // nil defaults to true
}

// UpdateAccountInput carries the fields to change; nil means untouched.
type UpdateAccountInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Password    *string
	Phone       *string
	DateOfBirth *time.Time
	Role        *string
	IsActive    *bool

	// ClearDateOfBirth removes the stored date; DateOfBirth is ignored.
	ClearDateOfBirth bool
}

// AccountService owns account create/find/update/delete.
type AccountService interface {
	Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, id string, input UpdateAccountInput) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}
