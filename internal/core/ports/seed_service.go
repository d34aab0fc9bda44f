package ports

import (
	"context"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// SeedResult holds the canonical entities after a seed run.
type SeedResult struct {
	Roles    []*domain.Role    `json:"roles"`
	Accounts []*domain.Account `json:"users"`
}

// SeedService idempotently creates the canonical roles and admin account.
type SeedService interface {
	Seed(ctx context.Context) (*SeedResult, error)
}

// SeedLocker serializes seed runs across processes. Release must be safe to
// call after the lock expired.
type SeedLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}
