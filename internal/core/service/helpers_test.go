package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/db/memory"
)

// fakeHasher prefixes the input so tests can tell hashes from plaintext.
type fakeHasher struct {
	mu    sync.Mutex
	calls int
}

func (h *fakeHasher) Hash(plaintext string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	return "hashed:" + plaintext, nil
}

func isFakeHash(s, plaintext string) bool {
	return strings.HasPrefix(s, "hashed:") && strings.TrimPrefix(s, "hashed:") == plaintext
}

var errDown = fmt.Errorf("dial tcp 127.0.0.1:27017: connection refused: %w", domain.ErrStoreUnavailable)

// downRoles fails every call the way an unreachable store does.
type downRoles struct{}

func (downRoles) Insert(context.Context, ports.NewRole) (*domain.Role, error) { return nil, errDown }
func (downRoles) FindAll(context.Context) ([]*domain.Role, error)             { return nil, errDown }
func (downRoles) FindByID(context.Context, string) (*domain.Role, error)      { return nil, errDown }
func (downRoles) FindByName(context.Context, string) (*domain.Role, error)    { return nil, errDown }
func (downRoles) UpdateByID(context.Context, string, ports.RolePatch) (*domain.Role, error) {
	return nil, errDown
}
func (downRoles) DeleteByID(context.Context, string) (bool, error) { return false, errDown }

type downAccounts struct{}

func (downAccounts) Insert(context.Context, ports.NewAccount) (*domain.Account, error) {
	return nil, errDown
}
func (downAccounts) FindAll(context.Context) ([]*domain.Account, error)        { return nil, errDown }
func (downAccounts) FindByID(context.Context, string) (*domain.Account, error) { return nil, errDown }
func (downAccounts) FindByEmail(context.Context, string) (*domain.Account, error) {
	return nil, errDown
}
func (downAccounts) UpdateByID(context.Context, string, ports.AccountPatch) (*domain.Account, error) {
	return nil, errDown
}
func (downAccounts) DeleteByID(context.Context, string) (bool, error)   { return false, errDown }
func (downAccounts) CountByRole(context.Context, string) (int64, error) { return 0, errDown }

// countingRoles records how many times the store was queried.
type countingRoles struct {
	ports.RoleRepository
	findAll  int
	findByID int
}

func (c *countingRoles) FindAll(ctx context.Context) ([]*domain.Role, error) {
	c.findAll++
	return c.RoleRepository.FindAll(ctx)
}

func (c *countingRoles) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	c.findByID++
	return c.RoleRepository.FindByID(ctx, id)
}

type fixture struct {
	store    *memory.Store
	hasher   *fakeHasher
	accounts *AccountService
	roles    *RoleService
	resolver *RoleResolver
}

func newFixture(policy DeletePolicy) *fixture {
	store := memory.NewStore()
	hasher := &fakeHasher{}
	v := validation.New()
	return &fixture{
		store:    store,
		hasher:   hasher,
		accounts: NewAccountService(store.Accounts(), hasher, v, zerolog.Nop()),
		roles:    NewRoleService(store.Roles(), store.Accounts(), v, policy, zerolog.Nop()),
		resolver: NewRoleResolver(store.Roles(), false),
	}
}

func (f *fixture) mustRole(name string, perms ...string) *domain.Role {
	role, err := f.roles.Create(context.Background(), ports.CreateRoleInput{
		Name:        name,
		Description: name + " role",
		Permissions: perms,
	})
	if err != nil {
		panic(err)
	}
	return role
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
