package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/db/memory"
)

var testAdmin = SeedAccount{
	Email:     "Admin@Example.com",
	Password:  "admin123",
	FirstName: "Admin",
	LastName:  "User",
}

type recordingLocker struct {
	acquired int
	released int
	err      error
}

func (l *recordingLocker) Acquire(context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func() { l.released++ }, nil
}

func TestSeedService_Idempotent(t *testing.T) {
	store := memory.NewStore()
	locker := &recordingLocker{}
	svc := NewSeedService(store.Roles(), store.Accounts(), &fakeHasher{}, locker, testAdmin, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	second, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("second Seed returned error: %v", err)
	}

	if len(first.Roles) != 2 || len(first.Accounts) != 1 {
		t.Fatalf("unexpected seed result: %d roles, %d users", len(first.Roles), len(first.Accounts))
	}
	for i := range first.Roles {
		if first.Roles[i].ID != second.Roles[i].ID {
			t.Fatalf("role %d id changed: %s -> %s", i, first.Roles[i].ID, second.Roles[i].ID)
		}
	}
	if first.Accounts[0].ID != second.Accounts[0].ID {
		t.Fatalf("account id changed: %s -> %s", first.Accounts[0].ID, second.Accounts[0].ID)
	}

	roles, _ := store.Roles().FindAll(ctx)
	if len(roles) != 2 || store.Accounts().Len() != 1 {
		t.Fatalf("seed created duplicates: %d roles, %d users", len(roles), store.Accounts().Len())
	}
	if locker.acquired != 2 || locker.released != 2 {
		t.Fatalf("lock not balanced: acquired=%d released=%d", locker.acquired, locker.released)
	}
}

func TestSeedService_CanonicalValues(t *testing.T) {
	store := memory.NewStore()
	svc := NewSeedService(store.Roles(), store.Accounts(), &fakeHasher{}, nil, testAdmin, zerolog.Nop())

	res, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	admin, user := res.Roles[0], res.Roles[1]
	if admin.Name != domain.RoleAdmin || len(admin.Permissions) != len(domain.AllPermissions) {
		t.Fatalf("unexpected admin role: %+v", admin)
	}
	if user.Name != domain.RoleUser || len(user.Permissions) != 1 || user.Permissions[0] != domain.PermissionRead {
		t.Fatalf("unexpected user role: %+v", user)
	}

	acc := res.Accounts[0]
	if acc.Email != "admin@example.com" {
		t.Fatalf("seed email not normalized: %q", acc.Email)
	}
	if acc.Role.ID != admin.ID || acc.Role.Name != domain.RoleAdmin {
		t.Fatalf("seed account not linked to admin role: %+v", acc.Role)
	}
	if hash, _ := store.Accounts().PasswordHash(acc.ID); !isFakeHash(hash, "admin123") {
		t.Fatalf("seed password not hashed: %q", hash)
	}
}

func TestSeedService_OverwritesDrift(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	// Pre-existing rows with drifted non-key fields.
	adminRole, _ := store.Roles().Insert(ctx, ports.NewRole{Name: "admin", Description: "old", IsActive: false})
	dob := time.Date(1980, 5, 1, 0, 0, 0, 0, time.UTC)
	acc, _ := store.Accounts().Insert(ctx, ports.NewAccount{
		FirstName:   "Changed",
		LastName:    "Name",
		Email:       "admin@example.com",
		Phone:       "123",
		DateOfBirth: &dob,
		RoleID:      "507f1f77bcf86cd799439011",
	})

	svc := NewSeedService(store.Roles(), store.Accounts(), &fakeHasher{}, nil, testAdmin, zerolog.Nop())
	res, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}

	if res.Roles[0].ID != adminRole.ID {
		t.Fatalf("existing admin role not reused")
	}
	if res.Roles[0].Description != "Administrator with full access" || !res.Roles[0].IsActive {
		t.Fatalf("admin role not reset: %+v", res.Roles[0])
	}
	got := res.Accounts[0]
	if got.ID != acc.ID {
		t.Fatalf("existing admin account not reused")
	}
	if got.FirstName != "Admin" || got.Phone != "" || got.DateOfBirth != nil || !got.IsActive || got.Role.ID != adminRole.ID {
		t.Fatalf("admin account not reset: %+v", got)
	}
}

func TestSeedService_FailuresPropagate(t *testing.T) {
	boom := errors.New("lock held")
	store := memory.NewStore()
	svc := NewSeedService(store.Roles(), store.Accounts(), &fakeHasher{}, &recordingLocker{err: boom}, testAdmin, zerolog.Nop())
	if _, err := svc.Seed(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected lock error, got %v", err)
	}

	// Roles written before the account failure stay in place.
	roles := memory.NewStore().Roles()
	svc = NewSeedService(roles, downAccounts{}, &fakeHasher{}, nil, testAdmin, zerolog.Nop())
	_, err := svc.Seed(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	left, _ := roles.FindAll(context.Background())
	if len(left) != 2 {
		t.Fatalf("expected roles to remain after account failure, got %d", len(left))
	}
}

func TestSeedService_RejectsInvalidAdmin(t *testing.T) {
	tests := map[string]SeedAccount{
		"short password": {Email: "a@example.com", Password: "abc", FirstName: "Admin", LastName: "User"},
		"blank name":     {Email: "a@example.com", Password: "admin123", FirstName: "  ", LastName: "User"},
		"long password":  {Email: "a@example.com", Password: strings.Repeat("p", 73), FirstName: "Admin", LastName: "User"},
	}
	for name, admin := range tests {
		t.Run(name, func(t *testing.T) {
			store := memory.NewStore()
			hasher := &fakeHasher{}
			svc := NewSeedService(store.Roles(), store.Accounts(), hasher, nil, admin, zerolog.Nop())

			_, err := svc.Seed(context.Background())
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if hasher.calls != 0 || store.Accounts().Len() != 0 {
				t.Fatalf("invalid admin reached the hasher or the store")
			}
			if roles, _ := store.Roles().FindAll(context.Background()); len(roles) != 0 {
				t.Fatalf("roles written for an invalid admin: %d", len(roles))
			}
		})
	}
}

func TestSeedService_TrimsAdminNames(t *testing.T) {
	store := memory.NewStore()
	admin := testAdmin
	admin.FirstName = "  Admin "
	svc := NewSeedService(store.Roles(), store.Accounts(), &fakeHasher{}, nil, admin, zerolog.Nop())

	res, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed returned error: %v", err)
	}
	if got := res.Accounts[0]; got.FirstName != "Admin" || got.Email != "admin@example.com" {
		t.Fatalf("admin not normalized: %+v", got)
	}
}
