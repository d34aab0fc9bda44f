package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
)

func TestAccountService_CreateThenFind(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("admin", "read", "write")

	dob := time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)
	created, err := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName:   "  Jane ",
		LastName:    "Roe",
		Email:       " Jane.Roe@Example.COM ",
		Password:    "secret1",
		Phone:       "+1 555 0100",
		DateOfBirth: &dob,
		Role:        role.ID,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := f.accounts.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.FirstName != "Jane" || got.LastName != "Roe" {
		t.Fatalf("unexpected name: %q %q", got.FirstName, got.LastName)
	}
	if got.Email != "jane.roe@example.com" {
		t.Fatalf("email not normalized: %q", got.Email)
	}
	if got.Phone != "+1 555 0100" || got.DateOfBirth == nil || !got.DateOfBirth.Equal(dob) {
		t.Fatalf("optional fields not kept: %+v", got)
	}
	if !got.IsActive {
		t.Fatalf("expected isActive to default to true")
	}
	if got.Role.ID != role.ID || got.Role.Name != "admin" {
		t.Fatalf("role not populated: %+v", got.Role)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), "secret1") {
		t.Fatalf("rendered account leaks the secret: %s", raw)
	}

	hash, ok := f.store.Accounts().PasswordHash(created.ID)
	if !ok || !isFakeHash(hash, "secret1") {
		t.Fatalf("password not stored as hash: %q", hash)
	}
}

func TestAccountService_CreateDuplicateEmail(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("user", "read")

	first, err := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "One", Email: "dup@example.com", Password: "secret1", Role: role.ID,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "B", LastName: "Two", Email: "DUP@Example.com", Password: "secret2", Role: role.ID,
	})
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "email" {
		t.Fatalf("expected DuplicateKeyError on email, got %v", err)
	}

	got, err := f.accounts.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("first account no longer retrievable: %v", err)
	}
	if got.FirstName != "A" || got.Email != "dup@example.com" {
		t.Fatalf("first account changed: %+v", got)
	}
}

func TestAccountService_CreateValidation(t *testing.T) {
	f := newFixture(DeleteAllow)

	_, err := f.accounts.Create(context.Background(), ports.CreateAccountInput{
		FirstName: " ",
		Email:     "x@example.com",
		Password:  "abc",
		Role:      "not-an-id",
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"firstName": true, "lastName": true, "password": true, "role": true}
	for _, field := range ve.Fields() {
		delete(want, field)
	}
	if len(want) != 0 {
		t.Fatalf("missing violations for %v in %v", want, ve.Fields())
	}
	if f.hasher.calls != 0 {
		t.Fatalf("hasher called for invalid input")
	}
	if f.store.Accounts().Len() != 0 {
		t.Fatalf("invalid input reached the store")
	}
}

func TestAccountService_UpdateRehashesOnlyWhenPresent(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("user", "read")

	created, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "One", Email: "a@example.com", Password: "secret1", Role: role.ID,
	})

	updated, err := f.accounts.Update(ctx, created.ID, ports.UpdateAccountInput{FirstName: strPtr("Alice")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.FirstName != "Alice" || updated.LastName != "One" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if hash, _ := f.store.Accounts().PasswordHash(created.ID); !isFakeHash(hash, "secret1") {
		t.Fatalf("password changed by an update that omitted it: %q", hash)
	}

	if _, err := f.accounts.Update(ctx, created.ID, ports.UpdateAccountInput{Password: strPtr("newsecret")}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if hash, _ := f.store.Accounts().PasswordHash(created.ID); !isFakeHash(hash, "newsecret") {
		t.Fatalf("password not re-hashed: %q", hash)
	}

	_, err = f.accounts.Update(ctx, created.ID, ports.UpdateAccountInput{Password: strPtr("short")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestAccountService_UpdateMissing(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()

	for _, id := range []string{"507f1f77bcf86cd799439011", "nope"} {
		_, err := f.accounts.Update(ctx, id, ports.UpdateAccountInput{FirstName: strPtr("X")})
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) || nf.Kind != domain.KindAccount || nf.ID != id {
			t.Fatalf("Update(%q): expected NotFoundError, got %v", id, err)
		}
	}
	if f.store.Accounts().Len() != 0 {
		t.Fatalf("update on a missing id created a record")
	}
}

func TestAccountService_EmptyUpdateReturnsCurrent(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("user", "read")
	created, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "One", Email: "a@example.com", Password: "secret1", Role: role.ID,
	})

	got, err := f.accounts.Update(ctx, created.ID, ports.UpdateAccountInput{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.ID != created.ID || !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("empty update modified the record: %+v", got)
	}
}

func TestAccountService_Delete(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("user", "read")
	created, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "One", Email: "a@example.com", Password: "secret1", Role: role.ID,
	})

	if err := f.accounts.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := f.accounts.Delete(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := f.accounts.FindByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAccountService_StoreUnavailable(t *testing.T) {
	svc := NewAccountService(downAccounts{}, &fakeHasher{}, validation.New(), zerolog.Nop())
	ctx := context.Background()
	id := "507f1f77bcf86cd799439011"

	_, err := svc.FindByID(ctx, id)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("store outage reported as not found: %v", err)
	}

	if _, err := svc.FindAll(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("FindAll: expected ErrStoreUnavailable, got %v", err)
	}
	if err := svc.Delete(ctx, id); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Delete: expected ErrStoreUnavailable, got %v", err)
	}
	_, err = svc.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "B", Email: "a@b.c", Password: "secret1", Role: id,
	})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Create: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAccountService_UpdateClearsDateOfBirth(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("user", "read")
	dob := time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC)
	created, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "One", Email: "a@example.com", Password: "secret1", Role: role.ID, DateOfBirth: &dob,
	})

	other := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := f.accounts.Update(ctx, created.ID, ports.UpdateAccountInput{DateOfBirth: &other, ClearDateOfBirth: true})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.DateOfBirth != nil {
		t.Fatalf("date of birth not cleared: %v", got.DateOfBirth)
	}
}

func TestAccountService_UpperCaseIdentifier(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("user", "read")
	created, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "One", Email: "a@example.com", Password: "secret1", Role: role.ID,
	})
	upper := strings.ToUpper(created.ID)

	if got, err := f.accounts.FindByID(ctx, upper); err != nil || got.ID != created.ID {
		t.Fatalf("FindByID(upper) = %v, %v", got, err)
	}
	if _, err := f.accounts.Update(ctx, upper, ports.UpdateAccountInput{FirstName: strPtr("B")}); err != nil {
		t.Fatalf("Update(upper) returned error: %v", err)
	}
	if err := f.accounts.Delete(ctx, upper); err != nil {
		t.Fatalf("Delete(upper) returned error: %v", err)
	}
	if got, err := f.roles.FindByID(ctx, strings.ToUpper(role.ID)); err != nil || got.ID != role.ID {
		t.Fatalf("role FindByID(upper) = %v, %v", got, err)
	}
}
