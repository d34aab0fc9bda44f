package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
)

func TestRoleService_CreateNormalizes(t *testing.T) {
	f := newFixture(DeleteAllow)

	role, err := f.roles.Create(context.Background(), ports.CreateRoleInput{
		Name:        " editor ",
		Description: "Edits things",
		Permissions: []string{"read", "write", "read"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if role.Name != "editor" {
		t.Fatalf("name not trimmed: %q", role.Name)
	}
	if len(role.Permissions) != 2 || role.Permissions[0] != domain.PermissionRead || role.Permissions[1] != domain.PermissionWrite {
		t.Fatalf("unexpected permissions: %v", role.Permissions)
	}
	if !role.IsActive {
		t.Fatalf("expected isActive to default to true")
	}
}

func TestRoleService_CreateDuplicateName(t *testing.T) {
	f := newFixture(DeleteAllow)
	f.mustRole("editor")

	for _, name := range []string{"editor", " Editor ", "EDITOR"} {
		_, err := f.roles.Create(context.Background(), ports.CreateRoleInput{Name: name, Description: "again"})
		var dup *domain.DuplicateKeyError
		if !errors.As(err, &dup) || dup.Field != "name" {
			t.Fatalf("Create(%q): expected DuplicateKeyError on name, got %v", name, err)
		}
	}
}

func TestRoleService_CreateRejectsUnknownPermissions(t *testing.T) {
	f := newFixture(DeleteAllow)

	_, err := f.roles.Create(context.Background(), ports.CreateRoleInput{
		Name:        "odd",
		Description: "d",
		Permissions: []string{"read", "fly", "swim"},
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Violations) != 2 {
		t.Fatalf("expected one violation per bad value, got %v", ve.Violations)
	}
}

func TestRoleService_UpdateAndMissing(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("editor", "read")

	perms := []string{"read", "write"}
	updated, err := f.roles.Update(ctx, role.ID, ports.UpdateRoleInput{
		Description: strPtr("Edits more"),
		Permissions: &perms,
		IsActive:    boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "editor" || updated.Description != "Edits more" || updated.IsActive || len(updated.Permissions) != 2 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	_, err = f.roles.Update(ctx, "507f1f77bcf86cd799439011", ports.UpdateRoleInput{Name: strPtr("x")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	roles, _ := f.roles.FindAll(ctx)
	if len(roles) != 1 {
		t.Fatalf("update on missing id changed the store: %d roles", len(roles))
	}
}

func TestRoleService_DeleteAllowLeavesDanglingReference(t *testing.T) {
	f := newFixture(DeleteAllow)
	ctx := context.Background()
	role := f.mustRole("temp", "read")
	acc, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "B", Email: "a@example.com", Password: "secret1", Role: role.ID,
	})

	if err := f.roles.Delete(ctx, role.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	got, err := f.accounts.FindByID(ctx, acc.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.Role.ID != role.ID || got.Role.Name != "" {
		t.Fatalf("expected dangling reference, got %+v", got.Role)
	}
	if err := f.roles.Delete(ctx, role.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRoleService_DeleteRestrict(t *testing.T) {
	f := newFixture(DeleteRestrict)
	ctx := context.Background()
	role := f.mustRole("temp", "read")
	acc, _ := f.accounts.Create(ctx, ports.CreateAccountInput{
		FirstName: "A", LastName: "B", Email: "a@example.com", Password: "secret1", Role: role.ID,
	})

	err := f.roles.Delete(ctx, role.ID)
	var inUse *domain.RoleInUseError
	if !errors.As(err, &inUse) || inUse.Accounts != 1 {
		t.Fatalf("expected RoleInUseError, got %v", err)
	}
	if _, err := f.roles.FindByID(ctx, role.ID); err != nil {
		t.Fatalf("restricted role was deleted: %v", err)
	}

	if err := f.accounts.Delete(ctx, acc.ID); err != nil {
		t.Fatalf("Delete account returned error: %v", err)
	}
	if err := f.roles.Delete(ctx, role.ID); err != nil {
		t.Fatalf("Delete of unreferenced role returned error: %v", err)
	}
	if err := f.roles.Delete(ctx, role.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoleService_StoreUnavailable(t *testing.T) {
	svc := NewRoleService(downRoles{}, downAccounts{}, validation.New(), DeleteRestrict, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.FindByID(ctx, "507f1f77bcf86cd799439011")
	if !errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrStoreUnavailable only, got %v", err)
	}
	if err := svc.Delete(ctx, "507f1f77bcf86cd799439011"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("Delete: expected ErrStoreUnavailable, got %v", err)
	}
}
