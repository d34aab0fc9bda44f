package gateway

import (
	"context"
	"fmt"

	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

func (g *Gateway) createUser(ctx context.Context, r *reader) (*Result, error) {
	input := ports.CreateAccountInput{
		FirstName:   r.text("firstName"),
		LastName:    r.text("lastName"),
		Email:       r.text("email"),
		Phone:       r.text("phone"),
		DateOfBirth: r.date("dateOfBirth"),
		IsActive:    r.boolean("isActive"),
	}
	if s := r.secret(); s != nil {
		input.Password = *s
	}
	role := r.str("role")
	if err := r.err(); err != nil {
		return nil, err
	}

	resolved, err := g.resolveRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if resolved != nil {
		input.Role = *resolved
	}

	account, err := g.accounts.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("User %s created successfully with ID %s.", account.FullName(), account.ID),
		Data:    account,
	}, nil
}

func (g *Gateway) getUsers(ctx context.Context, r *reader) (*Result, error) {
	id := r.str("id")
	if err := r.err(); err != nil {
		return nil, err
	}

	if id != nil && *id != "" {
		account, err := g.accounts.FindByID(ctx, *id)
		if err != nil {
			return nil, err
		}
		return &Result{Message: accountDetail(account), Data: account}, nil
	}

	accounts, err := g.accounts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Message: accountList(accounts), Data: accounts}, nil
}

func (g *Gateway) updateUser(ctx context.Context, r *reader) (*Result, error) {
	id := r.id()
	input := ports.UpdateAccountInput{
		FirstName: r.str("firstName"),
		LastName:  r.str("lastName"),
		Email:     r.str("email"),
		Password:  r.secret(),
		Phone:     r.str("phone"),
		IsActive:  r.boolean("isActive"),
	}
	input.DateOfBirth, input.ClearDateOfBirth = r.clearableDate("dateOfBirth")
	role := r.str("role")
	if err := r.err(); err != nil {
		return nil, err
	}

	resolved, err := g.resolveRole(ctx, role)
	if err != nil {
		return nil, err
	}
	input.Role = resolved

	account, err := g.accounts.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("User %s updated successfully.", account.FullName()),
		Data:    account,
	}, nil
}

func (g *Gateway) deleteUser(ctx context.Context, r *reader) (*Result, error) {
	id := r.id()
	if err := r.err(); err != nil {
		return nil, err
	}
	if err := g.accounts.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("User %s deleted successfully.", id)}, nil
}

func (g *Gateway) createRole(ctx context.Context, r *reader) (*Result, error) {
	input := ports.CreateRoleInput{
		Name:        r.text("name"),
		Description: r.text("description"),
		IsActive:    r.boolean("isActive"),
	}
	if perms := r.list("permissions"); perms != nil {
		input.Permissions = *perms
	}
	if err := r.err(); err != nil {
		return nil, err
	}

	role, err := g.roles.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("Role %s created successfully with ID %s.", role.Name, role.ID),
		Data:    role,
	}, nil
}

func (g *Gateway) getRoles(ctx context.Context, r *reader) (*Result, error) {
	id := r.str("id")
	if err := r.err(); err != nil {
		return nil, err
	}

	if id != nil && *id != "" {
		role, err := g.roles.FindByID(ctx, *id)
		if err != nil {
			return nil, err
		}
		return &Result{Message: roleDetail(role), Data: role}, nil
	}

	roles, err := g.roles.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Message: roleList(roles), Data: roles}, nil
}

func (g *Gateway) updateRole(ctx context.Context, r *reader) (*Result, error) {
	id := r.id()
	input := ports.UpdateRoleInput{
		Name:        r.str("name"),
		Description: r.str("description"),
		Permissions: r.list("permissions"),
		IsActive:    r.boolean("isActive"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}

	role, err := g.roles.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("Role %s updated successfully.", role.Name),
		Data:    role,
	}, nil
}

func (g *Gateway) deleteRole(ctx context.Context, r *reader) (*Result, error) {
	id := r.id()
	if err := r.err(); err != nil {
		return nil, err
	}
	if err := g.roles.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Role %s deleted successfully.", id)}, nil
}

func (g *Gateway) seed(ctx context.Context, _ *reader) (*Result, error) {
	res, err := g.seeder.Seed(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("Database seeded successfully: %d roles and %d user(s) are in place.", len(res.Roles), len(res.Accounts)),
		Data:    res,
	}, nil
}
