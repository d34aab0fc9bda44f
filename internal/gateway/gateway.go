// Package gateway maps named tool operations with loosely-typed arguments
// onto the account, role and seed services, and renders their outcome for
// a natural-language caller.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

// ErrUnknownOperation is matched by *UnknownOperationError.
var ErrUnknownOperation = errors.New("unknown operation")

// UnknownOperationError reports a call to an operation that is not declared.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}

func (e *UnknownOperationError) Is(target error) bool { return target == ErrUnknownOperation }

// Result is the typed outcome of a successful operation.
type Result struct {
	Message string
	Data    any
}

// Gateway is stateless; one instance serves concurrent calls.
type Gateway struct {
	accounts ports.AccountService
	roles    ports.RoleService
	resolver ports.RoleResolver
	seeder   ports.SeedService
	logger   zerolog.Logger
	tools    []Tool
	handlers map[string]handlerFunc
}

type handlerFunc func(ctx context.Context, r *reader) (*Result, error)

func New(
	accounts ports.AccountService,
	roles ports.RoleService,
	resolver ports.RoleResolver,
	seeder ports.SeedService,
	logger zerolog.Logger,
) *Gateway {
	g := &Gateway{
		accounts: accounts,
		roles:    roles,
		resolver: resolver,
		seeder:   seeder,
		logger:   logger,
		tools:    catalog(),
	}
	g.handlers = map[string]handlerFunc{
		OpCreateUser:   g.createUser,
		OpGetUsers:     g.getUsers,
		OpUpdateUser:   g.updateUser,
		OpDeleteUser:   g.deleteUser,
		OpCreateRole:   g.createRole,
		OpGetRoles:     g.getRoles,
		OpUpdateRole:   g.updateRole,
		OpDeleteRole:   g.deleteRole,
		OpSeedDatabase: g.seed,
	}
	return g
}

// Tools returns the declared operations in presentation order.
func (g *Gateway) Tools() []Tool {
	return append([]Tool(nil), g.tools...)
}

// Invoke runs op and returns its typed result. Errors keep the domain
// taxonomy; argument type mismatches are reported as *domain.ValidationError.
func (g *Gateway) Invoke(ctx context.Context, op string, args Args) (*Result, error) {
	h, ok := g.handlers[op]
	if !ok {
		return nil, &UnknownOperationError{Name: op}
	}
	return h(ctx, newReader(args))
}

// Call runs op and renders the outcome into an Envelope. It never panics and
// never returns a raw error.
func (g *Gateway) Call(ctx context.Context, op string, args Args) (env Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error().Str("tool", op).Interface("panic", rec).Msg("tool call panicked")
			env = failure(errInternal)
		}
	}()

	res, err := g.Invoke(ctx, op, args)
	if err != nil {
		return g.renderError(op, err)
	}
	return Envelope{Success: true, Message: res.Message, Data: res.Data}
}

// resolveRole resolves a non-blank role argument. A blank or absent one is
// passed through so the field validator reports it with the other fields.
func (g *Gateway) resolveRole(ctx context.Context, ref *string) (*string, error) {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return ref, nil
	}
	id, err := g.resolver.Resolve(ctx, *ref)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
