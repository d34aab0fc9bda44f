package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// Envelope is the uniform rendering of one call. Exactly one of Data/Error
// is meaningful, selected by Success.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Stable error codes carried next to the rendered message.
const (
	CodeValidation        = "validation_failed"
	CodeDuplicateKey      = "duplicate_key"
	CodeNotFound          = "not_found"
	CodeReferenceNotFound = "reference_not_found"
	CodeRoleInUse         = "role_in_use"
	CodeStoreUnavailable  = "store_unavailable"
	CodeUnknownOperation  = "unknown_operation"
	CodeInternal          = "internal_error"
)

var errInternal = errors.New("internal error")

// Code returns the stable code for err.
func Code(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return CodeValidation
	case errors.Is(err, domain.ErrDuplicateKey):
		return CodeDuplicateKey
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrReferenceNotFound):
		return CodeReferenceNotFound
	case errors.Is(err, domain.ErrRoleInUse):
		return CodeRoleInUse
	case errors.Is(err, domain.ErrStoreUnavailable):
		return CodeStoreUnavailable
	case errors.Is(err, ErrUnknownOperation):
		return CodeUnknownOperation
	default:
		return CodeInternal
	}
}

// Message renders err for a natural-language caller. Unclassified errors
// render a generic message; their detail stays in the logs.
func Message(err error) string {
	var (
		ve  *domain.ValidationError
		dup *domain.DuplicateKeyError
		nf  *domain.NotFoundError
		rnf *domain.ReferenceNotFoundError
		riu *domain.RoleInUseError
		uo  *UnknownOperationError
	)
	switch {
	case errors.As(err, &ve):
		parts := make([]string, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			parts = append(parts, v.Field+" "+v.Reason)
		}
		return "Validation failed: " + strings.Join(parts, "; ") + "."
	case errors.As(err, &dup):
		switch dup.Field {
		case "email":
			return "A user with this email already exists."
		case "name":
			return "A role with this name already exists."
		default:
			return fmt.Sprintf("The value of %s is already taken.", dup.Field)
		}
	case errors.As(err, &nf):
		return fmt.Sprintf("%s not found: %s.", capitalize(nf.Kind), nf.ID)
	case errors.As(err, &rnf):
		return fmt.Sprintf("Role %q not found. Use get_roles to list the available roles.", rnf.Input)
	case errors.As(err, &riu):
		return fmt.Sprintf("Role %s is still assigned to %d user(s); reassign them before deleting it.", riu.ID, riu.Accounts)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "The database is currently unavailable. Please try again later."
	case errors.As(err, &uo):
		return fmt.Sprintf("Unknown tool %q.", uo.Name)
	default:
		return "An internal error occurred while processing the request."
	}
}

func failure(err error) Envelope {
	return Envelope{Success: false, Error: Message(err), Code: Code(err)}
}

func (g *Gateway) renderError(op string, err error) Envelope {
	code := Code(err)
	switch code {
	case CodeInternal:
		g.logger.Error().Err(err).Str("tool", op).Msg("tool call failed")
	case CodeStoreUnavailable:
		g.logger.Warn().Err(err).Str("tool", op).Msg("store unavailable")
	default:
		g.logger.Debug().Err(err).Str("tool", op).Str("code", code).Msg("tool call rejected")
	}
	return failure(err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func status(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func roleLabel(ref domain.RoleRef) string {
	if ref.Name != "" {
		return ref.Name
	}
	return ref.ID
}

func accountDetail(a *domain.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User %s (ID %s)\n", a.FullName(), a.ID)
	fmt.Fprintf(&b, "Email: %s\n", a.Email)
	if a.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", a.Phone)
	}
	if a.DateOfBirth != nil {
		fmt.Fprintf(&b, "Date of birth: %s\n", a.DateOfBirth.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Role: %s\n", roleLabel(a.Role))
	fmt.Fprintf(&b, "Status: %s", status(a.IsActive))
	return b.String()
}

func accountList(accounts []*domain.Account) string {
	if len(accounts) == 0 {
		return "No users found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d user(s):", len(accounts))
	for _, a := range accounts {
		fmt.Fprintf(&b, "\n- %s (%s), role: %s, %s, ID %s", a.FullName(), a.Email, roleLabel(a.Role), status(a.IsActive), a.ID)
	}
	return b.String()
}

func permissionList(perms []domain.Permission) string {
	if len(perms) == 0 {
		return "none"
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func roleDetail(r *domain.Role) string {
	return fmt.Sprintf("Role %s (ID %s)\nDescription: %s\nPermissions: %s\nStatus: %s",
		r.Name, r.ID, r.Description, permissionList(r.Permissions), status(r.IsActive))
}

func roleList(roles []*domain.Role) string {
	if len(roles) == 0 {
		return "No roles found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d role(s):", len(roles))
	for _, r := range roles {
		fmt.Fprintf(&b, "\n- %s: %s [%s], %s, ID %s", r.Name, r.Description, permissionList(r.Permissions), status(r.IsActive), r.ID)
	}
	return b.String()
}
