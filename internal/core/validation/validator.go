// Package validation checks and normalizes account and role field sets
// before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72 // bcrypt ignores or rejects anything longer
)

type accountRules struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required"`
	Password  string `json:"password"  validate:"notblank,min=6,maxbytes=72"`
	Role      string `json:"role"      validate:"required,identifier"`
}

type roleRules struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"required"`
	Permissions []string `json:"permissions" validate:"dive,permission"`
}

// Validator wraps go-playground/validator with the account and role rules.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return domain.IsIdentifier(fl.Field().String())
	})
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return isPermission(fl.Field().String())
	})
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
	return &Validator{v: v}
}

// CreateAccount normalizes in place and checks every account rule.
func (val *Validator) CreateAccount(in *ports.CreateAccountInput) error {
	normalizeAccount(in)
	return val.check(val.v.Struct(accountRulesOf(in)))
}

// UnassignedAccount is CreateAccount without the role rule, for accounts
// whose role is assigned after validation.
func (val *Validator) UnassignedAccount(in *ports.CreateAccountInput) error {
	normalizeAccount(in)
	return val.check(val.v.StructPartial(accountRulesOf(in), "FirstName", "LastName", "Email", "Password"))
}

func normalizeAccount(in *ports.CreateAccountInput) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.TrimSpace(in.Role)
}

func accountRulesOf(in *ports.CreateAccountInput) accountRules {
	return accountRules{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
	}
}

// UpdateAccount normalizes in place and checks only the fields present.
func (val *Validator) UpdateAccount(in *ports.UpdateAccountInput) error {
	var rules accountRules
	var touched []string

	if in.FirstName != nil {
		*in.FirstName = strings.TrimSpace(*in.FirstName)
		rules.FirstName = *in.FirstName
		touched = append(touched, "FirstName")
	}
	if in.LastName != nil {
		*in.LastName = strings.TrimSpace(*in.LastName)
		rules.LastName = *in.LastName
		touched = append(touched, "LastName")
	}
	if in.Email != nil {
		*in.Email = NormalizeEmail(*in.Email)
		rules.Email = *in.Email
		touched = append(touched, "Email")
	}
	if in.Password != nil {
		rules.Password = *in.Password
		touched = append(touched, "Password")
	}
	if in.Phone != nil {
		*in.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		*in.Role = strings.TrimSpace(*in.Role)
		rules.Role = *in.Role
		touched = append(touched, "Role")
	}

	if len(touched) == 0 {
		return nil
	}
	return val.check(val.v.StructPartial(rules, touched...))
}

// CreateRole normalizes in place and checks every role rule.
func (val *Validator) CreateRole(in *ports.CreateRoleInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Permissions = normalizePermissions(in.Permissions)

	return val.check(val.v.Struct(roleRules{
		Name:        in.Name,
		Description: in.Description,
		Permissions: in.Permissions,
	}))
}

// UpdateRole normalizes in place and checks only the fields present.
func (val *Validator) UpdateRole(in *ports.UpdateRoleInput) error {
	var rules roleRules
	var touched []string

	if in.Name != nil {
		*in.Name = strings.TrimSpace(*in.Name)
		rules.Name = *in.Name
		touched = append(touched, "Name")
	}
	if in.Description != nil {
		*in.Description = strings.TrimSpace(*in.Description)
		rules.Description = *in.Description
		touched = append(touched, "Description")
	}
	if in.Permissions != nil {
		perms := normalizePermissions(*in.Permissions)
		in.Permissions = &perms
		rules.Permissions = perms
		touched = append(touched, "Permissions")
	}

	if len(touched) == 0 {
		return nil
	}
	return val.check(val.v.StructPartial(rules, touched...))
}

// NormalizeEmail trims and lowercases an email. No syntax check is applied.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// check converts validator output into a *domain.ValidationError listing
// every violation.
func (val *Validator) check(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &domain.ValidationError{Violations: make([]domain.Violation, 0, len(ve))}
	for _, fe := range ve {
		out.Violations = append(out.Violations, domain.Violation{
			Field:  baseField(fe.Field()),
			Reason: reason(fe),
		})
	}
	return out
}

// reason converts a single FieldError into a human-readable message.
func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "identifier":
		return "must be a 24-character hexadecimal id"
	case "permission":
		return fmt.Sprintf("has invalid value %q (allowed: %s)", fe.Value(), permissionList())
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

// baseField strips a dive index: "permissions[2]" -> "permissions".
func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

func isPermission(s string) bool {
	for _, p := range domain.AllPermissions {
		if string(p) == s {
			return true
		}
	}
	return false
}

func permissionList() string {
	names := make([]string, len(domain.AllPermissions))
	for i, p := range domain.AllPermissions {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// normalizePermissions trims values and drops repeats, keeping first-seen
// order. Invalid values are kept so the validator can report them.
func normalizePermissions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Permissions converts validated permission strings into domain values.
func Permissions(in []string) []domain.Permission {
	out := make([]domain.Permission, len(in))
	for i, p := range in {
		out[i] = domain.Permission(p)
	}
	return out
}
