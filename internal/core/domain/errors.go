package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrNotFound          = errors.New("not found")
	ErrReferenceNotFound = errors.New("reference not found")
	ErrRoleInUse         = errors.New("role in use")

	// ErrStoreUnavailable reports a connection-level store failure. Callers
	// may retry; it is never returned for a missing record.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Violation is a single rejected field.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violation found in one field set.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+" "+v.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Fields returns the names of the offending fields in report order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Field)
	}
	return out
}

// NewValidationError builds a ValidationError with a single violation.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Violations: []Violation{{Field: field, Reason: reason}}}
}

// DuplicateKeyError reports a uniqueness violation on Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s", e.Field)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// NotFoundError reports that no entity of Kind exists with ID.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ReferenceNotFoundError reports a role reference that matched no role.
type ReferenceNotFoundError struct {
	Input string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("role reference not found: %q", e.Input)
}

func (e *ReferenceNotFoundError) Is(target error) bool { return target == ErrReferenceNotFound }

// RoleInUseError is returned by the restrict delete policy.
type RoleInUseError struct {
	ID       string
	Accounts int64
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("role %s is referenced by %d user(s)", e.ID, e.Accounts)
}

func (e *RoleInUseError) Is(target error) bool { return target == ErrRoleInUse }
