package ports

import (
	"errors"
	"fmt"
)

// ErrNoDocument is returned by store lookups and writes that address an id
// (or natural key) with no stored document.
var ErrNoDocument = errors.New("no document")

// ConstraintViolation is returned by store inserts and updates that break a
// unique index. Field names the offending unique field ("email", "name").
type ConstraintViolation struct {
	Field string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("unique constraint violated on %s", e.Field)
}
