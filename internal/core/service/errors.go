package service

import (
	"errors"
	"fmt"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
	"github.com/accessdesk/mediation-gateway/internal/core/ports"
)

// storeError normalizes a store failure so that no raw store error leaves
// the service: unique index violations become DuplicateKeyError, a missing
// document becomes NotFoundError, anything else is wrapped with op (and keeps
// domain.ErrStoreUnavailable visible to errors.Is).
func storeError(op, kind, id string, err error) error {
	var cv *ports.ConstraintViolation
	if errors.As(err, &cv) {
		return &domain.DuplicateKeyError{Field: cv.Field}
	}
	if errors.Is(err, ports.ErrNoDocument) {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return fmt.Errorf("%s: %w", op, err)
}
