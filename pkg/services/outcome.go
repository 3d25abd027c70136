package services

import (
	"errors"
	"fmt"

	"github.com/gigplane-inc/gigplane-engine/pkg/apperrors"
	"github.com/gigplane-inc/gigplane-engine/pkg/retry"
)

// outcomeLabel maps an operation error to its metrics outcome label.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperrors.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, apperrors.ErrConflict), retry.IsRetryable(err):
		return "conflict"
	default:
		return "error"
	}
}

// conflictOnExhaustion converts a still-transient error, meaning retries ran
// out without the race clearing, into ErrConflict for the caller.
func conflictOnExhaustion(err error, operation string) error {
	if retry.IsRetryable(err) {
		return fmt.Errorf("%w: %s kept conflicting, try again", apperrors.ErrConflict, operation)
	}
	return err
}
