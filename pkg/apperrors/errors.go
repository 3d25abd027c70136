// Package apperrors defines sentinel errors shared across gigplane-engine.
// Services wrap these with fmt.Errorf("%w: detail") and the HTTP layer maps
// them to response codes with errors.Is.
package apperrors

import "errors"

var (
	// ErrNotFound indicates a referenced project, proposal or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor is not authorized for the operation,
	// e.g. a non-owner deciding on a proposal.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState indicates the operation is not valid for the current
	// project or proposal status.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict indicates a duplicate submission or a lost optimistic-
	// concurrency race.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a request that fails validation before any
	// state is consulted, e.g. a non-positive bid or a malformed email.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenRevoked indicates a JWT that was invalidated by logout.
	ErrTokenRevoked = errors.New("token revoked")
)
