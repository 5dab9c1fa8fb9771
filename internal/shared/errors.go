package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown email and wrong
	// password collapse into this same error so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("wrong email or password")
	// ErrValidation indicates input rejected at creation or password-change time.
	ErrValidation = errors.New("validation failed")
	// ErrTokenInvalid indicates an expired, mismatched, or already-consumed single-use token.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrInactiveAccount indicates a soft-deleted account attempting to sign in.
	ErrInactiveAccount = errors.New("inactive account")
	// ErrLockedOut indicates too many consecutive sign-in failures.
	ErrLockedOut = errors.New("account temporarily locked")
	// ErrUnauthenticated indicates an operation that requires an authenticated caller.
	ErrUnauthenticated = errors.New("authentication required")
)
