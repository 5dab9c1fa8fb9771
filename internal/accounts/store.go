package accounts

import (
	"context"
	"time"
)

// CredentialStore persists account records, verifies and sets password
// hashes, and supplies single-use token primitives scoped to a purpose and
// an account. Implementations must make token consumption atomic: two
// concurrent consumption attempts for the same token see exactly one success.
type CredentialStore interface {
	// CreateAccount persists a new account with a hashed password. Rejected
	// input wraps shared.ErrValidation with the rejection detail.
	CreateAccount(ctx context.Context, acct *Account, password string) error

	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)

	// CheckPassword verifies a plaintext password against the stored hash.
	CheckPassword(ctx context.Context, acct *Account, password string) (bool, error)

	// ChangePassword re-validates current before applying the new password.
	ChangePassword(ctx context.Context, acct *Account, current, newPassword string) error

	// ResetPassword consumes a password-reset token and applies the new password.
	ResetPassword(ctx context.Context, acct *Account, rawToken []byte, newPassword string) error

	// GenerateConfirmationToken mints a single-use email-confirmation token
	// bound to the account.
	GenerateConfirmationToken(ctx context.Context, acct *Account) ([]byte, error)

	// ConfirmEmail consumes a confirmation token and marks the email confirmed.
	ConfirmEmail(ctx context.Context, acct *Account, rawToken []byte) error

	// GenerateResetToken mints a single-use password-reset token bound to the account.
	GenerateResetToken(ctx context.Context, acct *Account) ([]byte, error)

	// SignIn verifies email and password. With lockoutOnFailure set, repeated
	// failures lock the account for a configured window.
	SignIn(ctx context.Context, email, password string, lockoutOnFailure bool) error

	// UpdateAccount persists profile and flag mutations, refreshing updated-at.
	UpdateAccount(ctx context.Context, acct *Account) error
}

// Notifier dispatches formatted notification messages to a recipient.
type Notifier interface {
	Send(ctx context.Context, displayName, address, subject, body string) error
}

// SessionRegistry tracks which bearer token is live for an account so that
// deactivation can terminate the caller's session.
type SessionRegistry interface {
	Start(ctx context.Context, email, tokenID string, expiresAt time.Time) error
	End(ctx context.Context, email string) error
	Active(ctx context.Context, email, tokenID string) (bool, error)
}
