package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/trylog/trylog/internal/password"
	"github.com/trylog/trylog/internal/shared"
	"github.com/trylog/trylog/internal/token"
)

const (
	subjectActivation   = "Activate your account"
	subjectReactivation = "Reactivate your account"
	subjectResetRequest = "Password reset requested"
	subjectNewPassword  = "Your new password"

	passwordRounds = 8

	// MessagePendingActivation is returned by Register on success.
	MessagePendingActivation = "Waiting for activation."
	// MessageAlreadyAuthenticated is returned by Login when the caller already
	// holds an active session.
	MessageAlreadyAuthenticated = "Already authenticated."
)

// Service orchestrates the account lifecycle: registration with deferred
// activation, confirmation and reset token flows, authentication, bearer
// token issuance, and soft-delete with reactivation. It is stateless between
// calls; the caller identity is passed explicitly into every operation that
// needs it.
type Service struct {
	store    CredentialStore
	sessions SessionRegistry
	notifier Notifier
	issuer   *token.Issuer
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(store CredentialStore, sessions SessionRegistry, notifier Notifier, issuer *token.Issuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, sessions: sessions, notifier: notifier, issuer: issuer, logger: logger}
}

// Register creates an account with a hashed password and dispatches an
// activation email embedding the callback URL and the transport-encoded
// confirmation token. The account stays unusable until Activate succeeds.
func (s *Service) Register(ctx context.Context, email, plainPassword, fullName, activationCallback string) (*RegisterResult, error) {
	acct := &Account{
		Email:    email,
		FullName: fullName,
		Deleted:  true,
	}
	if err := s.store.CreateAccount(ctx, acct, plainPassword); err != nil {
		if errors.Is(err, shared.ErrValidation) {
			return &RegisterResult{Status: http.StatusBadRequest, Message: err.Error()}, nil
		}
		return nil, err
	}

	raw, err := s.store.GenerateConfirmationToken(ctx, acct)
	if err != nil {
		return nil, err
	}
	body := activationBody(activationCallback, acct.Email, token.EncodeForTransport(raw))
	if err := s.notifier.Send(ctx, acct.FullName, acct.Email, subjectActivation, body); err != nil {
		s.logger.Error("send activation email", slog.String("email", acct.Email), slog.Any("error", err))
		return nil, err
	}

	return &RegisterResult{Status: http.StatusCreated, Message: MessagePendingActivation}, nil
}

// Activate consumes a confirmation token and clears the deleted flag.
// Unknown emails and invalid tokens both report false without detail; an
// already-confirmed account reports true with no second mutation.
func (s *Service) Activate(ctx context.Context, email, encodedToken string) (bool, error) {
	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if acct.EmailConfirmed {
		return true, nil
	}

	raw, err := token.DecodeFromTransport(encodedToken)
	if err != nil {
		return false, nil
	}
	if err := s.store.ConfirmEmail(ctx, acct, raw); err != nil {
		if errors.Is(err, shared.ErrTokenInvalid) {
			return false, nil
		}
		return false, err
	}

	acct.EmailConfirmed = true
	acct.Deleted = false
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return false, err
	}
	return true, nil
}

// SendReactivationEmail mints a fresh confirmation token for a deactivated
// account after verifying the supplied password. The return value reports
// only that the guard sequence completed: a password mismatch is not
// distinguishable from success, so callers cannot probe credentials here.
func (s *Service) SendReactivationEmail(ctx context.Context, ident shared.Identity, email, plainPassword, callback string) (bool, error) {
	if ident.Authenticated {
		return false, nil
	}
	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !acct.Deleted {
		return false, nil
	}

	ok, err := s.store.CheckPassword(ctx, acct, plainPassword)
	if err != nil {
		return false, err
	}
	if ok {
		raw, err := s.store.GenerateConfirmationToken(ctx, acct)
		if err != nil {
			return false, err
		}
		body := reactivationBody(callback, acct.Email, token.EncodeForTransport(raw))
		if err := s.notifier.Send(ctx, acct.FullName, acct.Email, subjectReactivation, body); err != nil {
			s.logger.Error("send reactivation email", slog.String("email", acct.Email), slog.Any("error", err))
			return false, err
		}
	}
	return true, nil
}

// Login authenticates the caller and issues a bearer token. A soft-deleted
// account fails with shared.ErrInactiveAccount; every other failure collapses
// into shared.ErrInvalidCredentials so unknown emails and wrong passwords are
// indistinguishable.
func (s *Service) Login(ctx context.Context, ident shared.Identity, email, plainPassword string) (*LoginResult, error) {
	if ident.Authenticated {
		return &LoginResult{Message: MessageAlreadyAuthenticated}, nil
	}

	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if acct != nil && acct.Deleted {
		return nil, shared.ErrInactiveAccount
	}

	if err := s.store.SignIn(ctx, email, plainPassword, true); err != nil {
		if errors.Is(err, shared.ErrLockedOut) {
			s.logger.Warn("sign-in lockout", slog.String("email", email))
		}
		return nil, shared.ErrInvalidCredentials
	}

	cred, err := s.issuer.Issue(acct.Email, acct.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Start(ctx, acct.Email, cred.TokenID, cred.ExpiresAt); err != nil {
		return nil, err
	}
	return &LoginResult{Token: cred.Token, ExpiresAt: cred.ExpiresAt, Message: "Authenticated."}, nil
}

// Get returns the profile of the authenticated caller.
func (s *Service) Get(ctx context.Context, ident shared.Identity) (*Profile, error) {
	acct, err := s.requireAccount(ctx, ident)
	if err != nil {
		return nil, err
	}
	profile := NewProfile(acct)
	return &profile, nil
}

// Update mutates the caller's full name and refreshes updated-at.
func (s *Service) Update(ctx context.Context, ident shared.Identity, fullName string) (*Profile, error) {
	acct, err := s.requireAccount(ctx, ident)
	if err != nil {
		return nil, err
	}
	acct.FullName = fullName
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return nil, err
	}
	profile := NewProfile(acct)
	return &profile, nil
}

// ChangePassword rejects a same-password change without contacting the store,
// and otherwise delegates to the store's change-password primitive. Store
// failures map to a generic description; the detail is logged, not surfaced.
func (s *Service) ChangePassword(ctx context.Context, ident shared.Identity, current, newPassword string) (*ChangePasswordResult, error) {
	if !ident.Authenticated {
		return nil, shared.ErrUnauthenticated
	}
	if newPassword == current {
		return &ChangePasswordResult{
			Code:        http.StatusConflict,
			Description: "New password must be different from the current password.",
		}, nil
	}

	acct, err := s.requireAccount(ctx, ident)
	if err != nil {
		return nil, err
	}
	if err := s.store.ChangePassword(ctx, acct, current, newPassword); err != nil {
		s.logger.Warn("change password", slog.String("email", acct.Email), slog.Any("error", err))
		return &ChangePasswordResult{
			Code:        http.StatusBadRequest,
			Description: "Could not change password.",
		}, nil
	}
	return &ChangePasswordResult{Code: http.StatusOK, Description: "Password changed."}, nil
}

// ResetPassword mints a password-reset token and emails a confirmation link
// embedding the callback, account id, encoded token, creation time, and
// email. The password itself changes only when ConfirmTokenPasswordReset is
// later called with the token.
func (s *Service) ResetPassword(ctx context.Context, email, callback string) (bool, error) {
	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	raw, err := s.store.GenerateResetToken(ctx, acct)
	if err != nil {
		return false, err
	}
	body := resetRequestBody(callback, acct.ID, token.EncodeForTransport(raw), acct.CreatedAt, acct.Email)
	if err := s.notifier.Send(ctx, acct.FullName, acct.Email, subjectResetRequest, body); err != nil {
		s.logger.Error("send reset email", slog.String("email", acct.Email), slog.Any("error", err))
		return false, err
	}
	return true, nil
}

// ConfirmTokenPasswordReset consumes a reset token, applies a freshly
// generated random password, and emails it to the account holder. The
// plaintext password in the mail is the only way to communicate it.
func (s *Service) ConfirmTokenPasswordReset(ctx context.Context, accountID int64, encodedToken string) (bool, error) {
	acct, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	raw, err := token.DecodeFromTransport(encodedToken)
	if err != nil {
		return false, nil
	}
	newPassword, err := password.Generate(passwordRounds)
	if err != nil {
		return false, err
	}
	if err := s.store.ResetPassword(ctx, acct, raw, newPassword); err != nil {
		if errors.Is(err, shared.ErrTokenInvalid) {
			return false, nil
		}
		return false, err
	}

	body := newPasswordBody(newPassword, acct.CreatedAt)
	if err := s.notifier.Send(ctx, acct.FullName, acct.Email, subjectNewPassword, body); err != nil {
		s.logger.Error("send new password email", slog.String("email", acct.Email), slog.Any("error", err))
		return false, err
	}
	return true, nil
}

// Delete deactivates the caller's account after verifying the supplied
// password: the deleted flag is set, the confirmed flag is cleared, and the
// caller's session is terminated. The record is never physically destroyed.
func (s *Service) Delete(ctx context.Context, ident shared.Identity, plainPassword string) (string, error) {
	acct, err := s.requireAccount(ctx, ident)
	if err != nil {
		return "", err
	}
	ok, err := s.store.CheckPassword(ctx, acct, plainPassword)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", shared.ErrInvalidCredentials
	}

	acct.Deleted = true
	acct.EmailConfirmed = false
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return "", err
	}
	if err := s.sessions.End(ctx, acct.Email); err != nil {
		s.logger.Warn("end session", slog.String("email", acct.Email), slog.Any("error", err))
	}
	return "Account deactivated.", nil
}

func (s *Service) requireAccount(ctx context.Context, ident shared.Identity) (*Account, error) {
	if !ident.Authenticated {
		return nil, shared.ErrUnauthenticated
	}
	acct, err := s.store.FindByEmail(ctx, ident.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// An authenticated caller without a record is an invariant
			// violation, not a user error.
			return nil, fmt.Errorf("authenticated account %q missing: %w", ident.Email, err)
		}
		return nil, err
	}
	return acct, nil
}

func activationBody(callback, email, encodedToken string) string {
	return fmt.Sprintf(
		"Welcome to TryLog.\n\nConfirm your account by visiting:\n%s?email=%s&token=%s\n",
		callback, email, encodedToken,
	)
}

func reactivationBody(callback, email, encodedToken string) string {
	return fmt.Sprintf(
		"Your TryLog account is deactivated.\n\nReactivate it by visiting:\n%s?email=%s&token=%s\n",
		callback, email, encodedToken,
	)
}

func resetRequestBody(callback string, accountID int64, encodedToken string, createdAt time.Time, email string) string {
	return fmt.Sprintf(
		"A password reset was requested for %s (account created %s).\n\nConfirm the reset by visiting:\n%s?id=%d&token=%s\n",
		email, createdAt.Format(time.RFC1123), callback, accountID, encodedToken,
	)
}

func newPasswordBody(newPassword string, createdAt time.Time) string {
	return fmt.Sprintf(
		"Your password has been reset.\n\nNew password: %s\n\nAccount created %s.\n",
		newPassword, createdAt.Format(time.RFC1123),
	)
}
