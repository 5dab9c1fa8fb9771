package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/trylog/trylog/internal/shared"
)

const uniqueViolation = "23505"

// StoreConfig tunes the credential store's lockout policy.
type StoreConfig struct {
	LockoutThreshold int
	LockoutWindow    time.Duration
}

// Store implements CredentialStore over PostgreSQL for account records and
// Redis for single-use tokens and sign-in lockout counters.
type Store struct {
	pool   *pgxpool.Pool
	redis  *redis.Client
	vault  *TokenVault
	config StoreConfig
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool, client *redis.Client, vault *TokenVault, cfg StoreConfig) *Store {
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = 5
	}
	if cfg.LockoutWindow <= 0 {
		cfg.LockoutWindow = 15 * time.Minute
	}
	return &Store{pool: pool, redis: client, vault: vault, config: cfg}
}

// CreateAccount validates the email and password policy, hashes the password,
// and inserts the record. A duplicate email reports a validation failure.
func (s *Store) CreateAccount(ctx context.Context, acct *Account, password string) error {
	if err := validateEmail(acct.Email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("accounts: hash password: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, full_name, password_hash, email_confirmed, deleted)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id, created_at, updated_at`,
		acct.Email, acct.FullName, string(hash), acct.Deleted)
	if err := row.Scan(&acct.ID, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: email already taken", shared.ErrValidation)
		}
		return fmt.Errorf("accounts: create: %w", err)
	}
	acct.PasswordHash = string(hash)
	return nil
}

// FindByEmail fetches an account by email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findBy(ctx, "email = $1", email)
}

// FindByID fetches an account by id.
func (s *Store) FindByID(ctx context.Context, id int64) (*Account, error) {
	return s.findBy(ctx, "id = $1", id)
}

func (s *Store) findBy(ctx context.Context, where string, arg any) (*Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, full_name, password_hash, email_confirmed, deleted, created_at, updated_at
		FROM accounts WHERE `+where, arg)
	var acct Account
	err := row.Scan(&acct.ID, &acct.Email, &acct.FullName, &acct.PasswordHash,
		&acct.EmailConfirmed, &acct.Deleted, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("accounts: find: %w", err)
	}
	return &acct, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *Store) CheckPassword(ctx context.Context, acct *Account, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("accounts: check password: %w", err)
	}
	return true, nil
}

// ChangePassword re-validates the current password before applying the new one.
func (s *Store) ChangePassword(ctx context.Context, acct *Account, current, newPassword string) error {
	ok, err := s.CheckPassword(ctx, acct, current)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	return s.setPassword(ctx, acct, newPassword)
}

// ResetPassword consumes a reset token and applies the new password.
func (s *Store) ResetPassword(ctx context.Context, acct *Account, rawToken []byte, newPassword string) error {
	if err := s.vault.Consume(ctx, PurposePasswordReset, acct.ID, rawToken); err != nil {
		return err
	}
	return s.setPassword(ctx, acct, newPassword)
}

// GenerateConfirmationToken mints a single-use email-confirmation token.
func (s *Store) GenerateConfirmationToken(ctx context.Context, acct *Account) ([]byte, error) {
	return s.vault.Issue(ctx, PurposeEmailConfirmation, acct.ID)
}

// ConfirmEmail consumes a confirmation token and marks the email confirmed.
func (s *Store) ConfirmEmail(ctx context.Context, acct *Account, rawToken []byte) error {
	if err := s.vault.Consume(ctx, PurposeEmailConfirmation, acct.ID, rawToken); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE accounts SET email_confirmed = true, updated_at = now() WHERE id = $1`, acct.ID)
	if err != nil {
		return fmt.Errorf("accounts: confirm email: %w", err)
	}
	return nil
}

// GenerateResetToken mints a single-use password-reset token.
func (s *Store) GenerateResetToken(ctx context.Context, acct *Account) ([]byte, error) {
	return s.vault.Issue(ctx, PurposePasswordReset, acct.ID)
}

// SignIn verifies email and password. With lockoutOnFailure set, the
// configured number of consecutive failures locks the email for the lockout
// window; a successful sign-in clears the counter.
func (s *Store) SignIn(ctx context.Context, email, password string, lockoutOnFailure bool) error {
	if lockoutOnFailure {
		locked, err := s.lockedOut(ctx, email)
		if err != nil {
			return err
		}
		if locked {
			return shared.ErrLockedOut
		}
	}

	acct, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidCredentials
		}
		return err
	}
	ok, err := s.CheckPassword(ctx, acct, password)
	if err != nil {
		return err
	}
	if !ok {
		if lockoutOnFailure {
			if err := s.recordFailure(ctx, email); err != nil {
				return err
			}
		}
		return shared.ErrInvalidCredentials
	}

	if lockoutOnFailure {
		if err := s.redis.Del(ctx, lockoutKey(email)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("accounts: clear lockout: %w", err)
		}
	}
	return nil
}

// UpdateAccount persists profile and flag mutations, refreshing updated-at.
func (s *Store) UpdateAccount(ctx context.Context, acct *Account) error {
	row := s.pool.QueryRow(ctx, `
		UPDATE accounts
		SET full_name = $2, email_confirmed = $3, deleted = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		acct.ID, acct.FullName, acct.EmailConfirmed, acct.Deleted)
	if err := row.Scan(&acct.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("accounts: update: %w", err)
	}
	return nil
}

func (s *Store) setPassword(ctx context.Context, acct *Account, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("accounts: hash password: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`,
		acct.ID, string(hash))
	if err != nil {
		return fmt.Errorf("accounts: set password: %w", err)
	}
	acct.PasswordHash = string(hash)
	return nil
}

func (s *Store) lockedOut(ctx context.Context, email string) (bool, error) {
	count, err := s.redis.Get(ctx, lockoutKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("accounts: read lockout: %w", err)
	}
	n, _ := strconv.Atoi(count)
	return n >= s.config.LockoutThreshold, nil
}

func (s *Store) recordFailure(ctx context.Context, email string) error {
	key := lockoutKey(email)
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("accounts: record failure: %w", err)
	}
	if n == 1 {
		if err := s.redis.Expire(ctx, key, s.config.LockoutWindow).Err(); err != nil {
			return fmt.Errorf("accounts: expire lockout: %w", err)
		}
	}
	return nil
}

func lockoutKey(email string) string {
	return "lockout:" + email
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", shared.ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation)
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: password must contain upper and lower case letters and a digit", shared.ErrValidation)
	}
	return nil
}

var _ CredentialStore = (*Store)(nil)
