package accounts

import "time"

// Account represents a registered user identity with credentials and profile.
// The password hash is owned by the credential store and never leaves the
// service boundary.
type Account struct {
	ID             int64
	Email          string
	FullName       string
	PasswordHash   string
	EmailConfirmed bool
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TokenPurpose scopes a single-use security token. A token issued for one
// purpose must not validate for another.
type TokenPurpose string

const (
	// PurposeEmailConfirmation scopes activation and reactivation tokens.
	PurposeEmailConfirmation TokenPurpose = "confirm"
	// PurposePasswordReset scopes password-reset tokens.
	PurposePasswordReset TokenPurpose = "reset"
)

// RegisterResult reports the outcome of a registration attempt.
type RegisterResult struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// LoginResult carries the issued bearer token on success.
type LoginResult struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Message   string    `json:"message"`
}

// ChangePasswordResult reports the outcome of a password change.
type ChangePasswordResult struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Profile is the caller-visible projection of an account.
type Profile struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfile projects an account into its caller-visible form.
func NewProfile(acct *Account) Profile {
	return Profile{
		ID:             acct.ID,
		Email:          acct.Email,
		FullName:       acct.FullName,
		EmailConfirmed: acct.EmailConfirmed,
		CreatedAt:      acct.CreatedAt,
		UpdatedAt:      acct.UpdatedAt,
	}
}
