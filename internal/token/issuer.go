package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trylog/trylog/internal/shared"
)

// DefaultRole is the role claim assigned to every issued token.
const DefaultRole = "user"

// Claims carries the registered claims plus the account's role and display name.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
}

// Credential is a signed bearer token together with its identifier and expiry.
type Credential struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// Issuer mints HMAC-SHA-256 signed bearer tokens. Validity is determined
// solely by signature and expiry; there is no server-side revocation list.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer constructs an Issuer from the configured signing secret and
// token lifetime in hours.
func NewIssuer(secret string, ttlHours int) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

// Issue mints a bearer token for the given account. The subject is the
// account email, the role claim is fixed to DefaultRole, and the token
// identifier is a fresh UUID.
func (i *Issuer) Issue(email, fullName string) (Credential, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl)
	tokenID := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: DefaultRole,
		Name: fullName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("token: sign: %w", err)
	}
	return Credential{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// Parse validates a bearer token string and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, shared.ErrTokenInvalid
	}
	return claims, nil
}
