package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trylog/trylog/internal/shared"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", 8)

	cred, err := issuer.Issue("ann@example.com", "Ann Smith")
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)
	require.NotEmpty(t, cred.TokenID)

	claims, err := issuer.Parse(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.RegisteredClaims.Subject)
	assert.Equal(t, DefaultRole, claims.Role)
	assert.Equal(t, "Ann Smith", claims.Name)
	assert.Equal(t, cred.TokenID, claims.RegisteredClaims.ID)
}

func TestIssueExpirySetFromConfig(t *testing.T) {
	issuer := NewIssuer("test-secret", 8)

	before := time.Now()
	cred, err := issuer.Issue("ann@example.com", "Ann")
	require.NoError(t, err)

	want := before.Add(8 * time.Hour)
	assert.WithinDuration(t, want, cred.ExpiresAt, 5*time.Second)
}

func TestIssueUniqueTokenIDs(t *testing.T) {
	issuer := NewIssuer("test-secret", 1)

	a, err := issuer.Issue("ann@example.com", "Ann")
	require.NoError(t, err)
	b, err := issuer.Issue("ann@example.com", "Ann")
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-one", 1)
	other := NewIssuer("secret-two", 1)

	cred, err := issuer.Issue("ann@example.com", "Ann")
	require.NoError(t, err)

	_, err = other.Parse(cred.Token)
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}

func TestParseRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", 1)
	_, err := issuer.Parse("not.a.token")
	assert.ErrorIs(t, err, shared.ErrTokenInvalid)
}
