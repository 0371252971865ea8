package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garoui/electricite-be/internal/models"
)

const testSecret = "test_secret_key_1234567890"

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(testSecret, "electricite-test", ttl).WithClock(fixedClock(issuedAt))
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	tests := []struct {
		name  string
		id    int64
		email string
		role  models.Role
	}{
		{name: "admin", id: 1, email: "admin@example.com", role: models.RoleAdmin},
		{name: "candidate", id: 7, email: "candidate@example.com", role: models.RoleCandidate},
		{name: "partner", id: 12345, email: "partner@example.com", role: models.RolePartner},
	}

	tokens := newTestManager(24 * time.Hour)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tokens.Issue(tt.id, tt.email, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, raw)

			claims, err := tokens.WithClock(fixedClock(issuedAt.Add(time.Hour))).Parse(raw)
			require.NoError(t, err)

			id, err := claims.AccountID()
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role.String(), claims.Role)
			assert.True(t, issuedAt.Equal(claims.IssuedAt.Time))
			assert.True(t, issuedAt.Add(24*time.Hour).Equal(claims.ExpiresAt.Time))
		})
	}
}

func TestTokenManager_ExpiryBoundaryIsInclusive(t *testing.T) {
	ttl := 24 * time.Hour
	tokens := newTestManager(ttl)
	raw, err := tokens.Issue(3, "a@example.com", models.RoleCustomer)
	require.NoError(t, err)

	_, err = tokens.WithClock(fixedClock(issuedAt.Add(ttl - time.Second))).Parse(raw)
	assert.NoError(t, err, "one second before expiry")

	_, err = tokens.WithClock(fixedClock(issuedAt.Add(ttl))).Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired, "exactly at expiry")

	_, err = tokens.WithClock(fixedClock(issuedAt.Add(ttl + time.Hour))).Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired, "after expiry")
}

func TestTokenManager_ParseRejectsBadTokens(t *testing.T) {
	tokens := newTestManager(time.Hour)
	valid, err := tokens.Issue(1, "a@example.com", models.RoleCustomer)
	require.NoError(t, err)

	otherSecret, err := NewTokenManager("different_secret", "electricite-test", time.Hour).
		WithClock(fixedClock(issuedAt)).Issue(1, "a@example.com", models.RoleAdmin)
	require.NoError(t, err)

	otherIssuer, err := NewTokenManager(testSecret, "someone-else", time.Hour).
		WithClock(fixedClock(issuedAt)).Issue(1, "a@example.com", models.RoleAdmin)
	require.NoError(t, err)

	claims := Claims{
		Email: "a@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "electricite-test",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry := claims
	noExpiry.ExpiresAt = nil
	withoutExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExpiry).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "invalid.token.here"},
		{name: "tampered", token: valid + "tampered"},
		{name: "wrong secret", token: otherSecret},
		{name: "wrong issuer", token: otherIssuer},
		{name: "alg none", token: unsigned},
		{name: "unexpected algorithm", token: hs512},
		{name: "missing expiry", token: withoutExp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tokens.Parse(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.NotErrorIs(t, err, ErrTokenExpired)
			assert.Nil(t, claims)
		})
	}
}

func TestClaims_AccountID(t *testing.T) {
	for _, subject := range []string{"", "abc", "0", "-4"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
		_, err := c.AccountID()
		assert.ErrorIs(t, err, ErrTokenInvalid, "subject %q", subject)
	}
}
