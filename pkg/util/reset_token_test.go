package util

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-reset-tokens"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestIssuer() (*ResetTokenIssuer, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	return NewResetTokenIssuer(testSecret, time.Hour, clock.Now), clock
}

func TestResetTokenIssuer_IssueAndRedeem(t *testing.T) {
	issuer, clock := newTestIssuer()

	issued, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, clock.now, issued.IssuedAt)
	assert.Equal(t, clock.now.Add(time.Hour), issued.ExpiresAt)

	email, err := issuer.Redeem(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", email)
}

func TestResetTokenIssuer_TokensAreUnique(t *testing.T) {
	issuer, _ := newTestIssuer()

	first, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)
	second, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

func TestResetTokenIssuer_URLSafe(t *testing.T) {
	issuer, _ := newTestIssuer()

	issued, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)

	assert.NotContains(t, issued.Token, "/")
	assert.NotContains(t, issued.Token, "+")
	assert.NotContains(t, issued.Token, "=")
}

func TestResetTokenIssuer_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr bool
	}{
		{name: "Just issued", advance: 0, wantErr: false},
		{name: "Inside window", advance: 59 * time.Minute, wantErr: false},
		{name: "Window elapsed", advance: time.Hour, wantErr: true},
		{name: "Long expired", advance: 48 * time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer, clock := newTestIssuer()
			issued, err := issuer.Issue("alice@x.com")
			require.NoError(t, err)

			clock.Advance(tt.advance)
			email, err := issuer.Redeem(issued.Token)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidResetToken)
				assert.Empty(t, email)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "alice@x.com", email)
			}
		})
	}
}

func TestResetTokenIssuer_Rejects(t *testing.T) {
	issuer, clock := newTestIssuer()
	issued, err := issuer.Issue("alice@x.com")
	require.NoError(t, err)

	otherSecret := NewResetTokenIssuer("another-secret", time.Hour, clock.Now)
	foreign, err := otherSecret.Issue("alice@x.com")
	require.NoError(t, err)

	// same secret, different purpose
	crossPurpose, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@x.com",
		Audience:  jwt.ClaimStrings{"flash"},
		IssuedAt:  jwt.NewNumericDate(clock.now),
		ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "alice@x.com",
		Audience: jwt.ClaimStrings{ResetTokenPurpose},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Garbage", token: "not-a-token"},
		{name: "Signed with another secret", token: foreign.Token},
		{name: "Other purpose", token: crossPurpose},
		{name: "Missing expiry", token: noExpiry},
		{name: "Tampered payload", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := issuer.Redeem(tt.token)
			assert.ErrorIs(t, err, ErrInvalidResetToken)
			assert.Empty(t, email)
		})
	}
}
