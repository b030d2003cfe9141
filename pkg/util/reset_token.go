package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ikkim/accounts-backend/pkg/logger"
)

// ResetTokenPurpose scopes reset token signatures. A token signed with the
// same secret for any other audience is rejected.
const ResetTokenPurpose = "password-reset"

// ErrInvalidResetToken covers every redemption failure: bad signature,
// tampering, wrong purpose and expiry all look the same to callers.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// IssuedResetToken is a freshly signed token and its validity window.
type IssuedResetToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ResetTokenIssuer signs and verifies stateless password reset tokens.
type ResetTokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewResetTokenIssuer(secret string, expiry time.Duration, now func() time.Time) *ResetTokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &ResetTokenIssuer{
		secret: []byte(secret),
		expiry: expiry,
		now:    now,
	}
}

// Issue signs a token for the given email.
func (i *ResetTokenIssuer) Issue(email string) (*IssuedResetToken, error) {
	// JWT dates have second precision
	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.expiry)

	claims := jwt.RegisteredClaims{
		Subject:   email,
		Audience:  jwt.ClaimStrings{ResetTokenPurpose},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, err
	}

	return &IssuedResetToken{
		Token:     signed,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Redeem verifies the token and returns the email it was issued for.
func (i *ResetTokenIssuer) Redeem(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ResetTokenPurpose),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		logger.Warn("Reset token rejected", map[string]interface{}{
			"reason": rejectionReason(err),
		})
		return "", ErrInvalidResetToken
	}

	if !parsed.Valid || claims.Subject == "" {
		logger.Warn("Reset token rejected", map[string]interface{}{
			"reason": "missing subject",
		})
		return "", ErrInvalidResetToken
	}

	return claims.Subject, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad signature"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "wrong purpose"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
