package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
)

const (
	flashPurpose = "flash"
	flashTTL     = 5 * time.Minute
)

var ErrInvalidFlash = errors.New("invalid flash payload")

type flashClaims struct {
	Notices []apperrors.Notice `json:"notices"`
	jwt.RegisteredClaims
}

// FlashCodec signs notices so they can ride in a cookie across a redirect
// without the client being able to forge them.
type FlashCodec struct {
	secret []byte
	now    func() time.Time
}

func NewFlashCodec(secret string, now func() time.Time) *FlashCodec {
	if now == nil {
		now = time.Now
	}
	return &FlashCodec{secret: []byte(secret), now: now}
}

func (f *FlashCodec) Encode(notices []apperrors.Notice) (string, error) {
	issuedAt := f.now()
	claims := flashClaims{
		Notices: notices,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{flashPurpose},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(flashTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
}

func (f *FlashCodec) Decode(value string) ([]apperrors.Notice, error) {
	claims := &flashClaims{}
	_, err := jwt.ParseWithClaims(value, claims,
		func(t *jwt.Token) (interface{}, error) { return f.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(flashPurpose),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		return nil, ErrInvalidFlash
	}
	return claims.Notices, nil
}
