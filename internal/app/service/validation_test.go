package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "Valid", password: "Abcd1234", wantErr: nil},
		{name: "Seven characters", password: "short1A", wantErr: ErrPasswordTooShort},
		{name: "No uppercase", password: "alllower1", wantErr: ErrPasswordNoUpper},
		{name: "No lowercase", password: "ALLUPPER1", wantErr: ErrPasswordNoLower},
		{name: "No digit", password: "NoDigitsHere", wantErr: ErrPasswordNoDigit},
		{name: "Length is checked first", password: "abc", wantErr: ErrPasswordTooShort},
		{name: "Length counts characters", password: "Ábcdé1é", wantErr: ErrPasswordTooShort},
		{name: "Very long", password: "Aa1" + strings.Repeat("x", 200), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword_Messages(t *testing.T) {
	assert.Equal(t, "Password must be at least 8 characters long.", ValidatePassword("short1A").Error())
	assert.Equal(t, "Password must contain at least one uppercase letter.", ValidatePassword("alllower1").Error())
	assert.Equal(t, "Password must contain at least one lowercase letter.", ValidatePassword("ALLUPPER1").Error())
	assert.Equal(t, "Password must contain at least one number.", ValidatePassword("NoDigitsHere").Error())
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@x.com", "a.b+c@sub.example.org", "x_y%z@host.io"}
	invalid := []string{"alice", "alice@", "alice@x", "alice@x.c", "@x.com", "alice@@x.com", "ali ce@x.com"}

	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}
	for _, email := range invalid {
		assert.ErrorIs(t, ValidateEmail(email), ErrInvalidEmail, email)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.ErrorIs(t, ValidateUsername("al"), ErrUsernameTooShort)
	assert.NoError(t, ValidateUsername("ali"))
	// three runes, more than three bytes
	assert.NoError(t, ValidateUsername("김민수"))
}

func TestValidateNewPassword(t *testing.T) {
	assert.ErrorIs(t, ValidateNewPassword("Abcd1234", "Abcd1235"), ErrPasswordMismatch)
	// mismatch wins over strength
	assert.ErrorIs(t, ValidateNewPassword("weak", "other"), ErrPasswordMismatch)
	assert.ErrorIs(t, ValidateNewPassword("weak", "weak"), ErrPasswordTooShort)
	assert.NoError(t, ValidateNewPassword("Abcd1234", "Abcd1234"))
}
