package service

import (
	"fmt"

	apperrors "github.com/ikkim/accounts-backend/internal/errors"
)

// User-visible failures. Compare with errors.Is.
var (
	ErrFieldsRequired   = apperrors.New(apperrors.KindValidation, apperrors.ValidationRequired, "All fields are required.")
	ErrUsernameTooShort = apperrors.New(apperrors.KindValidation, apperrors.ValidationTooShort, "Username must be at least 3 characters long.")
	ErrInvalidEmail     = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidFormat, "Email format is invalid.")
	ErrPasswordMismatch = apperrors.New(apperrors.KindValidation, apperrors.ValidationMismatch, "Passwords do not match.")
	ErrPasswordTooShort = apperrors.New(apperrors.KindValidation, apperrors.ValidationTooShort, "Password must be at least 8 characters long.")
	ErrPasswordNoUpper  = apperrors.New(apperrors.KindValidation, apperrors.ValidationWeakPassword, "Password must contain at least one uppercase letter.")
	ErrPasswordNoLower  = apperrors.New(apperrors.KindValidation, apperrors.ValidationWeakPassword, "Password must contain at least one lowercase letter.")
	ErrPasswordNoDigit  = apperrors.New(apperrors.KindValidation, apperrors.ValidationWeakPassword, "Password must contain at least one number.")

	ErrAccountExists = apperrors.New(apperrors.KindConflict, apperrors.AuthAccountExists, "The email or username is already registered.")

	ErrCredentialsRequired = apperrors.New(apperrors.KindValidation, apperrors.ValidationRequired, "Email and password are required.")
	ErrInvalidCredentials  = apperrors.New(apperrors.KindAuthentication, apperrors.AuthInvalidCredentials, "Invalid email or password.")

	ErrEmailRequired    = apperrors.New(apperrors.KindValidation, apperrors.ValidationRequired, "Please enter your email.")
	ErrInvalidResetLink = apperrors.New(apperrors.KindToken, apperrors.TokenInvalid, "The recovery link is invalid or has expired.")
	ErrResetLinkUsed    = apperrors.New(apperrors.KindToken, apperrors.TokenAlreadyUsed, "The recovery link is invalid or has expired.")
)

// Fallback messages for storage and mail failures. The cause is logged,
// never shown.
const (
	MsgRegistrationFailed   = "Could not register the user. Please try again."
	MsgRequestFailed        = "Could not process the request. Please try again."
	MsgMailFailed           = "Could not send the email. Please check the mail server configuration."
	MsgPasswordUpdateFailed = "Could not update the password. Please try again."
)

// Success notices
const (
	MsgRegistered      = "Registration successful! You can now log in."
	MsgResetRequested  = "If the email exists in our records, you will receive instructions to reset your password."
	MsgPasswordUpdated = "Password updated successfully! You can now log in."
	MsgLoginRequired   = "Please log in to access this page."
)

func WelcomeMessage(username string) string {
	return fmt.Sprintf("Welcome, %s!", username)
}

func GoodbyeMessage(username string) string {
	return fmt.Sprintf("See you soon, %s!", username)
}

func storageError(message string, err error) error {
	return apperrors.Wrap(apperrors.KindStorage, apperrors.InternalDatabase, message, err)
}

func mailError(err error) error {
	return apperrors.Wrap(apperrors.KindMail, apperrors.InternalMail, MsgMailFailed, err)
}
