package errors

// Error codes returned in JSON responses.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthAccountExists      = "AUTH_ACCOUNT_EXISTS"      // email or username taken

	// ==================== Reset token (TOKEN_) ====================
	TokenInvalid     = "TOKEN_INVALID"      // bad signature, expired or unknown
	TokenAlreadyUsed = "TOKEN_ALREADY_USED" // lost a concurrent redemption

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationTooShort      = "VALIDATION_TOO_SHORT"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationMismatch      = "VALIDATION_MISMATCH"
	ValidationWeakPassword  = "VALIDATION_WEAK_PASSWORD"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalMail        = "INTERNAL_MAIL_ERROR"
)
