package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`   // error code from codes.go
	Message string `json:"message"` // user-facing message
}

// RespondWithError writes an error body with the given status.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Respond maps err to a status via its kind. Unclassified errors become a
// generic 500 with fallback as the message.
func Respond(c *gin.Context, err error, fallback string) {
	appErr := As(err)
	if appErr == nil {
		InternalError(c, fallback)
		return
	}
	code := appErr.Code
	if code == "" {
		code = InternalServerError
	}
	RespondWithError(c, appErr.Kind.HTTPStatus(), code, appErr.Message)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Please log in to access this page."
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again."
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
