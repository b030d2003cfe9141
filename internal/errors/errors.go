package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a failure by how the caller should react to it.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindToken          Kind = "token"
	KindConflict       Kind = "conflict"
	KindStorage        Kind = "storage"
	KindMail           Kind = "mail"
)

// HTTPStatus is the status code used when the error is returned as JSON.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindToken:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindMail:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Category is the notice category shown to the user.
func (k Kind) Category() string {
	if k == KindConflict {
		return CategoryWarning
	}
	return CategoryError
}

// Error carries a user-facing message alongside the underlying cause.
// Message is safe to display; Err never is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// As returns the first *Error in the chain, or nil when there is none.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// KindOf returns KindStorage for errors that were never classified.
func KindOf(err error) Kind {
	if appErr := As(err); appErr != nil {
		return appErr.Kind
	}
	return KindStorage
}

// MessageOf returns the user-facing message, falling back to fallback for
// unclassified errors so internal details never leak.
func MessageOf(err error, fallback string) string {
	if appErr := As(err); appErr != nil {
		return appErr.Message
	}
	return fallback
}

// Notice categories
const (
	CategorySuccess = "success"
	CategoryError   = "error"
	CategoryWarning = "warning"
	CategoryInfo    = "info"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func Success(message string) Notice { return Notice{Category: CategorySuccess, Message: message} }

func Info(message string) Notice { return Notice{Category: CategoryInfo, Message: message} }

// NoticeFor builds the notice for a failure, using its kind's category.
func NoticeFor(err error, fallback string) Notice {
	return Notice{Category: KindOf(err).Category(), Message: MessageOf(err, fallback)}
}
