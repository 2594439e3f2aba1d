package errors

import "net/http"

var (
	ErrValidation = &Exception{
		Kind:       KindValidation,
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
	}
	ErrInvalidTransition = &Exception{
		Kind:       KindInvalidTransition,
		Message:    "invalid transition",
		StatusCode: http.StatusConflict,
	}
	ErrConflict = &Exception{
		Kind:       KindConflict,
		Message:    "conflict",
		StatusCode: http.StatusConflict,
	}
	ErrAuth = &Exception{
		Kind:       KindAuth,
		Message:    "authentication required",
		StatusCode: http.StatusUnauthorized,
	}
	ErrNotFound = &Exception{
		Kind:       KindNotFound,
		Message:    "not found",
		StatusCode: http.StatusNotFound,
	}
	ErrTransport = &Exception{
		Kind:       KindTransport,
		Message:    "transport failure",
		StatusCode: http.StatusBadGateway,
	}
)

func Validation(message string) *Exception {
	return New(KindValidation, message)
}

func InvalidTransition(message string) *Exception {
	return New(KindInvalidTransition, message)
}

func Conflict(message string) *Exception {
	return New(KindConflict, message)
}

func Auth(message string) *Exception {
	return New(KindAuth, message)
}

func NotFound(message string) *Exception {
	return New(KindNotFound, message)
}

func Transport(message string, err error) *Exception {
	return Wrap(KindTransport, message, err)
}
