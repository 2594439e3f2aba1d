package errors

import "net/http"

var ErrInvalidCredentials = &Exception{
	Kind:       KindAuth,
	Message:    "invalid username or password",
	StatusCode: http.StatusUnauthorized,
}

var ErrForbidden = &Exception{
	Kind:       KindAuth,
	Message:    "insufficient permissions",
	StatusCode: http.StatusForbidden,
}

func Forbidden(message string) *Exception {
	return &Exception{Kind: KindAuth, Message: message, StatusCode: http.StatusForbidden}
}
