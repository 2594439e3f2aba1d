package errors

import "net/http"

var ErrTaskIDRequired = &Exception{
	Kind:       KindValidation,
	Message:    "task id is required",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidTaskID = &Exception{
	Kind:       KindValidation,
	Message:    "invalid task id",
	StatusCode: http.StatusBadRequest,
}
