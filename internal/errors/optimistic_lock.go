package errors

import "net/http"

var ErrOptimisticLock = &Exception{
	Kind:       KindConflict,
	Message:    "task was modified concurrently, reload and retry",
	StatusCode: http.StatusConflict,
}
