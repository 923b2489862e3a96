package handlers

// Stable machine-readable error codes used in ErrorResponse.Code.
const (
	codeBadRequest    = "bad_request"
	codeNotFound      = "not_found"
	codeConflict      = "conflict"
	codeInternalError = "internal_error"
)
