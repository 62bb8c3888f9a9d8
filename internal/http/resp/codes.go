package resp

// Codes carried in the "code" field of JSON error and status bodies.
const (
	CodeBadRequest    = "bad_request"
	CodeUnauthorized  = "unauthorized"
	CodeNotFound      = "not_found"
	CodeInternalError = "internal_error"
	CodeQueued        = "queued"
	CodeSkipped       = "skipped"
)
