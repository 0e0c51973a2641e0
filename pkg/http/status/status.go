package status

// Status codes a response builder is expected to emit. Any other code may still be set; these are the ones callers
// refer to by name.
const (
	Ok             = 200
	Found          = 302
	NotModified    = 304
	BadRequest     = 400
	Unauthorized   = 401
	Forbidden      = 403
	NotFound       = 404
	ServerError    = 500
	NotImplemented = 501
)
