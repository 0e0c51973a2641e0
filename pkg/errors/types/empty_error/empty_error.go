package empty_error

// Error reports that a required string (a path, a url, a resource name) was empty.
type Error struct {
	Field string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "empty value"
	}
	return "empty " + e.Field
}

func New(field string) *Error {
	return &Error{Field: field}
}
