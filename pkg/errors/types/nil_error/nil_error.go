package nil_error

// Error reports that a required value (a channel, a client, a file system) was nil.
type Error struct {
	Field string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "nil value"
	}
	return "nil " + e.Field
}

func New(field string) *Error {
	return &Error{Field: field}
}
