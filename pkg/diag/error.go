package diag

// Error carries a fully formed diagnostic through an error return. The
// processor reports the diagnostic as-is.
type Error struct {
	Diagnostic Diagnostic
}

// Raise wraps d in an *Error.
func Raise(d Diagnostic) error {
	return &Error{Diagnostic: d}
}

func (e *Error) Error() string {
	return e.Diagnostic.String()
}
