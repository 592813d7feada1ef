package param

import "errors"

var (
	// ErrNotFound is returned when no parameter has the requested name.
	ErrNotFound = errors.New("param: parameter not found")

	// ErrAccessDenied is returned when the store's active secure level is
	// not privileged enough to modify the parameter.
	ErrAccessDenied = errors.New("param: secure level too low")

	// ErrKindMismatch is returned when a typed accessor is used on a
	// parameter of a different kind.
	ErrKindMismatch = errors.New("param: kind mismatch")

	// ErrInvalidValue is returned when a string value cannot be converted
	// to the parameter's kind.
	ErrInvalidValue = errors.New("param: invalid value")
)
