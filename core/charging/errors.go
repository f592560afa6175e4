package charging

import "errors"

var (
	// ErrConfiguration is returned for invalid charging parameters.
	ErrConfiguration = errors.New("invalid charging configuration")
	// ErrDataAlignment is returned when work and rate tables do not share the
	// same slot grid or a required column is missing.
	ErrDataAlignment = errors.New("inconsistent slot data")
	// ErrEmptyInput is returned when no work record is supplied and the
	// allocator requires at least one.
	ErrEmptyInput = errors.New("no work records")
)
