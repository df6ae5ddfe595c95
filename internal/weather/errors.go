package weather

import "errors"

var (
	// ErrLocationUnavailable is returned when the device position cannot be read.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrNetworkUnreachable is reported when the connectivity check is negative.
	ErrNetworkUnreachable = errors.New("network unreachable")
	// ErrGateway wraps HTTP, API and payload errors from the weather gateway.
	ErrGateway = errors.New("weather gateway failure")
	// ErrValidation covers rejected user input.
	ErrValidation = errors.New("validation failure")
	// ErrPersistence covers storage read/write errors. It never leaves the store.
	ErrPersistence = errors.New("persistence failure")
)
