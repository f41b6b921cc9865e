package health

import "errors"

// Sentinel errors for the health package.
var (
	// ErrCheckTimeout is returned when a health check exceeds its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrNoRoutes is returned by TableCheck when the table is empty.
	ErrNoRoutes = errors.New("health: no routes loaded")
)
