package route

import (
	"errors"
	"fmt"
)

// Sentinel errors for route compilation, matching and generation.
var (
	// ErrUnbalancedGroup is returned when a pattern's parentheses do not balance.
	ErrUnbalancedGroup = errors.New("route: unbalanced optional group")

	// ErrInvalidKey is returned for malformed <name> placeholders.
	ErrInvalidKey = errors.New("route: invalid placeholder")

	// ErrDuplicateKey is returned when a placeholder name appears twice in one pattern.
	ErrDuplicateKey = errors.New("route: duplicate placeholder")

	// ErrInvalidRegex is returned when a per-key override is not a valid expression.
	ErrInvalidRegex = errors.New("route: invalid key regex")

	// ErrMissingParam is wrapped by MissingParamError.
	ErrMissingParam = errors.New("route: required route parameter not passed")

	// ErrRouteNotFound is returned when a named route is not registered.
	ErrRouteNotFound = errors.New("route: route not found")

	// ErrEmptyName is returned when registering a route without a name.
	ErrEmptyName = errors.New("route: empty route name")
)

// MissingParamError reports the first required placeholder that could not be resolved.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingParam.Error(), e.Name)
}

func (e *MissingParamError) Unwrap() error {
	return ErrMissingParam
}
