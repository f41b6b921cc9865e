package routefile

import "errors"

var (
	// ErrEmptyName is returned for a definition without a name.
	ErrEmptyName = errors.New("routefile: route name is required")

	// ErrEmptyURI is returned for a definition without a URI template.
	ErrEmptyURI = errors.New("routefile: route uri is required")

	// ErrDuplicateName is returned when two definitions share a name.
	ErrDuplicateName = errors.New("routefile: duplicate route name")
)
