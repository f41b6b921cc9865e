package routefile

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/waymark/pkg/route"
)

// File is the top-level document of a routes file.
type File struct {
	Routes []Definition `yaml:"routes"`
}

// Definition describes one route.
// Order in the file is match priority.
type Definition struct {
	Regex    map[string]string `yaml:"regex,omitempty"`
	Defaults map[string]string `yaml:"defaults,omitempty"`
	Name     string            `yaml:"name"`
	URI      string            `yaml:"uri"`
	Methods  []string          `yaml:"methods,omitempty"`
}

// Validate checks every definition and joins all problems found.
func Validate(defs []Definition) error {
	var errs []error
	seen := make(map[string]struct{}, len(defs))

	for i, d := range defs {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("routes[%d]: %w", i, ErrEmptyName))
		} else if _, dup := seen[d.Name]; dup {
			errs = append(errs, fmt.Errorf("routes[%d]: %w: %s", i, ErrDuplicateName, d.Name))
		} else {
			seen[d.Name] = struct{}{}
		}

		// Compile accepts an empty template; files do not.
		if d.URI == "" {
			errs = append(errs, fmt.Errorf("routes[%d] %q: %w", i, d.Name, ErrEmptyURI))
		}
	}

	return errors.Join(errs...)
}

// Build validates defs and compiles them into routes through cache.
// A nil cache uses the package default.
func Build(defs []Definition, cache *route.Cache) ([]*route.Route, error) {
	if err := Validate(defs); err != nil {
		return nil, err
	}

	routes := make([]*route.Route, 0, len(defs))
	for _, d := range defs {
		opts := []route.Option{route.WithCache(cache)}
		if len(d.Defaults) > 0 {
			opts = append(opts, route.WithDefaults(d.Defaults))
		}
		if len(d.Methods) > 0 {
			opts = append(opts, route.WithMethods(d.Methods...))
		}

		r, err := route.New(d.Name, d.URI, d.Regex, opts...)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", d.Name, err)
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// Apply builds defs and swaps them into t. On error t is left untouched.
func Apply(t *route.Table, defs []Definition, cache *route.Cache) error {
	routes, err := Build(defs, cache)
	if err != nil {
		return err
	}
	t.Replace(routes)
	return nil
}
