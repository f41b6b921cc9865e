package routefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/waymark/pkg/route"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Load reads route definitions from a YAML file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("routefile: read %s: %w", path, err)
	}
	defs, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("routefile: %s: %w", path, err)
	}
	return defs, nil
}

// Parse reads route definitions from r.
func Parse(r io.Reader) ([]Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("routefile: read: %w", err)
	}
	defs, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("routefile: %w", err)
	}
	return defs, nil
}

// LoadTable loads path into a new table compiled through cache.
func LoadTable(path string, cache *route.Cache) (*route.Table, error) {
	defs, err := Load(path)
	if err != nil {
		return nil, err
	}

	t := route.NewTable(route.WithTableCache(cache))
	if err := Apply(t, defs, cache); err != nil {
		return nil, fmt.Errorf("routefile: %s: %w", path, err)
	}
	return t, nil
}

func parse(data []byte) ([]Definition, error) {
	data = substituteEnvVars(data)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return f.Routes, nil
}

// substituteEnvVars expands ${VAR} and ${VAR:-default} from the environment.
func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envVarPattern.FindSubmatch(match)
		if v, ok := os.LookupEnv(string(parts[1])); ok {
			return []byte(v)
		}
		return parts[2]
	})
}
