// Package secrets implements the session-scoped secret store consulted before the
// process environment when resolving credentials. On a hosted deployment the platform
// mounts a secrets file; locally the file is usually absent and the store is empty.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned when a secrets file is not a flat mapping of string keys.
var ErrMalformed = errors.New("malformed secrets file")

// Store looks up secrets by key.
type Store interface {
	// Lookup returns the secret stored under key and whether it was present.
	Lookup(key string) (string, bool)
}

// MapStore is an in-memory Store.
type MapStore map[string]string

// Lookup implements Store.
func (m MapStore) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// FileStore is a Store backed by a YAML file of the form
//
//	OPENAI_API_KEY: sk-...
//	OTHER: value
//
// Scalar values are read as strings; nested values are rejected.
type FileStore struct {
	path   string
	values map[string]string
}

// LoadFile reads the secrets file at path. A missing file yields an empty store.
func LoadFile(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: map[string]string{}}
	if path == "" {
		return fs, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("read secrets %s: %w", path, err)
	}

	values, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("secrets %s: %w", path, err)
	}
	fs.values = values
	return fs, nil
}

func parse(raw []byte) (map[string]string, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make(map[string]string, len(doc))
	for k, node := range doc {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: key %q is not a scalar", ErrMalformed, k)
		}
		out[k] = strings.TrimSpace(node.Value)
	}
	return out, nil
}

// Lookup implements Store.
func (f *FileStore) Lookup(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f.values[key]
	return v, ok
}

// Path returns the file the store was loaded from.
func (f *FileStore) Path() string { return f.path }

// Len returns the number of secrets loaded.
func (f *FileStore) Len() int { return len(f.values) }
