package source

import (
	"fmt"
	"sort"
	"strings"
)

var registry = map[string]Format{}

// Register adds a format under one or more file extensions (".csv").
func Register(format Format, exts ...string) {
	for _, ext := range exts {
		registry[strings.ToLower(ext)] = format
	}
}

// Get returns the format registered for ext.
func Get(ext string) (Format, error) {
	f, ok := registry[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("unsupported input format %q (registered: %s)", ext, strings.Join(Extensions(), ", "))
	}
	return f, nil
}

// Extensions returns all registered extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
