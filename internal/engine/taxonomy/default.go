package taxonomy

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in content-safety taxonomy.
func Default() (*Taxonomy, error) {
	t, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("default taxonomy: %w", err)
	}
	return t, nil
}

// DefaultYAML returns the embedded default taxonomy document, for use as a
// starting point when maintainers write their own file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}
