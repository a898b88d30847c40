package output

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Output defines the interface for labeled record destinations.
type Output interface {
	Write(ctx context.Context, rec model.LabeledRecord) error
	Close() error
}

// Options configures a sink opened through Open.
type Options struct {
	Schema Schema
	Pretty bool   // indent JSON on stdout
	Table  string // SQLite table or xlsx sheet name; empty means "records"
}

// TableName returns Table or the default.
func (o Options) TableName() string {
	if o.Table == "" {
		return "records"
	}
	return o.Table
}

// Constructor opens a sink at path.
type Constructor func(path string, opts Options) (Output, error)

var registry = map[string]Constructor{}

// Register adds a sink constructor under one or more file extensions.
// The extension "-" names the stdout sink.
func Register(ctor Constructor, exts ...string) {
	for _, ext := range exts {
		registry[strings.ToLower(ext)] = ctor
	}
}

// Open creates the sink registered for path's extension. A path of "-"
// selects stdout.
func Open(path string, opts Options) (Output, error) {
	ext := path
	if path != "-" {
		ext = strings.ToLower(filepath.Ext(path))
	}
	ctor, ok := registry[ext]
	if !ok {
		return nil, fmt.Errorf("output %s: unsupported format %q (registered: %s)", path, ext, strings.Join(Extensions(), ", "))
	}
	return ctor(path, opts)
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
