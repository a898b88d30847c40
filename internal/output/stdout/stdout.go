// Package stdout writes records as JSON lines to standard output.
package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

func init() {
	output.Register(func(_ string, opts output.Options) (output.Output, error) {
		return New(opts.Schema, opts.Pretty), nil
	}, "-")
}

// Output writes JSON-encoded records to a writer, stdout by default.
type Output struct {
	mu     sync.Mutex
	enc    *json.Encoder
	schema output.Schema
}

// New creates a stdout Output with optional pretty-printed JSON.
func New(schema output.Schema, pretty bool) *Output {
	return NewWithWriter(os.Stdout, schema, pretty)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, schema output.Schema, pretty bool) *Output {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc, schema: schema}
}

func (o *Output) Write(_ context.Context, rec model.LabeledRecord) error {
	v, err := o.schema.Shape(rec)
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.enc.Encode(v); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
