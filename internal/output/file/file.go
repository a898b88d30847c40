// Package file writes NDJSON record files.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

const defaultBufSize = 64 * 1024 // 64KB

func init() {
	output.Register(func(path string, opts output.Options) (output.Output, error) {
		return New(path, opts.Schema)
	}, ".jsonl", ".ndjson", ".json")
}

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithAppend appends to an existing file instead of truncating it.
func WithAppend() Option {
	return func(o *Output) { o.flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND }
}

// Output writes NDJSON to a file with buffered I/O.
type Output struct {
	w       *bufio.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	schema  output.Schema
	flag    int
	bufSize int
	count   int
}

// New creates a file output that writes NDJSON to the given path. The file
// is truncated unless WithAppend is given.
func New(path string, schema output.Schema, opts ...Option) (*Output, error) {
	o := &Output{
		path:    path,
		schema:  schema,
		flag:    os.O_CREATE | os.O_WRONLY | os.O_TRUNC,
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	f, err := os.OpenFile(o.path, o.flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	return o, nil
}

// Write JSON-encodes the record and appends it as a line to the file.
func (o *Output) Write(_ context.Context, rec model.LabeledRecord) error {
	v, err := o.schema.Shape(rec)
	if err != nil {
		return fmt.Errorf("file output: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.Write(data); err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	o.count++
	return nil
}

// Count returns the number of records written so far.
func (o *Output) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}
