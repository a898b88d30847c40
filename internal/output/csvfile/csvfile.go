// Package csvfile writes records as a CSV table with a header row.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

func init() {
	output.Register(func(path string, opts output.Options) (output.Output, error) {
		return New(path, opts.Schema)
	}, ".csv")
}

// Output writes CSV rows to a file.
type Output struct {
	mu     sync.Mutex
	f      *os.File
	buf    *bufio.Writer
	w      *csv.Writer
	path   string
	schema output.Schema
}

// New truncates path and writes the header for schema.
func New(path string, schema output.Schema) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv output: open %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	o := &Output{f: f, buf: buf, w: csv.NewWriter(buf), path: path, schema: schema}
	if err := o.w.Write(schema.Header()); err != nil {
		f.Close()
		return nil, fmt.Errorf("csv output: header: %w", err)
	}
	return o, nil
}

func (o *Output) Write(_ context.Context, rec model.LabeledRecord) error {
	row, err := o.schema.Values(rec)
	if err != nil {
		return fmt.Errorf("csv output: %w", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Write(row); err != nil {
		return fmt.Errorf("csv output: write: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w.Flush()
	if err := o.w.Error(); err != nil {
		o.f.Close()
		return fmt.Errorf("csv output: flush: %w", err)
	}
	if err := o.buf.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("csv output: flush: %w", err)
	}
	return o.f.Close()
}
