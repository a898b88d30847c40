package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

// Sink is an output together with the name its errors are reported under,
// usually the path it was opened from.
type Sink struct {
	Name string
	output.Output
}

// Multi writes every record to several sinks, e.g. a JSONL file and a
// SQLite table from one normalize run.
//
// A sink that fails a write is considered incomplete: it receives no
// further records and its first error is returned again on every later
// Write. Healthy sinks keep receiving records.
type Multi struct {
	sinks  []Sink
	failed []error
}

// New creates a Multi over sinks.
func New(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks, failed: make([]error, len(sinks))}
}

// Write delivers rec to every sink that has not failed yet.
func (m *Multi) Write(ctx context.Context, rec model.LabeledRecord) error {
	var errs []error
	for i, s := range m.sinks {
		if m.failed[i] != nil {
			errs = append(errs, m.failed[i])
			continue
		}
		if err := s.Write(ctx, rec); err != nil {
			m.failed[i] = fmt.Errorf("multi output: %s: %w", s.Name, err)
			errs = append(errs, m.failed[i])
		}
	}
	return errors.Join(errs...)
}

// Failed returns the names of sinks that stopped receiving records.
func (m *Multi) Failed() []string {
	var names []string
	for i, err := range m.failed {
		if err != nil {
			names = append(names, m.sinks[i].Name)
		}
	}
	return names
}

// Close closes every sink, failed ones included, and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("multi output: close %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
