package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hejijunhao/labelprep/internal/engine/normalizer"
	"github.com/hejijunhao/labelprep/internal/model"
)

// Engine orchestrates schema checks and label normalization over records.
type Engine struct {
	normalizer *normalizer.Normalizer
	exclude    model.CodeSet
	workers    int
}

// New creates an Engine. Every excluded code must exist in the normalizer's
// taxonomy. workers <= 0 uses GOMAXPROCS.
func New(n *normalizer.Normalizer, exclude model.CodeSet, workers int) (*Engine, error) {
	if err := n.Taxonomy().CheckCodes(exclude); err != nil {
		return nil, fmt.Errorf("engine: exclusion set: %w", err)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{normalizer: n, exclude: exclude, workers: workers}, nil
}

// Process checks a single record against the table schema and normalizes
// its final annotation.
func (e *Engine) Process(raw model.RawRecord) (model.LabeledRecord, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return model.LabeledRecord{}, &model.Error{Kind: model.SchemaViolation, Row: raw.Row, Detail: "missing identifier"}
	}
	if strings.TrimSpace(raw.Text) == "" {
		return model.LabeledRecord{}, &model.Error{Kind: model.SchemaViolation, RecordID: raw.ID, Row: raw.Row, Detail: "missing text"}
	}
	return e.normalizer.NormalizeRecord(raw, e.exclude)
}

// Batch is the outcome of normalizing many records: successes in input
// order and every per-record failure, also in input order.
type Batch struct {
	Records  []model.LabeledRecord
	Failures []*model.Error
}

// Err joins all failures, or returns nil when every record succeeded.
func (b Batch) Err() error {
	if len(b.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(b.Failures))
	for i, f := range b.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

type outcome struct {
	rec model.LabeledRecord
	err error
}

// ProcessBatch normalizes raws across a bounded pool of workers. A bad record
// never stops the batch; it is reported in Batch.Failures. The returned error
// is non-nil only when ctx is cancelled. Duplicate identifiers fail every
// occurrence after the first.
func (e *Engine) ProcessBatch(ctx context.Context, raws []model.RawRecord) (Batch, error) {
	results := make([]outcome, len(raws))

	seen := make(map[string]int, len(raws))
	for i, raw := range raws {
		if raw.ID == "" {
			continue
		}
		if first, dup := seen[raw.ID]; dup {
			results[i].err = &model.Error{Kind: model.SchemaViolation, RecordID: raw.ID, Row: raw.Row,
				Detail: fmt.Sprintf("duplicate identifier (first seen at row %d)", raws[first].Row)}
			continue
		}
		seen[raw.ID] = i
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(raws) + e.workers - 1) / max(e.workers, 1)
	for start := 0; start < len(raws); start += chunk {
		end := min(start+chunk, len(raws))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if results[i].err != nil {
					continue
				}
				rec, err := e.Process(raws[i])
				results[i] = outcome{rec: rec, err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, fmt.Errorf("engine: batch: %w", err)
	}

	b := Batch{Records: make([]model.LabeledRecord, 0, len(raws))}
	for _, res := range results {
		if res.err != nil {
			b.Failures = append(b.Failures, asModelError(res.err))
			continue
		}
		b.Records = append(b.Records, res.rec)
	}
	return b, nil
}

func asModelError(err error) *model.Error {
	var e *model.Error
	if errors.As(err, &e) {
		return e
	}
	return &model.Error{Kind: model.SchemaViolation, Err: err}
}
