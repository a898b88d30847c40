package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

// Report summarizes a normalize run.
type Report struct {
	Read     int
	Written  int
	Failures []*model.Error
}

// Rejected returns the number of records that failed normalization.
func (r Report) Rejected() int { return len(r.Failures) }

// ByKind counts failures per error kind.
func (r Report) ByKind() map[model.ErrorKind]int {
	counts := make(map[model.ErrorKind]int)
	for _, f := range r.Failures {
		counts[f.Kind]++
	}
	return counts
}

// Err joins every failure, or returns nil for a clean run.
func (r Report) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Normalize reads input, normalizes every record and writes the successes
// to out in input order. Each failing record is written as a JSON line to
// rejects when it is non-nil. Per-record failures are returned in the
// Report, not as an error; the error covers input, output, and
// cancellation problems.
func (p *Pipeline) Normalize(ctx context.Context, input string, out output.Output, rejects io.Writer) (Report, error) {
	if p.engine == nil {
		return Report{}, errors.New("pipeline normalize: no engine configured")
	}

	table, err := p.loader.Load(ctx, input, p.srcOpts)
	if err != nil {
		return Report{}, fmt.Errorf("pipeline normalize: %w", err)
	}
	raws, err := table.RawRecords(p.columns)
	if err != nil {
		return Report{}, fmt.Errorf("pipeline normalize: %s: %w", input, err)
	}
	p.logger.Debug("input loaded", zap.String("input", input), zap.Int("rows", len(raws)))

	batch, err := p.engine.ProcessBatch(ctx, raws)
	if err != nil {
		return Report{}, fmt.Errorf("pipeline process batch: %w", err)
	}

	rep := Report{Read: len(raws), Failures: batch.Failures}
	if rep.Written, err = writeAll(ctx, out, batch.Records); err != nil {
		return rep, fmt.Errorf("pipeline output: %w", err)
	}

	if rejects != nil {
		if err := writeRejects(rejects, batch.Failures); err != nil {
			return rep, fmt.Errorf("pipeline rejects: %w", err)
		}
	}
	for _, f := range batch.Failures {
		p.logger.Debug("record rejected",
			zap.String("id", f.RecordID),
			zap.Int("row", f.Row),
			zap.Stringer("kind", f.Kind),
			zap.Error(f),
		)
	}
	p.logSummary(input, rep)
	return rep, nil
}

func (p *Pipeline) logSummary(input string, rep Report) {
	fields := []zap.Field{
		zap.String("input", input),
		zap.Int("read", rep.Read),
		zap.Int("written", rep.Written),
		zap.Int("rejected", rep.Rejected()),
	}
	byKind := rep.ByKind()
	kinds := make([]model.ErrorKind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fields = append(fields, zap.Int("rejected_"+k.String(), byKind[k]))
	}

	if rep.Rejected() > 0 {
		p.logger.Warn("normalize finished with rejects", fields...)
		return
	}
	p.logger.Info("normalize finished", fields...)
}

// reject is the JSON line written for one failed record.
type reject struct {
	*model.Error
	Message string `json:"message"`
}

func writeRejects(w io.Writer, failures []*model.Error) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, f := range failures {
		if err := enc.Encode(reject{Error: f, Message: f.Error()}); err != nil {
			return err
		}
	}
	return nil
}

func writeAll(ctx context.Context, out output.Output, recs []model.LabeledRecord) (int, error) {
	for i, rec := range recs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return i, err
			}
		}
		if err := out.Write(ctx, rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}
