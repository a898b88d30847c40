package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hejijunhao/labelprep/internal/engine/reduce"
	"github.com/hejijunhao/labelprep/internal/engine/splitter"
	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

// ManifestFile is the name of the run manifest written next to the splits.
const ManifestFile = "manifest.json"

// SplitConfig describes where and how split outputs are written.
type SplitConfig struct {
	splitter.Options
	OutDir  string
	Ext     string        // output extension, e.g. ".csv"; selects the sink
	Exclude model.CodeSet // codes removed before single-label reduction
}

// Manifest records how a split was produced.
type Manifest struct {
	RunID     string                     `json:"run_id"`
	CreatedAt time.Time                  `json:"created_at"`
	Input     string                     `json:"input"`
	Seed      uint64                     `json:"seed"`
	Train     float64                    `json:"train_fraction"`
	Valid     float64                    `json:"validation_fraction"`
	Excluded  []model.Code               `json:"excluded,omitempty"`
	Reduction reduce.Stats               `json:"reduction"`
	Files     map[model.Partition]string `json:"files"`
	Totals    splitter.Counts            `json:"totals"`
	Labels    []LabelSummary             `json:"labels"`
}

// LabelSummary is one label's per-partition counts.
type LabelSummary struct {
	Code model.Code `json:"code"`
	Name string     `json:"name,omitempty"`
	splitter.Counts
}

// Split reads labeled records from input, removes cfg.Exclude codes, keeps
// the single-label ones, splits them per label and writes one file per
// partition plus a manifest into cfg.OutDir. Input with duplicate
// identifiers, unreadable label cells or codes outside the taxonomy is
// rejected before anything is written. The validation file is written only
// when cfg.Valid is non-zero.
func (p *Pipeline) Split(ctx context.Context, input string, cfg SplitConfig) (Manifest, error) {
	if err := cfg.Options.Validate(); err != nil {
		return Manifest{}, err
	}

	table, err := p.loader.Load(ctx, input, p.srcOpts)
	if err != nil {
		return Manifest{}, fmt.Errorf("pipeline split: %w", err)
	}
	records, err := table.LabeledRecords(p.columns)
	if err != nil {
		return Manifest{}, fmt.Errorf("pipeline split: %s: %w", input, err)
	}
	if p.labels != nil {
		if err := reduce.CheckCodes(records, p.labels.Has); err != nil {
			return Manifest{}, fmt.Errorf("pipeline split: %s: %w", input, err)
		}
	}

	kept, stats := reduce.SingleLabel(reduce.Exclude(records, cfg.Exclude))
	if stats.Dropped() > 0 {
		p.logger.Info("dropped records without exactly one label",
			zap.Int("multi_label", stats.MultiLabel),
			zap.Int("empty", stats.Empty),
		)
	}

	res, err := splitter.Split(kept, cfg.Options)
	if err != nil {
		return Manifest{}, fmt.Errorf("pipeline split: %w", err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("pipeline split: %w", err)
	}

	m := Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Input:     input,
		Seed:      cfg.Seed,
		Train:     cfg.Train,
		Valid:     cfg.Valid,
		Excluded:  cfg.Exclude.Sorted(),
		Reduction: stats,
		Files:     make(map[model.Partition]string),
	}
	for _, part := range model.Partitions {
		if part == model.Validation && cfg.Valid == 0 {
			continue
		}
		name := string(part) + cfg.Ext
		if err := p.writePartition(ctx, filepath.Join(cfg.OutDir, name), part, res.Partition(part)); err != nil {
			return Manifest{}, err
		}
		m.Files[part] = name
	}

	for _, lc := range res.Counts() {
		s := LabelSummary{Code: lc.Code, Counts: lc.Counts}
		if p.labels != nil {
			s.Name, _ = p.labels.Name(lc.Code)
		}
		m.Labels = append(m.Labels, s)
		m.Totals.Train += lc.Train
		m.Totals.Validation += lc.Validation
		m.Totals.Test += lc.Test
	}

	if err := writeManifest(filepath.Join(cfg.OutDir, ManifestFile), m); err != nil {
		return Manifest{}, fmt.Errorf("pipeline split: %w", err)
	}

	p.logger.Info("split finished",
		zap.String("run_id", m.RunID),
		zap.String("out_dir", cfg.OutDir),
		zap.Int("train", m.Totals.Train),
		zap.Int("validation", m.Totals.Validation),
		zap.Int("test", m.Totals.Test),
		zap.Int("labels", len(m.Labels)),
	)
	return m, nil
}

func (p *Pipeline) writePartition(ctx context.Context, path string, part model.Partition, recs []model.LabeledRecord) error {
	out, err := output.Open(path, output.Options{Schema: output.SingleLabel, Table: string(part)})
	if err != nil {
		return fmt.Errorf("pipeline split: %w", err)
	}
	if _, err := writeAll(ctx, out, recs); err != nil {
		out.Close()
		return fmt.Errorf("pipeline split: %s: %w", part, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("pipeline split: %s: %w", part, err)
	}
	p.logger.Debug("partition written", zap.String("partition", string(part)), zap.Int("records", len(recs)), zap.String("path", path))
	return nil
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
