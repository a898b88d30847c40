package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hejijunhao/labelprep/internal/engine/splitter"
	"github.com/hejijunhao/labelprep/internal/pipeline"
)

var formatExt = map[string]string{
	"csv":   ".csv",
	"jsonl": ".jsonl",
	"xlsx":  ".xlsx",
	"db":    ".db",
}

func newSplitCmd(a *app) *cobra.Command {
	var input, outDir string
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split normalized records into stratified train/validation/test sets",
		Long: `split reads normalized records (a "labels" JSON array column or a "label"
integer column), removes --exclude codes, keeps those with exactly one label
and splits each label's records by the train fraction. With --valid, that
fraction of each label's training records becomes the validation set.
Duplicate identifiers and codes outside the taxonomy fail the run.

One file per partition is written to --out-dir together with manifest.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, input, outDir)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "normalized records path or URL")
	f.StringVar(&outDir, "out-dir", "splits", "directory for partition files and manifest")
	f.String("format", "", "csv, jsonl, xlsx or db (env LABELPREP_OUTPUT_FORMAT)")
	f.Float64("train", 0, "fraction of each label kept for training (env LABELPREP_TRAIN_FRACTION)")
	f.Float64("valid", 0, "fraction of training records moved to validation; 0 disables (env LABELPREP_VALID_FRACTION)")
	f.Uint64("seed", 0, "shuffle seed (env LABELPREP_SEED)")
	addInputFlags(cmd)
	cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) runSplit(cmd *cobra.Command, input, outDir string) error {
	ext, ok := formatExt[a.cfg.Output.Format]
	if !ok {
		return fmt.Errorf("unknown output format %q", a.cfg.Output.Format)
	}
	tax, err := a.taxonomy()
	if err != nil {
		return err
	}
	exclude, err := a.cfg.ExcludeSet()
	if err != nil {
		return err
	}
	if err := tax.CheckCodes(exclude); err != nil {
		return err
	}

	p := pipeline.New(a.loader(), nil,
		pipeline.WithColumns(a.columns()),
		pipeline.WithSourceOptions(a.sourceOptions()),
		pipeline.WithTaxonomy(tax),
		pipeline.WithLogger(a.logger),
	)
	m, err := p.Split(cmd.Context(), a.cfg.Resolve(input), pipeline.SplitConfig{
		Options: splitter.Options{Train: a.cfg.Split.Train, Valid: a.cfg.Split.Valid, Seed: a.cfg.Split.Seed},
		OutDir:  a.cfg.Resolve(outDir),
		Ext:     ext,
		Exclude: exclude,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "run %s: train=%d validation=%d test=%d (dropped %d)\n",
		m.RunID, m.Totals.Train, m.Totals.Validation, m.Totals.Test, m.Reduction.Dropped())
	return nil
}
