package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hejijunhao/labelprep/internal/engine"
	"github.com/hejijunhao/labelprep/internal/engine/normalizer"
	"github.com/hejijunhao/labelprep/internal/output"
	"github.com/hejijunhao/labelprep/internal/output/multi"
	"github.com/hejijunhao/labelprep/internal/pipeline"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var (
		input        string
		outputs      []string
		rejects      string
		allowPartial bool
	)
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize the final annotation of every record to label codes",
		Long: `normalize reads an annotation table (.csv, .xlsx, .jsonl, local or http(s))
and writes id, text and the sorted label code list to each --output.
The output format follows the file extension (.jsonl, .csv, .xlsx, .db);
"-" writes JSON lines to stdout.

Records whose annotation cannot be normalized are listed in --rejects.
The command fails when any record is rejected unless --allow-partial is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNormalize(cmd, input, outputs, rejects, allowPartial)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "annotation table path or URL")
	f.StringArrayVarP(&outputs, "output", "o", []string{"-"}, "output path; repeat for several")
	f.StringVar(&rejects, "rejects", "", "JSON lines file listing rejected records")
	f.BoolVar(&allowPartial, "allow-partial", false, "succeed even when some records are rejected")
	f.Bool("pretty", false, "indent JSON written to stdout (env LABELPREP_OUTPUT_PRETTY)")
	f.String("table", "", "SQLite table or xlsx sheet name (env LABELPREP_SQLITE_TABLE)")
	addInputFlags(cmd)
	cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) runNormalize(cmd *cobra.Command, input string, outputs []string, rejectsPath string, allowPartial bool) error {
	tax, err := a.taxonomy()
	if err != nil {
		return err
	}
	exclude, err := a.cfg.ExcludeSet()
	if err != nil {
		return err
	}
	eng, err := engine.New(normalizer.New(tax), exclude, a.cfg.Engine.Workers)
	if err != nil {
		return err
	}

	opts := output.Options{Schema: output.MultiLabel, Pretty: a.cfg.Output.Pretty, Table: a.cfg.Output.Table}
	sinks := make([]multi.Sink, 0, len(outputs))
	for _, path := range outputs {
		o, err := output.Open(a.cfg.Resolve(path), opts)
		if err != nil {
			multi.New(sinks...).Close()
			return err
		}
		sinks = append(sinks, multi.Sink{Name: path, Output: o})
	}
	fanout := multi.New(sinks...)
	var out output.Output = fanout
	if len(sinks) == 1 {
		out = sinks[0].Output
	}

	var rejects *os.File
	if rejectsPath != "" {
		rejects, err = os.Create(a.cfg.Resolve(rejectsPath))
		if err != nil {
			out.Close()
			return fmt.Errorf("rejects: %w", err)
		}
	}

	p := pipeline.New(a.loader(), eng,
		pipeline.WithColumns(a.columns()),
		pipeline.WithSourceOptions(a.sourceOptions()),
		pipeline.WithLogger(a.logger),
	)
	var rejectsW io.Writer
	if rejects != nil {
		rejectsW = rejects
	}
	rep, runErr := p.Normalize(cmd.Context(), a.cfg.Resolve(input), out, rejectsW)

	if failed := fanout.Failed(); len(failed) > 0 {
		a.logger.Warn("outputs left incomplete", zap.Strings("outputs", failed))
	}
	closeErr := out.Close()
	if rejects != nil {
		closeErr = errors.Join(closeErr, rejects.Close())
	}
	if err := errors.Join(runErr, closeErr); err != nil {
		return err
	}

	if rep.Rejected() > 0 && !allowPartial {
		return fmt.Errorf("%d of %d records rejected", rep.Rejected(), rep.Read)
	}
	return nil
}
