package main

import (
	"github.com/spf13/cobra"

	"github.com/hejijunhao/labelprep/internal/config"
)

// addInputFlags registers the column and reader flags shared by the
// commands that read a table.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("id-column", "", "identifier column header (env LABELPREP_ID_COLUMN)")
	f.String("text-column", "", "text column header (env LABELPREP_TEXT_COLUMN)")
	f.String("label-column", "", "final annotation column header (env LABELPREP_LABEL_COLUMN)")
	f.String("sheet", "", "xlsx sheet name (env LABELPREP_SHEET)")
	f.String("encoding", "", "CSV charset, e.g. windows-1252 (env LABELPREP_ENCODING)")
}

// applyCommandFlags copies explicitly set command flags into cfg. Flags the
// command does not define are skipped.
func applyCommandFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	strs := map[string]*string{
		"id-column":    &cfg.Input.IDColumn,
		"text-column":  &cfg.Input.TextColumn,
		"label-column": &cfg.Input.LabelColumn,
		"sheet":        &cfg.Input.Sheet,
		"encoding":     &cfg.Input.Encoding,
		"format":       &cfg.Output.Format,
		"table":        &cfg.Output.Table,
	}
	for name, dst := range strs {
		if f.Lookup(name) == nil || !f.Changed(name) {
			continue
		}
		v, err := f.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	floats := map[string]*float64{
		"train": &cfg.Split.Train,
		"valid": &cfg.Split.Valid,
	}
	for name, dst := range floats {
		if f.Lookup(name) == nil || !f.Changed(name) {
			continue
		}
		v, err := f.GetFloat64(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if f.Lookup("seed") != nil && f.Changed("seed") {
		v, err := f.GetUint64("seed")
		if err != nil {
			return err
		}
		cfg.Split.Seed = v
	}
	if f.Lookup("pretty") != nil && f.Changed("pretty") {
		v, err := f.GetBool("pretty")
		if err != nil {
			return err
		}
		cfg.Output.Pretty = v
	}
	return nil
}
