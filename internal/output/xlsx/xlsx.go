// Package xlsx writes records to a single-sheet Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

func init() {
	output.Register(func(path string, opts output.Options) (output.Output, error) {
		return New(path, opts.TableName(), opts.Schema)
	}, ".xlsx")
}

// Output streams rows into a workbook that is saved on Close.
type Output struct {
	mu     sync.Mutex
	f      *excelize.File
	sw     *excelize.StreamWriter
	path   string
	schema output.Schema
	row    int
}

// New starts a workbook whose only sheet is named sheet.
func New(path, sheet string, schema output.Schema) (*Output, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("xlsx output: %s: %w", path, err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx output: sheet %q: %w", sheet, err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx output: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx output: header style: %w", err)
	}
	if err := sw.SetColWidth(2, 2, 80); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx output: %w", err)
	}

	header := schema.Header()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx output: header: %w", err)
	}
	return &Output{f: f, sw: sw, path: path, schema: schema, row: 1}, nil
}

func (o *Output) Write(_ context.Context, rec model.LabeledRecord) error {
	values, err := o.schema.Values(rec)
	if err != nil {
		return fmt.Errorf("xlsx output: %w", err)
	}
	cells := []any{values[0], values[1], values[2]}
	if code, ok := rec.Label(); ok && o.schema == output.SingleLabel {
		cells[2] = int(code)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.row++
	cell, err := excelize.CoordinatesToCellName(1, o.row)
	if err != nil {
		return fmt.Errorf("xlsx output: %w", err)
	}
	if err := o.sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("xlsx output: row %d: %w", o.row, err)
	}
	return nil
}

// Close flushes the stream and saves the workbook.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.f.Close()
	if err := o.sw.Flush(); err != nil {
		return fmt.Errorf("xlsx output: flush: %w", err)
	}
	if err := o.f.SaveAs(o.path); err != nil {
		return fmt.Errorf("xlsx output: save %s: %w", o.path, err)
	}
	return nil
}
