// Package xlsx decodes Excel workbooks.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hejijunhao/labelprep/internal/source"
)

func init() {
	source.Register(Format{}, ".xlsx", ".xlsm")
}

// Format reads one sheet of a workbook. The first row is the header.
type Format struct{}

func (Format) Decode(data []byte, opts source.Options) (*source.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, errors.New("xlsx: no sheets found")
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: sheet %q is empty", sheet)
	}

	t := &source.Table{Header: rows[0]}
	for i := 1; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		t.Rows = append(t.Rows, source.Row{Line: i + 1, Values: rows[i]})
	}
	return t, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
