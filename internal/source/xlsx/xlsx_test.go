package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hejijunhao/labelprep/internal/source"
)

func workbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestDecodeFirstSheet(t *testing.T) {
	data := workbook(t, "Sheet1", [][]any{
		{"ID", "Text", "Final_Label", "annotator_1"},
		{"a1", "pills", "['drugs']", "drugs"},
		{},
		{"a2", "dice", "['Games.']"},
	})

	tbl, err := Format{}.Decode(data, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Text", "Final_Label", "annotator_1"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, 4, tbl.Rows[1].Line)
	assert.Equal(t, "['Games.']", tbl.Rows[1].Value(2))
	assert.Equal(t, "", tbl.Rows[1].Value(3))
}

func TestDecodeNamedSheet(t *testing.T) {
	data := workbook(t, "round2", [][]any{
		{"id", "text", "final_label"},
		{"b1", "bet now", "['gambling']"},
	})

	tbl, err := Format{}.Decode(data, source.Options{Sheet: "round2"})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "b1", tbl.Rows[0].Value(0))

	_, err = Format{}.Decode(data, source.Options{Sheet: "missing"})
	assert.ErrorContains(t, err, "missing")
}

func TestDecodeNotAWorkbook(t *testing.T) {
	_, err := Format{}.Decode([]byte("id,text\n"), source.Options{})
	assert.ErrorContains(t, err, "xlsx: open")
}
