package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Column names read from labeled (already normalized) input.
const (
	LabelsColumn = "labels" // JSON int array
	LabelColumn  = "label"  // single int
)

// Columns names the header cells holding each required field. Matching is
// case-insensitive and ignores surrounding whitespace.
type Columns struct {
	ID    string
	Text  string
	Label string
}

// RawRecords maps the table onto raw annotation records. Columns other than
// the identifier, text and label are kept as annotator columns.
func (t *Table) RawRecords(cols Columns) ([]model.RawRecord, error) {
	idx := t.index()
	id, err := requireColumn(idx, cols.ID)
	if err != nil {
		return nil, err
	}
	text, err := requireColumn(idx, cols.Text)
	if err != nil {
		return nil, err
	}
	label, err := requireColumn(idx, cols.Label)
	if err != nil {
		return nil, err
	}

	var annotators []int
	for i, h := range t.Header {
		if i != id && i != text && i != label && strings.TrimSpace(h) != "" {
			annotators = append(annotators, i)
		}
	}

	records := make([]model.RawRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := model.RawRecord{
			ID:    strings.TrimSpace(row.Value(id)),
			Text:  row.Value(text),
			Label: row.Value(label),
			Row:   row.Line,
		}
		if len(annotators) > 0 {
			rec.Annotators = make(map[string]string, len(annotators))
			for _, i := range annotators {
				rec.Annotators[strings.TrimSpace(t.Header[i])] = row.Value(i)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// LabeledRecords maps the table onto normalized records. The label cell is
// read from a "labels" column (JSON int array) or, failing that, a "label"
// column (single int). Every bad row is reported: the error joins one
// SchemaViolation per empty identifier, duplicate identifier or unreadable
// label cell.
func (t *Table) LabeledRecords(cols Columns) ([]model.LabeledRecord, error) {
	idx := t.index()
	id, err := requireColumn(idx, cols.ID)
	if err != nil {
		return nil, err
	}
	text, err := requireColumn(idx, cols.Text)
	if err != nil {
		return nil, err
	}
	labels, multi := idx[LabelsColumn]
	if !multi {
		var ok bool
		if labels, ok = idx[LabelColumn]; !ok {
			return nil, &model.Error{
				Kind:   model.SchemaViolation,
				Detail: fmt.Sprintf("missing column %q or %q", LabelsColumn, LabelColumn),
			}
		}
	}

	var errs []error
	records := make([]model.LabeledRecord, 0, len(t.Rows))
	seen := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		rec := model.LabeledRecord{
			ID:   strings.TrimSpace(row.Value(id)),
			Text: row.Value(text),
		}
		if rec.ID == "" {
			errs = append(errs, &model.Error{Kind: model.SchemaViolation, Row: row.Line, Detail: "empty identifier"})
			continue
		}
		if first, dup := seen[rec.ID]; dup {
			errs = append(errs, &model.Error{Kind: model.SchemaViolation, RecordID: rec.ID, Row: row.Line,
				Detail: fmt.Sprintf("duplicate identifier (first seen at row %d)", first)})
			continue
		}
		seen[rec.ID] = row.Line
		set, err := parseLabelCell(row.Value(labels), multi)
		if err != nil {
			errs = append(errs, model.WithRecord(err, rec.ID, row.Line))
			continue
		}
		rec.Labels = set
		records = append(records, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

func parseLabelCell(cell string, multi bool) (model.LabelSet, error) {
	cell = strings.TrimSpace(cell)
	if multi {
		var codes []model.Code
		if err := json.Unmarshal([]byte(cell), &codes); err != nil {
			return nil, &model.Error{Kind: model.SchemaViolation, Input: cell, Detail: "labels cell is not a JSON int array"}
		}
		for _, c := range codes {
			if c < 0 {
				return nil, &model.Error{Kind: model.SchemaViolation, Input: cell, Detail: "negative label code"}
			}
		}
		return model.NewLabelSet(codes...), nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil || n < 0 {
		return nil, &model.Error{Kind: model.SchemaViolation, Input: cell, Detail: "label cell is not a non-negative integer"}
	}
	return model.LabelSet{model.Code(n)}, nil
}

// index maps folded header names to column positions. The first of
// several identically named columns wins.
func (t *Table) index() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := headerKey(h)
		if _, dup := idx[key]; !dup && key != "" {
			idx[key] = i
		}
	}
	return idx
}

func requireColumn(idx map[string]int, name string) (int, error) {
	i, ok := idx[headerKey(name)]
	if !ok {
		return 0, &model.Error{Kind: model.SchemaViolation, Detail: fmt.Sprintf("missing column %q", name)}
	}
	return i, nil
}

func headerKey(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
