package output

import (
	"fmt"
	"strconv"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Schema selects how a record's codes are written.
type Schema int

const (
	// MultiLabel writes a "labels" column holding the full code list.
	MultiLabel Schema = iota
	// SingleLabel writes a "label" column holding one code. Records with
	// zero or several codes are rejected.
	SingleLabel
)

// Header returns the column names for s.
func (s Schema) Header() []string {
	if s == SingleLabel {
		return []string{"id", "text", "label"}
	}
	return []string{"id", "text", "labels"}
}

// SingleRecord is the JSON shape of a SingleLabel row.
type SingleRecord struct {
	ID    string     `json:"id"`
	Text  string     `json:"text"`
	Label model.Code `json:"label"`
}

// Shape returns the value JSON sinks encode for rec.
func (s Schema) Shape(rec model.LabeledRecord) (any, error) {
	if s != SingleLabel {
		return rec, nil
	}
	code, err := single(rec)
	if err != nil {
		return nil, err
	}
	return SingleRecord{ID: rec.ID, Text: rec.Text, Label: code}, nil
}

// Values renders rec as a text row matching Header. The labels cell is the
// compact JSON list, e.g. "[1,4]".
func (s Schema) Values(rec model.LabeledRecord) ([]string, error) {
	if s != SingleLabel {
		b, err := rec.Labels.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return []string{rec.ID, rec.Text, string(b)}, nil
	}
	code, err := single(rec)
	if err != nil {
		return nil, err
	}
	return []string{rec.ID, rec.Text, strconv.Itoa(int(code))}, nil
}

func single(rec model.LabeledRecord) (model.Code, error) {
	code, ok := rec.Label()
	if !ok {
		return 0, &model.Error{
			Kind:     model.NotSingleLabel,
			RecordID: rec.ID,
			Detail:   fmt.Sprintf("%d codes %s", rec.Labels.Len(), rec.Labels),
		}
	}
	return code, nil
}
