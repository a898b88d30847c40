package reduce

import (
	"errors"
	"fmt"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Stats counts what a reduction kept and dropped.
type Stats struct {
	Kept       int `json:"kept"`
	MultiLabel int `json:"multi_label"` // records with two or more codes
	Empty      int `json:"empty"`       // records whose every label was excluded
}

// Dropped returns the number of records removed.
func (s Stats) Dropped() int { return s.MultiLabel + s.Empty }

// SingleLabel keeps the records that carry exactly one code, preserving
// input order. Stratification is undefined for multi-label records, and a
// record left without labels after exclusion has nothing to stratify on.
func SingleLabel(records []model.LabeledRecord) ([]model.LabeledRecord, Stats) {
	var stats Stats
	if len(records) == 0 {
		return nil, stats
	}
	kept := make([]model.LabeledRecord, 0, len(records))
	for _, r := range records {
		switch r.Labels.Len() {
		case 0:
			stats.Empty++
		case 1:
			kept = append(kept, r)
		default:
			stats.MultiLabel++
		}
	}
	stats.Kept = len(kept)
	return kept, stats
}

// CheckCodes reports every record carrying a code for which known returns
// false, as UnknownCode errors joined in input order.
func CheckCodes(records []model.LabeledRecord, known func(model.Code) bool) error {
	var errs []error
	for _, r := range records {
		for _, c := range r.Labels {
			if !known(c) {
				errs = append(errs, &model.Error{Kind: model.UnknownCode, RecordID: r.ID,
					Detail: fmt.Sprintf("code %d is not in the taxonomy", c)})
			}
		}
	}
	return errors.Join(errs...)
}

// Exclude returns a copy of records with every code in exclude removed from
// each label set. An empty exclude returns records unchanged.
func Exclude(records []model.LabeledRecord, exclude model.CodeSet) []model.LabeledRecord {
	if len(exclude) == 0 {
		return records
	}
	out := make([]model.LabeledRecord, len(records))
	for i, r := range records {
		r.Labels = r.Labels.Without(exclude)
		out[i] = r
	}
	return out
}
