package splitter

import (
	"slices"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Result holds the three disjoint subsets produced by Split.
type Result struct {
	Train      []model.LabeledRecord
	Validation []model.LabeledRecord
	Test       []model.LabeledRecord
}

// Partition returns the records assigned to p.
func (r Result) Partition(p model.Partition) []model.LabeledRecord {
	switch p {
	case model.Train:
		return r.Train
	case model.Validation:
		return r.Validation
	case model.Test:
		return r.Test
	default:
		return nil
	}
}

// Len returns the total number of records across all partitions.
func (r Result) Len() int {
	return len(r.Train) + len(r.Validation) + len(r.Test)
}

// Assignments lists every record identifier with its partition, in
// train, validation, test order.
func (r Result) Assignments() []model.Assignment {
	out := make([]model.Assignment, 0, r.Len())
	for _, p := range model.Partitions {
		for _, rec := range r.Partition(p) {
			out = append(out, model.Assignment{ID: rec.ID, Partition: p})
		}
	}
	return out
}

// Counts is the number of records of one label in each partition.
type Counts struct {
	Train      int `json:"train"`
	Validation int `json:"validation"`
	Test       int `json:"test"`
}

// Total returns the label's record count across partitions.
func (c Counts) Total() int { return c.Train + c.Validation + c.Test }

// LabelCount pairs a code with its per-partition counts.
type LabelCount struct {
	Code model.Code `json:"code"`
	Counts
}

// Counts returns per-label partition counts sorted by code.
func (r Result) Counts() []LabelCount {
	byCode := make(map[model.Code]*Counts)
	add := func(recs []model.LabeledRecord, field func(*Counts) *int) {
		for _, rec := range recs {
			code, _ := rec.Label()
			c, ok := byCode[code]
			if !ok {
				c = &Counts{}
				byCode[code] = c
			}
			*field(c)++
		}
	}
	add(r.Train, func(c *Counts) *int { return &c.Train })
	add(r.Validation, func(c *Counts) *int { return &c.Validation })
	add(r.Test, func(c *Counts) *int { return &c.Test })

	out := make([]LabelCount, 0, len(byCode))
	for code, c := range byCode {
		out = append(out, LabelCount{Code: code, Counts: *c})
	}
	slices.SortFunc(out, func(a, b LabelCount) int { return int(a.Code) - int(b.Code) })
	return out
}
