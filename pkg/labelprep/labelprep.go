package labelprep

import (
	"context"
	"fmt"

	"github.com/hejijunhao/labelprep/internal/engine"
	"github.com/hejijunhao/labelprep/internal/engine/normalizer"
	"github.com/hejijunhao/labelprep/internal/engine/reduce"
	"github.com/hejijunhao/labelprep/internal/engine/splitter"
	"github.com/hejijunhao/labelprep/internal/engine/taxonomy"
	"github.com/hejijunhao/labelprep/internal/model"
)

// Error is the typed failure returned by every operation. Use errors.Is
// with the sentinels below to test its kind.
type Error = model.Error

var (
	ErrUnknownLabel    = model.ErrUnknownLabel
	ErrMalformedInput  = model.ErrMalformedInput
	ErrInvalidFraction = model.ErrInvalidFraction
	ErrSchemaViolation = model.ErrSchemaViolation
	ErrUnknownCode     = model.ErrUnknownCode
	ErrNotSingleLabel  = model.ErrNotSingleLabel
)

// Annotation is one raw annotated record.
type Annotation struct {
	ID    string
	Text  string
	Label string // e.g. "['drugs', 'mental health']"
}

// Record is a record with canonical, sorted label codes.
type Record struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Labels []int  `json:"labels"`
}

// Preparer normalizes annotations and splits labeled records.
type Preparer struct {
	engine     *engine.Engine
	normalizer *normalizer.Normalizer
	taxonomy   *taxonomy.Taxonomy
	exclude    model.CodeSet
}

// New creates a Preparer, loading and validating the taxonomy.
func New(opts ...Option) (*Preparer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tax, err := loadTaxonomy(o)
	if err != nil {
		return nil, fmt.Errorf("labelprep: %w", err)
	}

	exclude := make(model.CodeSet, len(o.exclude))
	for _, c := range o.exclude {
		exclude[model.Code(c)] = struct{}{}
	}

	n := normalizer.New(tax)
	eng, err := engine.New(n, exclude, o.workers)
	if err != nil {
		return nil, fmt.Errorf("labelprep: %w", err)
	}
	return &Preparer{engine: eng, normalizer: n, taxonomy: tax, exclude: exclude}, nil
}

func loadTaxonomy(o options) (*taxonomy.Taxonomy, error) {
	switch {
	case o.taxonomyPath != "":
		return taxonomy.Load(o.taxonomyPath)
	case o.taxonomyYAML != nil:
		return taxonomy.Parse(o.taxonomyYAML)
	default:
		return taxonomy.Default()
	}
}

// Normalize parses one annotation string into sorted, unique codes with
// excluded codes removed. A result may be empty when every label was
// excluded.
func (p *Preparer) Normalize(raw string) ([]int, error) {
	set, err := p.normalizer.Normalize(raw, p.exclude)
	if err != nil {
		return nil, err
	}
	return codesToInts(set), nil
}

// Batch is the outcome of NormalizeRecords.
type Batch struct {
	Records  []Record // successes in input order
	Failures []*Error // per-record failures in input order
}

// NormalizeRecords normalizes every annotation, collecting failures instead
// of stopping at the first one. The error is non-nil only when ctx is
// cancelled.
func (p *Preparer) NormalizeRecords(ctx context.Context, anns []Annotation) (Batch, error) {
	raws := make([]model.RawRecord, len(anns))
	for i, a := range anns {
		raws[i] = model.RawRecord{ID: a.ID, Text: a.Text, Label: a.Label, Row: i + 1}
	}
	b, err := p.engine.ProcessBatch(ctx, raws)
	if err != nil {
		return Batch{}, err
	}
	out := Batch{Records: make([]Record, len(b.Records)), Failures: b.Failures}
	for i, r := range b.Records {
		out.Records[i] = recordFromModel(r)
	}
	return out, nil
}

// SplitOptions controls Split. Valid is the fraction of each label's
// training records moved to validation; zero disables validation.
type SplitOptions struct {
	Train float64
	Valid float64
	Seed  uint64
}

// Split holds the partitions produced by Split.
type Split struct {
	Train      []Record
	Validation []Record
	Test       []Record
	Dropped    int // records without exactly one label after exclusion
}

// Split removes excluded codes, keeps the single-label records and
// partitions them per label. Records must have unique identifiers and
// codes from the taxonomy. The same records and seed always give the same
// partitions.
func (p *Preparer) Split(records []Record, opts SplitOptions) (Split, error) {
	so := splitter.Options{Train: opts.Train, Valid: opts.Valid, Seed: opts.Seed}
	if err := so.Validate(); err != nil {
		return Split{}, err
	}

	labeled := make([]model.LabeledRecord, len(records))
	for i, r := range records {
		codes := make([]model.Code, len(r.Labels))
		for j, c := range r.Labels {
			codes[j] = model.Code(c)
		}
		labeled[i] = model.LabeledRecord{ID: r.ID, Text: r.Text, Labels: model.NewLabelSet(codes...)}
	}
	if err := reduce.CheckCodes(labeled, p.taxonomy.Has); err != nil {
		return Split{}, err
	}
	kept, stats := reduce.SingleLabel(reduce.Exclude(labeled, p.exclude))

	res, err := splitter.Split(kept, so)
	if err != nil {
		return Split{}, err
	}
	return Split{
		Train:      recordsFromModel(res.Train),
		Validation: recordsFromModel(res.Validation),
		Test:       recordsFromModel(res.Test),
		Dropped:    stats.Dropped(),
	}, nil
}

func recordFromModel(r model.LabeledRecord) Record {
	return Record{ID: r.ID, Text: r.Text, Labels: codesToInts(r.Labels)}
}

func recordsFromModel(rs []model.LabeledRecord) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = recordFromModel(r)
	}
	return out
}

func codesToInts(set model.LabelSet) []int {
	out := make([]int, len(set))
	for i, c := range set {
		out[i] = int(c)
	}
	return out
}
