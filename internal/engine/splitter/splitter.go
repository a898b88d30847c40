package splitter

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Options controls a stratified split.
type Options struct {
	// Train is the fraction of each label's records kept for training, in (0,1).
	Train float64
	// Valid is the fraction of each label's training records moved to the
	// validation set, in (0,1). Zero disables the validation split.
	Valid float64
	// Seed makes the split reproducible.
	Seed uint64
}

// Validate returns an InvalidFraction error when a fraction is out of range.
func (o Options) Validate() error {
	if !inOpenUnit(o.Train) {
		return &model.Error{Kind: model.InvalidFraction, Detail: fmt.Sprintf("train fraction %v not in (0,1)", o.Train)}
	}
	if o.Valid != 0 && !inOpenUnit(o.Valid) {
		return &model.Error{Kind: model.InvalidFraction, Detail: fmt.Sprintf("validation fraction %v not in (0,1)", o.Valid)}
	}
	return nil
}

func inOpenUnit(f float64) bool {
	return f > 0 && f < 1
}

// pcgStream is the fixed PCG stream selector; only the seed varies per run.
const pcgStream = 0x9e3779b97f4a7c15

// Split partitions single-label records into train, validation and test sets
// so that every label is divided in the same proportions. For each label,
// round(n*Train) shuffled records go to training and the rest to test; when
// Valid is set, round(nTrain*Valid) of that label's training records move to
// validation. Rounding is half-to-even. Each output set is shuffled again
// before returning so no per-label ordering survives. Identifiers must be
// unique so that no record can land in two partitions.
func Split(records []model.LabeledRecord, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if r.Labels.Len() != 1 {
			return Result{}, &model.Error{Kind: model.NotSingleLabel, RecordID: r.ID, Row: i + 1,
				Detail: fmt.Sprintf("record has %d labels", r.Labels.Len())}
		}
		if first, dup := seen[r.ID]; dup {
			return Result{}, &model.Error{Kind: model.SchemaViolation, RecordID: r.ID, Row: i + 1,
				Detail: fmt.Sprintf("duplicate identifier (first seen at row %d)", first)}
		}
		seen[r.ID] = i + 1
	}

	rng := rand.New(rand.NewPCG(opts.Seed, pcgStream))

	shuffled := slices.Clone(records)
	shuffle(rng, shuffled)

	groups := make(map[model.Code][]model.LabeledRecord)
	for _, r := range shuffled {
		code, _ := r.Label()
		groups[code] = append(groups[code], r)
	}
	codes := make([]model.Code, 0, len(groups))
	for c := range groups {
		codes = append(codes, c)
	}
	slices.Sort(codes)

	res := Result{
		Train:      make([]model.LabeledRecord, 0, len(records)),
		Validation: make([]model.LabeledRecord, 0),
		Test:       make([]model.LabeledRecord, 0),
	}
	for _, c := range codes {
		group := groups[c]
		nTrain := roundCount(len(group), opts.Train)
		train, test := group[:nTrain], group[nTrain:]
		if opts.Valid != 0 {
			nValid := roundCount(len(train), opts.Valid)
			res.Validation = append(res.Validation, train[:nValid]...)
			train = train[nValid:]
		}
		res.Train = append(res.Train, train...)
		res.Test = append(res.Test, test...)
	}

	shuffle(rng, res.Train)
	shuffle(rng, res.Validation)
	shuffle(rng, res.Test)
	return res, nil
}

func roundCount(n int, frac float64) int {
	k := int(math.RoundToEven(float64(n) * frac))
	return min(max(k, 0), n)
}

func shuffle(rng *rand.Rand, rs []model.LabeledRecord) {
	rng.Shuffle(len(rs), func(i, j int) { rs[i], rs[j] = rs[j], rs[i] })
}
