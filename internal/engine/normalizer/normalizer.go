package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hejijunhao/labelprep/internal/engine/taxonomy"
	"github.com/hejijunhao/labelprep/internal/model"
)

// Normalizer converts raw annotation strings such as "['Weapon', 'drugs']]"
// into canonical label sets. It holds no mutable state and is safe for
// concurrent use.
type Normalizer struct {
	taxonomy *taxonomy.Taxonomy
}

// New creates a Normalizer backed by the given taxonomy.
func New(tax *taxonomy.Taxonomy) *Normalizer {
	return &Normalizer{taxonomy: tax}
}

// Taxonomy returns the taxonomy used for lookups.
func (n *Normalizer) Taxonomy() *taxonomy.Taxonomy {
	return n.taxonomy
}

// Normalize parses raw into a set of codes and drops every code in exclude.
// An empty, non-nil set with a nil error means every label was excluded.
func (n *Normalizer) Normalize(raw string, exclude model.CodeSet) (model.LabelSet, error) {
	frags, err := Fragments(raw)
	if err != nil {
		return nil, err
	}

	codes := make([]model.Code, 0, len(frags))
	for _, f := range frags {
		code, ok := n.taxonomy.Lookup(f)
		if !ok {
			e := &model.Error{Kind: model.UnknownLabel, Input: raw, Fragment: f}
			if s, ok := n.taxonomy.Suggest(f); ok {
				e.Suggestion = s
			}
			return nil, e
		}
		codes = append(codes, code)
	}
	return model.NewLabelSet(codes...).Without(exclude), nil
}

// NormalizeRecord normalizes the record's final annotation. Errors carry the
// record identifier and source row.
func (n *Normalizer) NormalizeRecord(rec model.RawRecord, exclude model.CodeSet) (model.LabeledRecord, error) {
	labels, err := n.Normalize(rec.Label, exclude)
	if err != nil {
		return model.LabeledRecord{}, model.WithRecord(err, rec.ID, rec.Row)
	}
	return model.LabeledRecord{ID: rec.ID, Text: rec.Text, Labels: labels}, nil
}

// Fragments splits raw on every ',' and '.', strips brackets, quotes,
// whitespace and stray periods from each piece, and folds case and Unicode
// width. Pieces that are empty after stripping are skipped. A string that is
// not valid UTF-8, contains control bytes, or yields no fragment at all is
// MalformedInput.
//
// Periods always delimit, so a label spelled with an internal period is
// split in two.
func Fragments(raw string) ([]string, error) {
	if !utf8.ValidString(raw) {
		return nil, &model.Error{Kind: model.MalformedInput, Input: raw, Detail: "invalid UTF-8"}
	}
	if strings.IndexFunc(raw, isControl) >= 0 {
		return nil, &model.Error{Kind: model.MalformedInput, Input: raw, Detail: "control character in annotation"}
	}

	var frags []string
	for _, piece := range strings.FieldsFunc(taxonomy.Fold(raw), isDelimiter) {
		f := strings.TrimFunc(piece, isStructural)
		if f == "" {
			continue
		}
		frags = append(frags, f)
	}
	if len(frags) == 0 {
		return nil, &model.Error{Kind: model.MalformedInput, Input: raw, Detail: "no labels in annotation"}
	}
	return frags, nil
}

func isDelimiter(r rune) bool {
	return r == ',' || r == '.'
}

func isStructural(r rune) bool {
	switch r {
	case '[', ']', '\'', '"', '`', '.', '‘', '’', '“', '”':
		return true
	}
	return unicode.IsSpace(r)
}

func isControl(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}
