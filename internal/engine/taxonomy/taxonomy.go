package taxonomy

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/hejijunhao/labelprep/internal/model"
)

// Label is one taxonomy entry as written in the configuration file.
type Label struct {
	Code  model.Code `yaml:"code"`
	Name  string     `yaml:"name"`
	Desc  string     `yaml:"description,omitempty"`
	Forms []string   `yaml:"forms,omitempty"`
}

// Document is the on-disk taxonomy configuration.
type Document struct {
	Labels []Label `yaml:"labels"`
}

// Taxonomy maps surface forms to canonical codes. It is immutable after
// construction and safe for concurrent use.
type Taxonomy struct {
	labels []Label               // sorted by code
	forms  map[string]model.Code // separator-folded surface form -> code
	byCode map[model.Code]int    // code -> index into labels
	stems  map[string]stemEntry  // stemmed key -> suggestion
}

// New builds a Taxonomy from labels. Codes must be unique and non-negative,
// names non-empty, and no surface form may be claimed twice.
func New(labels []Label) (*Taxonomy, error) {
	t := &Taxonomy{
		labels: make([]Label, len(labels)),
		forms:  make(map[string]model.Code),
		byCode: make(map[model.Code]int, len(labels)),
	}
	copy(t.labels, labels)
	slices.SortStableFunc(t.labels, func(a, b Label) int { return int(a.Code) - int(b.Code) })

	for i, lbl := range t.labels {
		if lbl.Code < 0 {
			return nil, &model.Error{Kind: model.UnknownCode, Detail: fmt.Sprintf("negative code %d for %q", lbl.Code, lbl.Name)}
		}
		if strings.TrimSpace(lbl.Name) == "" {
			return nil, &model.Error{Kind: model.SchemaViolation, Detail: fmt.Sprintf("label %d has no name", lbl.Code)}
		}
		if _, dup := t.byCode[lbl.Code]; dup {
			return nil, &model.Error{Kind: model.DuplicateCode, Detail: fmt.Sprintf("code %d defined twice", lbl.Code)}
		}
		t.byCode[lbl.Code] = i

		seen := make(map[string]bool, len(lbl.Forms)+1)
		for _, form := range append([]string{lbl.Name}, lbl.Forms...) {
			folded := Fold(form)
			if folded == "" {
				return nil, &model.Error{Kind: model.SchemaViolation, Detail: fmt.Sprintf("empty surface form in label %d", lbl.Code)}
			}
			if seen[folded] {
				return nil, &model.Error{Kind: model.DuplicateSurfaceForm, Input: form,
					Detail: fmt.Sprintf("listed twice for code %d", lbl.Code)}
			}
			seen[folded] = true

			key := separatorFold(folded)
			if prev, ok := t.forms[key]; ok && prev != lbl.Code {
				return nil, &model.Error{Kind: model.DuplicateSurfaceForm, Input: form,
					Detail: fmt.Sprintf("claimed by codes %d and %d", prev, lbl.Code)}
			}
			t.forms[key] = lbl.Code
		}
	}

	t.stems = buildStemIndex(t)
	return t, nil
}

// Parse builds a Taxonomy from a YAML document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("taxonomy: parse: %w", err)
	}
	if len(doc.Labels) == 0 {
		return nil, fmt.Errorf("taxonomy: no labels defined")
	}
	return New(doc.Labels)
}

// Load reads and parses a YAML taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Lookup returns the code for a surface form. The form is folded first, and
// spaces, hyphens and underscores are treated as equivalent.
func (t *Taxonomy) Lookup(form string) (model.Code, bool) {
	code, ok := t.forms[separatorFold(Fold(form))]
	return code, ok
}

// Name returns the canonical name of a code.
func (t *Taxonomy) Name(code model.Code) (string, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return "", false
	}
	return t.labels[i].Name, true
}

// Has reports whether code belongs to the taxonomy.
func (t *Taxonomy) Has(code model.Code) bool {
	_, ok := t.byCode[code]
	return ok
}

// Codes returns every code in ascending order.
func (t *Taxonomy) Codes() []model.Code {
	codes := make([]model.Code, len(t.labels))
	for i, lbl := range t.labels {
		codes[i] = lbl.Code
	}
	return codes
}

// Labels returns a copy of the configured labels sorted by code.
func (t *Taxonomy) Labels() []Label {
	return slices.Clone(t.labels)
}

// Forms returns the separator-folded surface forms that map to code, sorted.
func (t *Taxonomy) Forms(code model.Code) []string {
	var out []string
	for form, c := range t.forms {
		if c == code {
			out = append(out, form)
		}
	}
	slices.Sort(out)
	return out
}

// CheckCodes returns an UnknownCode error if any code in set is not defined.
func (t *Taxonomy) CheckCodes(set model.CodeSet) error {
	for _, c := range set.Sorted() {
		if !t.Has(c) {
			return &model.Error{Kind: model.UnknownCode, Detail: fmt.Sprintf("code %d is not in the taxonomy", c)}
		}
	}
	return nil
}

// Fold canonicalizes text for surface-form comparison: Unicode NFKC,
// lower case, whitespace runs collapsed to one space, trimmed.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// separatorFold maps hyphens and underscores to spaces so that
// "self-harm", "self_harm" and "self harm" share one key.
func separatorFold(folded string) string {
	if !strings.ContainsAny(folded, "-_") {
		return folded
	}
	return strings.Join(strings.FieldsFunc(folded, isSeparator), " ")
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}
