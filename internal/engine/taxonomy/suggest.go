package taxonomy

import (
	"strings"

	"github.com/kljensen/snowball"

	"github.com/hejijunhao/labelprep/internal/model"
)

// stemEntry is the label a stemmed key points at. Keys shared by more than
// one code are kept but marked ambiguous so they never produce a suggestion.
type stemEntry struct {
	code      model.Code
	name      string
	ambiguous bool
}

func buildStemIndex(t *Taxonomy) map[string]stemEntry {
	idx := make(map[string]stemEntry, len(t.forms))
	for form, code := range t.forms {
		key := stemKey(form)
		if key == "" {
			continue
		}
		name, _ := t.Name(code)
		if prev, ok := idx[key]; ok {
			if prev.code != code {
				prev.ambiguous = true
				idx[key] = prev
			}
			continue
		}
		idx[key] = stemEntry{code: code, name: name}
	}
	return idx
}

// Suggest returns the canonical name of the label whose surface forms stem
// to the same words as fragment. It is a diagnostic hint for unknown labels
// and never used to resolve one.
func (t *Taxonomy) Suggest(fragment string) (string, bool) {
	key := stemKey(separatorFold(Fold(fragment)))
	if key == "" {
		return "", false
	}
	e, ok := t.stems[key]
	if !ok || e.ambiguous {
		return "", false
	}
	return e.name, true
}

func stemKey(form string) string {
	words := strings.Fields(form)
	for i, w := range words {
		stemmed, err := snowball.Stem(w, "english", true)
		if err != nil {
			continue
		}
		words[i] = stemmed
	}
	return strings.Join(words, " ")
}
