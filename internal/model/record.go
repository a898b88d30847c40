package model

// RawRecord is the intermediate type produced by sources and consumed by the engine.
type RawRecord struct {
	ID         string
	Text       string
	Label      string            // adjudicated final annotation, e.g. "['drugs', 'mental health']"
	Annotators map[string]string // per-annotator annotation columns, ignored by the normalizer
	Row        int               // 1-based row in the source table, 0 when unknown
}

// LabeledRecord is a record whose annotation has been normalized to canonical codes.
type LabeledRecord struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Labels LabelSet `json:"labels"`
}

// Label returns the single code of a single-label record.
// ok is false when the record carries zero or several codes.
func (r LabeledRecord) Label() (code Code, ok bool) {
	if len(r.Labels) != 1 {
		return 0, false
	}
	return r.Labels[0], true
}

// Partition names a split subset.
type Partition string

const (
	Train      Partition = "train"
	Validation Partition = "validation"
	Test       Partition = "test"
)

// Partitions lists every partition in output order.
var Partitions = []Partition{Train, Validation, Test}

// Assignment tags a record identifier with the partition it was split into.
type Assignment struct {
	ID        string    `json:"id"`
	Partition Partition `json:"partition"`
}
