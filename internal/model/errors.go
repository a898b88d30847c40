package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies labelprep failures.
type ErrorKind int

const (
	// UnknownLabel: a fragment has no entry in the taxonomy.
	UnknownLabel ErrorKind = iota + 1
	// MalformedInput: the annotation string cannot be parsed at all.
	MalformedInput
	// InvalidFraction: a split fraction lies outside (0,1).
	InvalidFraction
	// SchemaViolation: a source row breaks the fixed table schema.
	SchemaViolation
	// DuplicateSurfaceForm: two taxonomy entries claim the same surface form.
	DuplicateSurfaceForm
	// DuplicateCode: two taxonomy entries share a code.
	DuplicateCode
	// UnknownCode: a configured code is not part of the taxonomy.
	UnknownCode
	// NotSingleLabel: the splitter received a record without exactly one code.
	NotSingleLabel
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownLabel:
		return "unknown_label"
	case MalformedInput:
		return "malformed_input"
	case InvalidFraction:
		return "invalid_fraction"
	case SchemaViolation:
		return "schema_violation"
	case DuplicateSurfaceForm:
		return "duplicate_surface_form"
	case DuplicateCode:
		return "duplicate_code"
	case UnknownCode:
		return "unknown_code"
	case NotSingleLabel:
		return "not_single_label"
	default:
		return fmt.Sprintf("error_kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON reject reports.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Sentinels for errors.Is matching by kind.
var (
	ErrUnknownLabel         = &Error{Kind: UnknownLabel}
	ErrMalformedInput       = &Error{Kind: MalformedInput}
	ErrInvalidFraction      = &Error{Kind: InvalidFraction}
	ErrSchemaViolation      = &Error{Kind: SchemaViolation}
	ErrDuplicateSurfaceForm = &Error{Kind: DuplicateSurfaceForm}
	ErrDuplicateCode        = &Error{Kind: DuplicateCode}
	ErrUnknownCode          = &Error{Kind: UnknownCode}
	ErrNotSingleLabel       = &Error{Kind: NotSingleLabel}
)

// Error is a typed labelprep failure. Fields other than Kind are optional
// context and are filled in as the error travels up from the normalizer.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	RecordID   string    `json:"record_id,omitempty"`
	Row        int       `json:"row,omitempty"`
	Input      string    `json:"input,omitempty"`      // raw annotation or offending value
	Fragment   string    `json:"fragment,omitempty"`   // folded fragment that failed lookup
	Suggestion string    `json:"suggestion,omitempty"` // closest known surface form, if any
	Detail     string    `json:"detail,omitempty"`
	Err        error     `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.RecordID != "" {
		fmt.Fprintf(&b, " (record %s)", e.RecordID)
	}
	if e.Fragment != "" {
		fmt.Fprintf(&b, ": %q", e.Fragment)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Input != "" && e.Input != e.Fragment {
		fmt.Fprintf(&b, " in %q", e.Input)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrUnknownLabel)
// works regardless of context fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the ErrorKind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// WithRecord returns err annotated with the record identifier and row.
// Non-*Error values are wrapped as SchemaViolation.
func WithRecord(err error, id string, row int) error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: SchemaViolation, RecordID: id, Row: row, Err: err}
	}
	cp := *e
	cp.RecordID = id
	cp.Row = row
	return &cp
}
