package model

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Code identifies one entry of the closed label taxonomy.
type Code int

// LabelSet is a set of canonical codes kept sorted ascending without duplicates.
// The zero value is the empty set.
type LabelSet []Code

// NewLabelSet builds a LabelSet from codes in any order, collapsing duplicates.
func NewLabelSet(codes ...Code) LabelSet {
	s := make(LabelSet, 0, len(codes))
	s = append(s, codes...)
	slices.Sort(s)
	return slices.Compact(s)
}

// Contains reports whether code is in the set.
func (s LabelSet) Contains(code Code) bool {
	_, found := slices.BinarySearch(s, code)
	return found
}

// Len returns the number of codes in the set.
func (s LabelSet) Len() int { return len(s) }

// Equal reports whether both sets hold the same codes.
func (s LabelSet) Equal(other LabelSet) bool {
	return slices.Equal(s, other)
}

// Without returns the set minus every code in exclude.
func (s LabelSet) Without(exclude CodeSet) LabelSet {
	out := make(LabelSet, 0, len(s))
	for _, c := range s {
		if !exclude.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String renders the set as "[1, 4]".
func (s LabelSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(int(c)))
	}
	b.WriteByte(']')
	return b.String()
}

// MarshalJSON encodes the empty set as [] rather than null.
func (s LabelSet) MarshalJSON() ([]byte, error) {
	return []byte(strings.ReplaceAll(s.String(), " ", "")), nil
}

// UnmarshalJSON decodes a JSON int array, sorting and collapsing duplicates.
func (s *LabelSet) UnmarshalJSON(data []byte) error {
	var codes []Code
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	*s = NewLabelSet(codes...)
	return nil
}

// CodeSet is an unordered set of codes, used for exclusion lists.
type CodeSet map[Code]struct{}

// NewCodeSet builds a CodeSet from the given codes.
func NewCodeSet(codes ...Code) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set. A nil CodeSet is empty.
func (s CodeSet) Has(code Code) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the codes in ascending order.
func (s CodeSet) Sorted() []Code {
	out := make([]Code, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
