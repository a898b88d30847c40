// Package jsonl decodes newline-delimited JSON objects.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/hejijunhao/labelprep/internal/source"
)

func init() {
	source.Register(Format{}, ".jsonl", ".ndjson")
}

// Format reads one JSON object per line. The header is the union of keys
// in first-seen order; keys new to a line are appended sorted. Non-string
// values are kept as their compact JSON text, so a labels array [1,4]
// reads back as "[1,4]".
type Format struct{}

func (Format) Decode(data []byte, _ source.Options) (*source.Table, error) {
	t := &source.Table{}
	pos := map[string]int{}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("jsonl: line %d: %w", line, err)
		}

		var fresh []string
		for k := range obj {
			if _, ok := pos[k]; !ok {
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		for _, k := range fresh {
			pos[k] = len(t.Header)
			t.Header = append(t.Header, k)
		}

		values := make([]string, len(t.Header))
		for k, v := range obj {
			s, err := cell(v)
			if err != nil {
				return nil, fmt.Errorf("jsonl: line %d: field %q: %w", line, k, err)
			}
			values[pos[k]] = s
		}
		t.Rows = append(t.Rows, source.Row{Line: line, Values: values})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}
	return t, nil
}

func cell(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		b, err := json.Marshal(v)
		return string(b), err
	}
}
