// Package csvfile decodes comma-separated annotation exports.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/hejijunhao/labelprep/internal/source"
)

func init() {
	source.Register(Format{}, ".csv")
}

// Format decodes CSV with a header row. Legacy single-byte exports are
// transcoded to UTF-8 when Options.Encoding names an IANA charset.
type Format struct{}

func (Format) Decode(data []byte, opts source.Options) (*source.Table, error) {
	var in io.Reader = bytes.NewReader(data)
	if opts.Encoding != "" && !strings.EqualFold(opts.Encoding, "utf-8") {
		enc, err := ianaindex.IANA.Encoding(opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("csv: encoding %q: %w", opts.Encoding, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("csv: encoding %q is not supported", opts.Encoding)
		}
		in = transform.NewReader(in, enc.NewDecoder())
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: header: %w", err)
	}

	t := &source.Table{Header: header}
	for {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		if blank(values) {
			continue
		}
		line, _ := r.FieldPos(0)
		t.Rows = append(t.Rows, source.Row{Line: line, Values: values})
	}
	return t, nil
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
