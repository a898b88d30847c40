package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hejijunhao/labelprep/internal/source/httpclient"
)

// Format decodes one file format into a Table.
type Format interface {
	Decode(data []byte, opts Options) (*Table, error)
}

// Options holds format-specific read settings.
type Options struct {
	Sheet    string // xlsx sheet name; empty means the first sheet
	Encoding string // IANA charset name for CSV input; empty means UTF-8
}

// Table is a decoded input file: a header and its data rows.
type Table struct {
	Header []string
	Rows   []Row
}

// Row is one data row. Line is the 1-based position in the source file
// (spreadsheet row or text line) for error reporting.
type Row struct {
	Line   int
	Values []string
}

// Value returns the cell at column i, or "" when the row is short.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Loader reads tables from local paths or http(s) URLs.
type Loader struct {
	client *httpclient.Client
}

// NewLoader returns a Loader that fetches remote files with client.
// A nil client gets httpclient defaults.
func NewLoader(client *httpclient.Client) *Loader {
	if client == nil {
		client = httpclient.New()
	}
	return &Loader{client: client}
}

// Load reads location and decodes it with the format registered for its
// extension.
func (l *Loader) Load(ctx context.Context, location string, opts Options) (*Table, error) {
	ext := Ext(location)
	format, err := Get(ext)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", location, err)
	}

	data, err := l.read(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", location, err)
	}

	t, err := format.Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", location, err)
	}
	return t, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	if IsRemote(location) {
		return l.client.Fetch(ctx, location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(location)
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Ext returns the lowercased extension of a path or URL, ignoring any
// query string.
func Ext(location string) string {
	if IsRemote(location) {
		if u, err := url.Parse(location); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(location))
}
