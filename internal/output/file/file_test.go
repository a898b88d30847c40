package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

func testRecord(id string, codes ...model.Code) model.LabeledRecord {
	return model.LabeledRecord{ID: id, Text: "text for " + id, Labels: model.NewLabelSet(codes...)}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestWriteProducesValidNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := New(path, output.MultiLabel)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := out.Write(context.Background(), testRecord("r", 4, 1)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if out.Count() != 5 {
		t.Errorf("Count = %d, want 5", out.Count())
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		var rec model.LabeledRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("line %d: invalid JSON: %v", i, err)
		}
		if !rec.Labels.Equal(model.LabelSet{1, 4}) {
			t.Errorf("line %d: labels = %v, want [1, 4]", i, rec.Labels)
		}
	}
}

func TestSingleLabelSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	out, err := New(path, output.SingleLabel)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := out.Write(context.Background(), testRecord("a", 7)); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := out.Write(context.Background(), testRecord("b", 1, 2)); model.KindOf(err) != model.NotSingleLabel {
		t.Fatalf("expected NotSingleLabel, got %v", err)
	}
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 1 || lines[0] != `{"id":"a","text":"text for a","label":7}` {
		t.Fatalf("unexpected contents: %q", lines)
	}
}

func TestTruncatesByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	os.WriteFile(path, []byte("stale\nstale\n"), 0644)

	out, _ := New(path, output.MultiLabel)
	out.Write(context.Background(), testRecord("a"))
	out.Close()

	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}

func TestWithAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejects.jsonl")
	for i := 0; i < 2; i++ {
		out, err := New(path, output.MultiLabel, WithAppend())
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		out.Write(context.Background(), testRecord("a"))
		out.Close()
	}
	if lines := readLines(t, path); len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
}

func TestBufferingFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, _ := New(path, output.MultiLabel, WithBufSize(1<<20))
	out.Write(context.Background(), testRecord("a", 1))

	if info, _ := os.Stat(path); info.Size() != 0 {
		t.Errorf("expected nothing on disk before Close, got %d bytes", info.Size())
	}
	out.Close()
	if lines := readLines(t, path); len(lines) != 1 {
		t.Fatalf("got %d lines after Close, want 1", len(lines))
	}
}

func TestConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, _ := New(path, output.MultiLabel, WithBufSize(64))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				out.Write(context.Background(), testRecord("c", 3))
			}
		}()
	}
	wg.Wait()
	out.Close()

	lines := readLines(t, path)
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("line %d is not valid JSON: %q", i, line)
		}
	}
}

func TestRegisteredExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	out, err := output.Open(path, output.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := out.(*Output); !ok {
		t.Fatalf("Open returned %T, want *file.Output", out)
	}
	out.Close()
}

func TestOpenInvalidPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "out.jsonl"), output.MultiLabel); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
