package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/output"
)

func testRecord() model.LabeledRecord {
	return model.LabeledRecord{ID: "r1", Text: "buy <pills> & more", Labels: model.LabelSet{4, 5}}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(output.MultiLabel, false)
		out.Write(context.Background(), testRecord())
	})

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	want := `{"id":"r1","text":"buy <pills> & more","labels":[4,5]}`
	if lines[0] != want {
		t.Errorf("got %s, want %s", lines[0], want)
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewWithWriter(&buf, output.MultiLabel, true)
	out.Write(context.Background(), testRecord())

	if !strings.Contains(buf.String(), "\n  \"id\"") {
		t.Errorf("expected indented output, got %q", buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}

func TestOutputSingleLabel(t *testing.T) {
	var buf bytes.Buffer
	out := NewWithWriter(&buf, output.SingleLabel, false)
	if err := out.Write(context.Background(), testRecord()); model.KindOf(err) != model.NotSingleLabel {
		t.Fatalf("expected NotSingleLabel, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %q", buf.String())
	}
}

func TestRegisteredAsDash(t *testing.T) {
	out, err := output.Open("-", output.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := out.(*Output); !ok {
		t.Fatalf("Open(-) returned %T", out)
	}
}
