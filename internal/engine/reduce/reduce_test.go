package reduce

import (
	"errors"
	"slices"
	"testing"

	"github.com/hejijunhao/labelprep/internal/model"
)

func rec(id string, codes ...model.Code) model.LabeledRecord {
	return model.LabeledRecord{ID: id, Text: "text " + id, Labels: model.NewLabelSet(codes...)}
}

func TestSingleLabelEmpty(t *testing.T) {
	kept, stats := SingleLabel(nil)
	if kept != nil {
		t.Fatalf("expected nil, got %v", kept)
	}
	if stats != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestSingleLabelFilters(t *testing.T) {
	records := []model.LabeledRecord{
		rec("a", 1),
		rec("b", 1, 4),
		rec("c"),
		rec("d", 4),
		rec("e", 2, 3, 6),
		rec("f", 0),
	}
	kept, stats := SingleLabel(records)

	wantIDs := []string{"a", "d", "f"}
	if len(kept) != len(wantIDs) {
		t.Fatalf("kept %d records, want %d", len(kept), len(wantIDs))
	}
	for i, id := range wantIDs {
		if kept[i].ID != id {
			t.Errorf("kept[%d].ID = %q, want %q", i, kept[i].ID, id)
		}
	}

	want := Stats{Kept: 3, MultiLabel: 2, Empty: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if stats.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", stats.Dropped())
	}
}

func TestSingleLabelDoesNotModifyInput(t *testing.T) {
	records := []model.LabeledRecord{rec("a", 1, 2), rec("b", 3)}
	SingleLabel(records)
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("input reordered: %v", records)
	}
}

func TestCheckCodes(t *testing.T) {
	known := func(c model.Code) bool { return c < 13 }

	if err := CheckCodes([]model.LabeledRecord{rec("a", 1), rec("b"), rec("c", 4, 12)}, known); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	err := CheckCodes([]model.LabeledRecord{rec("a", 999), rec("b", 4), rec("c", 13, 14)}, known)
	if !errors.Is(err, model.ErrUnknownCode) {
		t.Fatalf("expected UnknownCode, got %v", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined error, got %T", err)
	}
	var ids []string
	for _, e := range joined.Unwrap() {
		var me *model.Error
		if !errors.As(e, &me) {
			t.Fatalf("unexpected error type %T", e)
		}
		ids = append(ids, me.RecordID)
	}
	if want := []string{"a", "c", "c"}; !slices.Equal(ids, want) {
		t.Errorf("failing records = %v, want %v", ids, want)
	}
}

func TestExclude(t *testing.T) {
	records := []model.LabeledRecord{rec("a", 4, 7), rec("b", 7), rec("c", 9)}

	got := Exclude(records, model.NewCodeSet(7))
	want := []model.LabelSet{{4}, {}, {9}}
	for i := range want {
		if !got[i].Labels.Equal(want[i]) {
			t.Errorf("%s: labels = %v, want %v", got[i].ID, got[i].Labels, want[i])
		}
	}
	if !records[0].Labels.Equal(model.LabelSet{4, 7}) {
		t.Errorf("input modified: %v", records[0].Labels)
	}

	kept, stats := SingleLabel(got)
	if len(kept) != 2 || stats.Empty != 1 {
		t.Errorf("after exclusion kept=%d stats=%+v", len(kept), stats)
	}

	if same := Exclude(records, nil); &same[0] != &records[0] {
		t.Error("empty exclusion should return the input slice")
	}
}
