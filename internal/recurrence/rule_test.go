package recurrence_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]recurrence.Frequency{
		"YEARLY":    recurrence.Yearly,
		"yearly":    recurrence.Yearly,
		" Monthly ": recurrence.Monthly,
	} {
		got, err := recurrence.ParseFrequency(in)
		if err != nil || got != want {
			t.Errorf("ParseFrequency(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := recurrence.ParseFrequency("WEEKLY"); err == nil {
		t.Error("WEEKLY should be rejected")
	}
}

func TestValidate(t *testing.T) {
	valid := yearlyRule("abc12345", "2020-06-01")
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid rule: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *recurrence.Rule)
		want   error
	}{
		{name: "blank title", mutate: func(r *recurrence.Rule) { r.Title = "  " }, want: recurrence.ErrEmptyTitle},
		{name: "bad frequency", mutate: func(r *recurrence.Rule) { r.Frequency = "DAILY" }, want: recurrence.ErrInvalidFrequency},
		{name: "zero base date", mutate: func(r *recurrence.Rule) { r.BaseDate = civil.Date{} }, want: recurrence.ErrInvalidBaseDate},
		{name: "bad skip", mutate: func(r *recurrence.Rule) { r.Skips = []civil.Date{{Year: 2025, Month: 2, Day: 30}} }, want: civil.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSkipHelpers(t *testing.T) {
	r := yearlyRule("x", "2020-06-01")
	b, a := civil.MustParse("2026-06-01"), civil.MustParse("2025-06-01")

	if !r.AddSkip(b) || !r.AddSkip(a) {
		t.Fatal("AddSkip should report new skips")
	}
	if r.AddSkip(a) {
		t.Error("AddSkip should report duplicates")
	}
	if len(r.Skips) != 2 || r.Skips[0] != a || r.Skips[1] != b {
		t.Errorf("skips should be sorted and unique, got %v", r.Skips)
	}
	if !r.RemoveSkip(a) || r.RemoveSkip(a) {
		t.Error("RemoveSkip should remove exactly once")
	}
	if r.IsSkipped(a) || !r.IsSkipped(b) {
		t.Errorf("unexpected skips %v", r.Skips)
	}
}

func TestOverrideHelpers(t *testing.T) {
	r := yearlyRule("x", "2020-06-01")
	d := civil.MustParse("2027-06-01")
	r.SetOverride(d, recurrence.Override{Title: strPtr("Anniversary!")})
	if _, ok := r.Overrides[d]; !ok {
		t.Fatal("SetOverride did not store the override")
	}
	if !r.ClearOverride(d) || r.ClearOverride(d) {
		t.Error("ClearOverride should clear exactly once")
	}
}

func TestPatchApply(t *testing.T) {
	orig := yearlyRule("x", "2020-06-01")
	orig.Skips = []civil.Date{civil.MustParse("2025-06-01")}

	title := "Renamed"
	freq := recurrence.Monthly
	skips := []civil.Date{civil.MustParse("2026-01-01"), civil.MustParse("2025-01-01"), civil.MustParse("2026-01-01")}
	p := recurrence.Patch{Title: &title, Frequency: &freq, Skips: &skips}
	if p.IsEmpty() {
		t.Fatal("patch should not be empty")
	}

	got := p.Apply(orig)
	if got.Title != "Renamed" || got.Frequency != recurrence.Monthly {
		t.Errorf("Apply = %+v", got)
	}
	if got.Notes != orig.Notes || got.BaseDate != orig.BaseDate {
		t.Error("untouched fields changed")
	}
	if len(got.Skips) != 2 || got.Skips[0] != civil.MustParse("2025-01-01") {
		t.Errorf("skips not normalized: %v", got.Skips)
	}
	if orig.Title != "Anniversary" || len(orig.Skips) != 1 {
		t.Error("Apply must not modify the original rule")
	}
	if !(recurrence.Patch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
}

func TestRuleJSON(t *testing.T) {
	r := yearlyRule("abc12345", "2020-06-01")
	r.Skips = []civil.Date{civil.MustParse("2025-06-01")}
	r.Overrides = map[civil.Date]recurrence.Override{civil.MustParse("2027-06-01"): {Title: strPtr("Anniversary!")}}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back recurrence.Rule
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	o, ok := back.Overrides[civil.MustParse("2027-06-01")]
	if !ok || o.Title == nil || *o.Title != "Anniversary!" || o.Notes != nil {
		t.Errorf("override lost in round trip: %+v", back.Overrides)
	}
	if !back.IsSkipped(civil.MustParse("2025-06-01")) {
		t.Error("skip lost in round trip")
	}
}
