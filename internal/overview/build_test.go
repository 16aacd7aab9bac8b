package overview_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return loc
}

func ptr[T any](v T) *T { return &v }

func TestBuildWorkItemLocalProjection(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	day := civil.MustParse("2025-09-20")

	work := []entry.WorkEntry{
		{ID: "work0001", Title: "Planning", Start: time.Date(2025, 9, 20, 9, 0, 0, 0, loc)},
	}

	items, err := overview.Build(day, day, loc, work, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1: %+v", len(items), items)
	}
	got := items[0]
	if got.Kind != overview.KindWork || got.ID != "work0001" {
		t.Errorf("item = %+v", got)
	}
	if got.TimeHHMM != "09:00" {
		t.Errorf("TimeHHMM = %q, want 09:00", got.TimeHHMM)
	}
	if got.Date != day {
		t.Errorf("Date = %s, want %s", got.Date, day)
	}
	if got.Priority != "" {
		t.Errorf("work item should not carry a priority, got %q", got.Priority)
	}
}

func TestBuildUsesLocalDateNotUTC(t *testing.T) {
	loc := mustLoad(t, "America/Los_Angeles")

	// 23:30 local on the 19th is already the 20th in UTC.
	lateEvening := time.Date(2025, 9, 19, 23, 30, 0, 0, loc)
	work := []entry.WorkEntry{{ID: "late0001", Title: "Deploy", Start: lateEvening.UTC()}}

	items, err := overview.Build(civil.MustParse("2025-09-20"), civil.MustParse("2025-09-20"), loc, work, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("entry from the local 19th leaked into the 20th: %+v", items)
	}

	items, err = overview.Build(civil.MustParse("2025-09-19"), civil.MustParse("2025-09-19"), loc, work, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(items) != 1 || items[0].TimeHHMM != "23:30" {
		t.Errorf("items = %+v, want one item at 23:30", items)
	}
}

func TestBuildOrdering(t *testing.T) {
	loc := time.UTC
	from := civil.MustParse("2025-03-01")
	to := civil.MustParse("2025-03-31")

	work := []entry.WorkEntry{
		{ID: "work0002", Title: "Later", Start: time.Date(2025, 3, 10, 15, 0, 0, 0, loc)},
		{ID: "work0001", Title: "Earlier", Start: time.Date(2025, 3, 2, 8, 0, 0, 0, loc)},
		{ID: "work0003", Title: "Outside", Start: time.Date(2025, 4, 1, 8, 0, 0, 0, loc)},
	}
	due := []entry.Todo{
		{ID: "todo0002", Title: "Taxes", Priority: "HIGH", Due: ptr(time.Date(2025, 3, 20, 0, 0, 0, 0, loc))},
		{ID: "todo0001", Title: "Rent", Priority: "", Due: ptr(time.Date(2025, 3, 1, 0, 0, 0, 0, loc))},
		{ID: "todo0003", Title: "Someday", Priority: "low"},
	}
	rules := []recurrence.Rule{
		{ID: "r2", Title: "Gym fee", BaseDate: civil.MustParse("2024-01-05"), Frequency: recurrence.Monthly},
		{ID: "r1", Title: "Mum", BaseDate: civil.MustParse("1960-03-05"), Frequency: recurrence.Yearly},
	}

	items, err := overview.Build(from, to, loc, work, due, rules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []struct {
		kind overview.Kind
		id   string
	}{
		{overview.KindWork, "work0001"},
		{overview.KindWork, "work0002"},
		{overview.KindTodo, "todo0001"},
		{overview.KindTodo, "todo0002"},
		{overview.KindRecurringMonthly, "r2@2025-03-05"},
		{overview.KindRecurringYearly, "r1@2025-03-05"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(items), len(want), items)
	}
	for i, w := range want {
		if items[i].Kind != w.kind || items[i].ID != w.id {
			t.Errorf("items[%d] = %s %s, want %s %s", i, items[i].Kind, items[i].ID, w.kind, w.id)
		}
	}
	if items[2].Priority != overview.PriorityMed {
		t.Errorf("empty priority normalized to %q, want med", items[2].Priority)
	}
	if items[3].Priority != overview.PriorityHigh {
		t.Errorf("HIGH normalized to %q, want high", items[3].Priority)
	}
}

func TestBuildIncludesRangeBounds(t *testing.T) {
	loc := time.UTC
	from := civil.MustParse("2025-05-01")
	to := civil.MustParse("2025-05-03")
	work := []entry.WorkEntry{
		{ID: "first001", Title: "First", Start: time.Date(2025, 5, 1, 0, 0, 0, 0, loc)},
		{ID: "last0001", Title: "Last", Start: time.Date(2025, 5, 3, 23, 59, 0, 0, loc)},
	}
	items, err := overview.Build(from, to, loc, work, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("bounds not inclusive: %+v", items)
	}
}

func TestBuildInvertedRange(t *testing.T) {
	_, err := overview.Build(civil.MustParse("2025-09-21"), civil.MustParse("2025-09-20"), time.UTC, nil, nil, nil)
	if !errors.Is(err, civil.ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestBuildEmptyIsNonNil(t *testing.T) {
	day := civil.MustParse("2025-01-01")
	items, err := overview.Build(day, day, time.UTC, nil, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if items == nil {
		t.Error("items should be an empty slice, not nil")
	}
	data, _ := json.Marshal(items)
	if string(data) != "[]" {
		t.Errorf("JSON = %s, want []", data)
	}
}

func TestBuildStableForEqualStarts(t *testing.T) {
	at := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)
	work := []entry.WorkEntry{
		{ID: "aaaa0001", Title: "A", Start: at},
		{ID: "bbbb0001", Title: "B", Start: at},
		{ID: "cccc0001", Title: "C", Start: at},
	}
	day := civil.MustParse("2025-02-02")
	items, err := overview.Build(day, day, time.UTC, work, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, id := range []string{"aaaa0001", "bbbb0001", "cccc0001"} {
		if items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		in   string
		want overview.Priority
	}{
		{"", overview.PriorityMed},
		{"low", overview.PriorityLow},
		{"  Lowest ", overview.PriorityLow},
		{"h", overview.PriorityHigh},
		{"HIGH", overview.PriorityHigh},
		{"medium", overview.PriorityMed},
		{"urgent", overview.PriorityMed},
	}
	for _, tt := range tests {
		if got := overview.NormalizePriority(tt.in); got != tt.want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestItemJSON(t *testing.T) {
	item := overview.Item{
		Kind:  overview.KindRecurringYearly,
		ID:    "7@2026-06-01",
		Title: "Anniversary",
		Date:  civil.MustParse("2026-06-01"),
	}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"kind":"recurring-yearly","id":"7@2026-06-01","title":"Anniversary","dateISO":"2026-06-01"}`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}
}
