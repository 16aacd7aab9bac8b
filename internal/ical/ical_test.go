package ical_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/ical"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

func ptr[T any](v T) *T { return &v }

func anniversary() recurrence.Rule {
	return recurrence.Rule{
		ID:        "anniv001",
		Title:     "Anniversary",
		Notes:     "Book dinner",
		BaseDate:  civil.MustParse("2020-06-01"),
		Frequency: recurrence.Yearly,
		Skips:     []civil.Date{civil.MustParse("2025-06-01")},
		Overrides: map[civil.Date]recurrence.Override{
			civil.MustParse("2027-06-01"): {Title: ptr("Anniversary!")},
			civil.MustParse("2026-07-04"): {Title: ptr("Belated party")},
			civil.MustParse("2025-06-01"): {Title: ptr("Never shown")},
		},
	}
}

func parse(t *testing.T, f ical.Feed) *ics.Calendar {
	t.Helper()
	var buf bytes.Buffer
	if err := ical.Write(&buf, f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseCalendar: %v\n%s", err, buf.String())
	}
	return cal
}

func prop(ev *ics.VEvent, p ics.ComponentProperty) string {
	if v := ev.GetProperty(p); v != nil {
		return v.Value
	}
	return ""
}

func TestRRule(t *testing.T) {
	tests := []struct {
		name string
		rule recurrence.Rule
		want []string
	}{
		{
			name: "yearly",
			rule: recurrence.Rule{BaseDate: civil.MustParse("2020-06-01"), Frequency: recurrence.Yearly},
			want: []string{"FREQ=YEARLY", "BYMONTH=6", "BYMONTHDAY=1"},
		},
		{
			name: "monthly",
			rule: recurrence.Rule{BaseDate: civil.MustParse("2024-01-31"), Frequency: recurrence.Monthly},
			want: []string{"FREQ=MONTHLY", "BYMONTHDAY=31"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ical.RRule(tt.rule)
			if err != nil {
				t.Fatalf("RRule: %v", err)
			}
			for _, part := range tt.want {
				if !strings.Contains(got, part) {
					t.Errorf("RRule = %q, missing %s", got, part)
				}
			}
			if strings.Contains(got, "DTSTART") {
				t.Errorf("RRule = %q should not carry DTSTART", got)
			}
		})
	}

	if _, err := ical.RRule(recurrence.Rule{Frequency: "WEEKLY"}); err == nil {
		t.Error("unknown frequency should fail")
	}
}

// The exported RRULE must fire on exactly the dates the resolver does.
func TestRRuleAgreesWithMaterialize(t *testing.T) {
	rules := []recurrence.Rule{
		{ID: "a", Title: "Leap", BaseDate: civil.MustParse("2020-02-29"), Frequency: recurrence.Yearly},
		{ID: "b", Title: "Month end", BaseDate: civil.MustParse("2024-01-31"), Frequency: recurrence.Monthly},
		{ID: "c", Title: "Fifth", BaseDate: civil.MustParse("2024-01-05"), Frequency: recurrence.Monthly},
	}
	start, end := civil.MustParse("2024-01-01"), civil.MustParse("2029-12-31")

	for _, r := range rules {
		t.Run(r.Title, func(t *testing.T) {
			s, err := ical.RRule(r)
			if err != nil {
				t.Fatalf("RRule: %v", err)
			}
			opt, err := rrule.StrToROption(s)
			if err != nil {
				t.Fatalf("StrToROption(%q): %v", s, err)
			}
			opt.Dtstart = r.BaseDate.Midnight(time.UTC)
			rr, err := rrule.NewRRule(*opt)
			if err != nil {
				t.Fatalf("NewRRule: %v", err)
			}

			var fromRRule []string
			for _, at := range rr.Between(start.Midnight(time.UTC), end.Midnight(time.UTC), true) {
				fromRRule = append(fromRRule, civil.FromTime(at, time.UTC).String())
			}

			occs, err := recurrence.Materialize([]recurrence.Rule{r}, start, end)
			if err != nil {
				t.Fatalf("Materialize: %v", err)
			}
			var fromResolver []string
			for _, o := range occs {
				if o.Date.Before(r.BaseDate) {
					continue
				}
				fromResolver = append(fromResolver, o.Date.String())
			}

			if strings.Join(fromRRule, ",") != strings.Join(fromResolver, ",") {
				t.Errorf("rrule:    %v\nresolver: %v", fromRRule, fromResolver)
			}
		})
	}
}

func TestBuildRule(t *testing.T) {
	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	cal := parse(t, ical.Feed{Rules: []recurrence.Rule{anniversary()}, Now: now})

	var master, instance, pinned *ics.VEvent
	for _, ev := range cal.Events() {
		switch {
		case prop(ev, ics.ComponentPropertyUniqueId) == ical.RuleUID("anniv001") && ev.GetProperty("RECURRENCE-ID") == nil:
			master = ev
		case prop(ev, ics.ComponentPropertyUniqueId) == ical.RuleUID("anniv001"):
			instance = ev
		case prop(ev, ics.ComponentPropertyUniqueId) == ical.PinnedUID("anniv001", civil.MustParse("2026-07-04")):
			pinned = ev
		}
	}
	if len(cal.Events()) != 3 {
		t.Errorf("got %d events, want 3 (master, instance, pinned)", len(cal.Events()))
	}

	if master == nil {
		t.Fatal("missing master event")
	}
	if got := prop(master, ics.ComponentPropertySummary); got != "Anniversary" {
		t.Errorf("master SUMMARY = %q", got)
	}
	if got := prop(master, ics.ComponentPropertyDtStart); got != "20200601" {
		t.Errorf("master DTSTART = %q", got)
	}
	if got := prop(master, ics.ComponentPropertyRrule); !strings.Contains(got, "FREQ=YEARLY") {
		t.Errorf("master RRULE = %q", got)
	}
	exdates := master.GetProperties(ics.ComponentPropertyExdate)
	if len(exdates) != 1 || exdates[0].Value != "20250601" {
		t.Errorf("EXDATE = %+v, want one for 20250601", exdates)
	}

	if instance == nil {
		t.Fatal("missing RECURRENCE-ID instance")
	}
	if got := instance.GetProperty("RECURRENCE-ID").Value; got != "20270601" {
		t.Errorf("RECURRENCE-ID = %q", got)
	}
	if got := prop(instance, ics.ComponentPropertySummary); got != "Anniversary!" {
		t.Errorf("instance SUMMARY = %q", got)
	}
	if got := prop(instance, ics.ComponentPropertyDescription); got != "Book dinner" {
		t.Errorf("instance DESCRIPTION = %q, want the rule's notes", got)
	}

	if pinned == nil {
		t.Fatal("missing pinned event")
	}
	if got := prop(pinned, ics.ComponentPropertyDtStart); got != "20260704" {
		t.Errorf("pinned DTSTART = %q", got)
	}
	if got := prop(pinned, ics.ComponentPropertyDtEnd); got != "20260705" {
		t.Errorf("pinned DTEND = %q", got)
	}
}

func TestBuildWorkAndTodos(t *testing.T) {
	start := time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	due := time.Date(2025, 9, 30, 17, 0, 0, 0, time.UTC)

	f := ical.Feed{
		Work: []entry.WorkEntry{{ID: "work0001", Title: "Planning", Start: start, End: &end, CreatedAt: start, UpdatedAt: start}},
		Todos: []entry.Todo{
			{ID: "todo0001", Title: "Taxes", Priority: "high", Due: &due},
			{ID: "todo0002", Title: "Someday", Done: true},
		},
		Now: start,
	}
	cal := parse(t, f)

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := prop(events[0], ics.ComponentPropertyUniqueId); got != ical.WorkUID("work0001") {
		t.Errorf("UID = %q", got)
	}
	if got := prop(events[0], ics.ComponentPropertyDtStart); got != "20250920T090000Z" {
		t.Errorf("DTSTART = %q", got)
	}

	var todos []*ics.VTodo
	for _, c := range cal.Components {
		if td, ok := c.(*ics.VTodo); ok {
			todos = append(todos, td)
		}
	}
	if len(todos) != 2 {
		t.Fatalf("got %d todos, want 2", len(todos))
	}
	first := todos[0]
	if p := first.GetProperty(ics.ComponentPropertyDue); p == nil || p.Value != "20250930T170000Z" {
		t.Errorf("DUE = %+v", p)
	}
	if p := first.GetProperty(ics.ComponentPropertyPriority); p == nil || p.Value != "1" {
		t.Errorf("PRIORITY = %+v", p)
	}
	if p := todos[1].GetProperty(ics.ComponentPropertyStatus); p == nil || p.Value != "COMPLETED" {
		t.Errorf("STATUS = %+v", p)
	}
	if p := todos[1].GetProperty(ics.ComponentPropertyPriority); p != nil {
		t.Errorf("unset priority exported as %q", p.Value)
	}
}
