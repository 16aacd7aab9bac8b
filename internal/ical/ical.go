// Package ical renders rules, work entries and todos as an iCalendar feed
// so other calendar clients can subscribe to them.
package ical

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

const (
	ProdID    = "-//daybook//daybook//EN"
	uidDomain = "daybook"

	dateLayout    = "20060102"
	utcTimeLayout = "20060102T150405Z"
)

// Feed is everything one calendar export contains.
type Feed struct {
	Rules []recurrence.Rule
	Work  []entry.WorkEntry
	Todos []entry.Todo
	// Now stamps DTSTAMP on every component. Zero means time.Now().
	Now time.Time
}

// RuleUID is the UID of a rule's recurring VEVENT.
func RuleUID(ruleID string) string {
	return ruleID + "@" + uidDomain
}

// PinnedUID is the UID of the standalone VEVENT for an override that falls
// off the rule's pattern.
func PinnedUID(ruleID string, d civil.Date) string {
	return ruleID + "-" + d.Format(dateLayout) + "@" + uidDomain
}

// WorkUID is the UID of a work entry's VEVENT.
func WorkUID(id string) string {
	return "work-" + id + "@" + uidDomain
}

// TodoUID is the UID of a todo's VTODO.
func TodoUID(id string) string {
	return "todo-" + id + "@" + uidDomain
}

// RRule returns the RRULE value for a rule's base pattern.
func RRule(r recurrence.Rule) (string, error) {
	opt := rrule.ROption{Bymonthday: []int{r.BaseDate.Day}}
	switch r.Frequency {
	case recurrence.Yearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(r.BaseDate.Month)}
	case recurrence.Monthly:
		opt.Freq = rrule.MONTHLY
	default:
		return "", fmt.Errorf("%w: %q", recurrence.ErrInvalidFrequency, r.Frequency)
	}
	return opt.RRuleString(), nil
}

// Build assembles the calendar for a feed.
//
// Each rule becomes an all-day VEVENT anchored on its base date with an
// RRULE and one EXDATE per skip. An override on a pattern date becomes a
// RECURRENCE-ID instance of that event; an override on any other date
// becomes a standalone one-day VEVENT. Overrides on skipped dates are
// dropped, as the skip wins.
func Build(f Feed) (*ics.Calendar, error) {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProdID)

	for _, r := range f.Rules {
		if err := addRule(cal, r, now); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
	}
	for _, w := range f.Work {
		addWork(cal, w, now)
	}
	for _, t := range f.Todos {
		addTodo(cal, t, now)
	}
	return cal, nil
}

// Write serializes the feed's calendar to w.
func Write(w io.Writer, f Feed) error {
	cal, err := Build(f)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}

func dateValue(d civil.Date) string {
	return d.Format(dateLayout)
}

func allDay(ev *ics.VEvent, d civil.Date) {
	ev.AddProperty(ics.ComponentPropertyDtStart, dateValue(d), ics.WithValue(string(ics.ValueDataTypeDate)))
	ev.AddProperty(ics.ComponentPropertyDtEnd, dateValue(d.AddDays(1)), ics.WithValue(string(ics.ValueDataTypeDate)))
}

func addRule(cal *ics.Calendar, r recurrence.Rule, now time.Time) error {
	rr, err := RRule(r)
	if err != nil {
		return err
	}

	uid := RuleUID(r.ID)
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(now)
	ev.SetSummary(r.Title)
	if r.Notes != "" {
		ev.SetDescription(r.Notes)
	}
	allDay(ev, r.BaseDate)
	ev.AddProperty(ics.ComponentPropertyRrule, rr)
	for _, d := range r.Skips {
		ev.AddProperty(ics.ComponentPropertyExdate, dateValue(d), ics.WithValue(string(ics.ValueDataTypeDate)))
	}

	dates := make([]civil.Date, 0, len(r.Overrides))
	for d := range r.Overrides {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, civil.Date.Compare)

	for _, d := range dates {
		occ, ok := recurrence.Resolve(r, d)
		if !ok {
			continue
		}
		var inst *ics.VEvent
		if recurrence.OnPattern(r, d) && !d.Before(r.BaseDate) {
			inst = cal.AddEvent(uid)
			inst.AddProperty(ics.ComponentProperty("RECURRENCE-ID"), dateValue(d), ics.WithValue(string(ics.ValueDataTypeDate)))
		} else {
			inst = cal.AddEvent(PinnedUID(r.ID, d))
		}
		inst.SetDtStampTime(now)
		inst.SetSummary(occ.Title)
		if occ.Notes != "" {
			inst.SetDescription(occ.Notes)
		}
		allDay(inst, d)
	}
	return nil
}

func addWork(cal *ics.Calendar, w entry.WorkEntry, now time.Time) {
	ev := cal.AddEvent(WorkUID(w.ID))
	ev.SetDtStampTime(now)
	ev.SetSummary(w.Title)
	if w.Notes != "" {
		ev.SetDescription(w.Notes)
	}
	ev.SetStartAt(w.Start)
	if w.End != nil {
		ev.SetEndAt(*w.End)
	}
	ev.SetCreatedTime(w.CreatedAt)
	ev.SetModifiedAt(w.UpdatedAt)
}

func addTodo(cal *ics.Calendar, t entry.Todo, now time.Time) {
	todo := cal.AddTodo(TodoUID(t.ID))
	todo.SetProperty(ics.ComponentPropertyDtstamp, now.UTC().Format(utcTimeLayout))
	todo.SetProperty(ics.ComponentPropertySummary, t.Title)
	if t.Due != nil {
		todo.SetProperty(ics.ComponentPropertyDue, t.Due.UTC().Format(utcTimeLayout))
	}
	if p := icalPriority(t.Priority); p != "" {
		todo.SetProperty(ics.ComponentPropertyPriority, p)
	}
	status := "NEEDS-ACTION"
	if t.Done {
		status = "COMPLETED"
	}
	todo.SetProperty(ics.ComponentPropertyStatus, status)
}

// icalPriority maps todo priority onto RFC 5545 PRIORITY (1 high, 5
// medium, 9 low). An unset priority stays unset.
func icalPriority(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	switch overview.NormalizePriority(p) {
	case overview.PriorityHigh:
		return "1"
	case overview.PriorityLow:
		return "9"
	}
	return "5"
}
