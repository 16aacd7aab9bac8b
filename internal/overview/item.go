// Package overview merges timed work entries, due-dated todos and recurring
// occurrences into one feed over a civil-date range.
package overview

import (
	"strings"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

// Kind tags an overview item.
type Kind string

const (
	KindWork             Kind = "work"
	KindTodo             Kind = "todo"
	KindRecurringMonthly Kind = "recurring-monthly"
	KindRecurringYearly  Kind = "recurring-yearly"
)

// Priority is the normalized three-step todo priority.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

// NormalizePriority maps free-form priority text onto low/med/high by a
// case-insensitive prefix: "l..." is low, "h..." is high, anything else
// (including empty) is med.
func NormalizePriority(s string) Priority {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "l"):
		return PriorityLow
	case strings.HasPrefix(s, "h"):
		return PriorityHigh
	default:
		return PriorityMed
	}
}

// Item is one entry in the overview feed. TimeHHMM is set for work items
// and Priority for todo items only.
type Item struct {
	Kind     Kind       `json:"kind"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Date     civil.Date `json:"dateISO"`
	TimeHHMM string     `json:"timeHHMM,omitempty"`
	Priority Priority   `json:"priority,omitempty"`
}

// recurringKind maps a rule frequency onto its item kind.
func recurringKind(f recurrence.Frequency) Kind {
	if f == recurrence.Monthly {
		return KindRecurringMonthly
	}
	return KindRecurringYearly
}

// FromOccurrence re-tags a recurring occurrence as an overview item with
// the per-day identity "<ruleId>@<date>".
func FromOccurrence(occ recurrence.Occurrence) Item {
	return Item{
		Kind:  recurringKind(occ.Frequency),
		ID:    occ.Key(),
		Title: occ.Title,
		Date:  occ.Date,
	}
}
