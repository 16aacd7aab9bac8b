package recurrence

import (
	"github.com/chris-regnier/daybook/internal/civil"
)

// Occurrence is a computed firing of a rule on one civil date. Occurrences
// are never persisted; (RuleID, Date) identifies one.
type Occurrence struct {
	RuleID    string
	Date      civil.Date
	Title     string
	Notes     string
	Frequency Frequency
}

// Key returns the per-day identity "<ruleId>@<YYYY-MM-DD>".
func (o Occurrence) Key() string {
	return o.RuleID + "@" + o.Date.String()
}

// Resolve decides whether rule fires on date and with what content.
//
// Order matters: a skip suppresses the date outright, even when an override
// exists for it. An override fires the date even off the base pattern,
// pinning a one-off occurrence. Otherwise the base pattern decides.
//
// A Yearly rule anchored on February 29 only fires in leap years.
func Resolve(rule Rule, date civil.Date) (Occurrence, bool) {
	if rule.IsSkipped(date) {
		return Occurrence{}, false
	}

	occ := Occurrence{
		RuleID:    rule.ID,
		Date:      date,
		Title:     rule.Title,
		Notes:     rule.Notes,
		Frequency: rule.Frequency,
	}

	if o, ok := rule.Overrides[date]; ok {
		if o.Title != nil {
			occ.Title = *o.Title
		}
		if o.Notes != nil {
			occ.Notes = *o.Notes
		}
		return occ, true
	}

	if OnPattern(rule, date) {
		return occ, true
	}
	return Occurrence{}, false
}

// OnPattern reports whether date matches the rule's base pattern, ignoring
// skips and overrides.
func OnPattern(rule Rule, date civil.Date) bool {
	switch rule.Frequency {
	case Yearly:
		return civil.SameMonthDay(date, rule.BaseDate)
	case Monthly:
		return civil.SameDayOfMonth(date, rule.BaseDate)
	}
	return false
}
