package mcptools

import (
	"slices"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

// dateOrToday parses s, defaulting to today when empty.
func dateOrToday(s string, today civil.Date) (civil.Date, error) {
	if s == "" {
		return today, nil
	}
	return civil.Parse(s)
}

func ruleResult(r recurrence.Rule) RuleResult {
	res := RuleResult{
		ID:        r.ID,
		Title:     r.Title,
		Frequency: string(r.Frequency),
		BaseDate:  r.BaseDate.String(),
		Shared:    r.Owner == "",
		Notes:     truncate(r.Notes, 200),
	}
	for _, d := range r.Skips {
		res.Skips = append(res.Skips, d.String())
	}
	for d := range r.Overrides {
		res.Overrides = append(res.Overrides, d.String())
	}
	slices.Sort(res.Overrides)
	return res
}

func itemResults(items []overview.Item) []ItemResult {
	out := make([]ItemResult, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResult{
			Kind:     string(it.Kind),
			ID:       it.ID,
			Title:    it.Title,
			DateISO:  it.Date.String(),
			TimeHHMM: it.TimeHHMM,
			Priority: string(it.Priority),
		})
	}
	return out
}

func dayOutput(detail overview.DayDetail) GetDayOutput {
	out := GetDayOutput{
		Date:        detail.Date.String(),
		Occurrences: make([]OccurrenceResult, 0, len(detail.Occurrences)),
	}
	if detail.DayLog != nil {
		out.DayLog = &DayLogResult{
			Content:   detail.DayLog.Content,
			UpdatedAt: detail.DayLog.UpdatedAt.Format(time.RFC3339),
		}
	}
	for _, o := range detail.Occurrences {
		out.Occurrences = append(out.Occurrences, OccurrenceResult{
			ID:    o.RuleID,
			Title: o.Title,
			Notes: o.Notes,
			On:    o.Date.String(),
		})
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
