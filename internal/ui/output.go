package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

const stampLayout = "2006-01-02 15:04"

// FormatJSON writes any value as JSON to the writer.
func FormatJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatRuleCreated formats a creation confirmation message.
func FormatRuleCreated(w io.Writer, r recurrence.Rule) {
	fmt.Fprintf(w, "Created rule %s (%s from %s)\n", r.ID, strings.ToLower(string(r.Frequency)), r.BaseDate)
}

// FormatRuleUpdated formats an update confirmation message.
func FormatRuleUpdated(w io.Writer, r recurrence.Rule) {
	fmt.Fprintf(w, "Updated rule %s (%s)\n", r.ID, r.UpdatedAt.Local().Format(stampLayout))
}

// FormatDeleted formats a deletion confirmation message.
func FormatDeleted(w io.Writer, kind, id string) {
	fmt.Fprintf(w, "Deleted %s %s.\n", kind, id)
}

// FormatRuleList formats rules as a table.
func FormatRuleList(w io.Writer, rules []recurrence.Rule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "No rules found.")
		return
	}
	for _, r := range rules {
		scope := r.Owner
		if scope == "" {
			scope = "shared"
		}
		fmt.Fprintf(w, "%s  %-7s  %s  %-8s  %s\n",
			r.ID,
			strings.ToLower(string(r.Frequency)),
			r.BaseDate,
			scope,
			r.Title,
		)
	}
}

// FormatRuleFull formats a rule with its skips and overrides.
func FormatRuleFull(w io.Writer, r recurrence.Rule) {
	fmt.Fprintf(w, "Rule: %s\n", r.ID)
	fmt.Fprintf(w, "Title: %s\n", r.Title)
	fmt.Fprintf(w, "Frequency: %s\n", strings.ToLower(string(r.Frequency)))
	fmt.Fprintf(w, "Base date: %s\n", r.BaseDate)
	if r.Owner != "" {
		fmt.Fprintf(w, "Owner: %s\n", r.Owner)
	}
	fmt.Fprintf(w, "Created: %s\n", r.CreatedAt.Local().Format(stampLayout))
	fmt.Fprintf(w, "Modified: %s\n", r.UpdatedAt.Local().Format(stampLayout))
	if len(r.Skips) > 0 {
		dates := make([]string, len(r.Skips))
		for i, d := range r.Skips {
			dates[i] = d.String()
		}
		fmt.Fprintf(w, "Skips: %s\n", strings.Join(dates, ", "))
	}
	if len(r.Overrides) > 0 {
		fmt.Fprintln(w, "Overrides:")
		dates := make([]civil.Date, 0, len(r.Overrides))
		for d := range r.Overrides {
			dates = append(dates, d)
		}
		slices.SortFunc(dates, civil.Date.Compare)
		for _, d := range dates {
			o := r.Overrides[d]
			title := "(rule title)"
			if o.Title != nil {
				title = *o.Title
			}
			fmt.Fprintf(w, "  %s  %s\n", d, title)
		}
	}
	if r.Notes != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Notes)
	}
}

// FormatWorkList formats work entries with their local start time.
func FormatWorkList(w io.Writer, entries []entry.WorkEntry, loc *time.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No work entries found.")
		return
	}
	for _, e := range entries {
		span := e.Start.In(loc).Format(stampLayout)
		if e.End != nil {
			span += "-" + e.End.In(loc).Format("15:04")
		}
		fmt.Fprintf(w, "%s  %s  %s\n", e.ID, span, e.Title)
	}
}

// FormatTodoList formats todos with due date, priority and state.
func FormatTodoList(w io.Writer, todos []entry.Todo, loc *time.Location) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "No todos found.")
		return
	}
	for _, t := range todos {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
		}
		due := "          "
		if t.Due != nil {
			due = t.Due.In(loc).Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s %s  %s  %-4s  %s\n", mark, t.ID, due, overview.NormalizePriority(t.Priority), t.Title)
	}
}

// FormatOverview formats overview items grouped under a header per date.
// Items keep their feed order within a date.
func FormatOverview(w io.Writer, items []overview.Item, theme Theme) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing scheduled.")
		return
	}

	byDate := map[civil.Date][]overview.Item{}
	var dates []civil.Date
	for _, it := range items {
		if _, ok := byDate[it.Date]; !ok {
			dates = append(dates, it.Date)
		}
		byDate[it.Date] = append(byDate[it.Date], it)
	}
	slices.SortFunc(dates, civil.Date.Compare)

	header := theme.HeaderStyle()
	for i, d := range dates {
		fmt.Fprintln(w, header.Render(fmt.Sprintf("── %s %s ──", d.Weekday().String()[:3], d)))
		for _, it := range byDate[d] {
			fmt.Fprintf(w, "  %s %s\n", theme.BadgeStyle(it.Kind).Render(badgeLabel(it)), itemLine(it, theme))
		}
		if i < len(dates)-1 {
			fmt.Fprintln(w)
		}
	}
}

func badgeLabel(it overview.Item) string {
	switch it.Kind {
	case overview.KindRecurringYearly:
		return "yearly"
	case overview.KindRecurringMonthly:
		return "monthly"
	default:
		return string(it.Kind)
	}
}

func itemLine(it overview.Item, theme Theme) string {
	switch {
	case it.TimeHHMM != "":
		return it.TimeHHMM + "  " + it.Title
	case it.Priority != "":
		return "(" + theme.PriorityStyle(it.Priority).Render(string(it.Priority)) + ") " + it.Title
	default:
		return it.Title
	}
}

// FormatDayDetail formats a day's log and occurrences. The log body is
// rendered as markdown with the theme's glamour style.
func FormatDayDetail(w io.Writer, d overview.DayDetail, theme Theme, width int) {
	fmt.Fprintln(w, theme.HeaderStyle().Render(fmt.Sprintf("%s %s", d.Date.Weekday(), d.Date)))

	if len(d.Occurrences) > 0 {
		fmt.Fprintln(w)
		for _, o := range d.Occurrences {
			fmt.Fprintf(w, "  %s %s\n", theme.BadgeStyle(overview.FromOccurrence(o).Kind).Render("★"), o.Title)
			if o.Notes != "" {
				fmt.Fprintf(w, "    %s\n", o.Notes)
			}
		}
	}

	fmt.Fprintln(w)
	if d.DayLog == nil {
		fmt.Fprintln(w, "No day log.")
		return
	}
	fmt.Fprintln(w, RenderMarkdownWithStyle(d.DayLog.Content, width, theme.MarkdownStyle))
}

// DayLogResult is the JSON representation of a saved day log.
type DayLogResult struct {
	Date    string `json:"date"`
	Preview string `json:"preview"`
	Changed bool   `json:"changed"`
}

// DeleteResult is a JSON representation for delete output.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
