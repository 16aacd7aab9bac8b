package agenda

import (
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

// OccurrenceJSON is the wire form of a recurring occurrence. ID is the rule
// ID; the date is carried separately in On.
type OccurrenceJSON struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Notes string     `json:"notes,omitempty"`
	On    civil.Date `json:"on"`
}

// DayLogJSON is the wire form of a day log.
type DayLogJSON struct {
	Date      civil.Date `json:"date"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// DayResponse is the body of GET /daylog and the get_day tool.
type DayResponse struct {
	DayLog      *DayLogJSON      `json:"dayLog"`
	Occurrences []OccurrenceJSON `json:"occurrences"`
}

// OverviewResponse is the body of GET /overview and the get_overview tool.
type OverviewResponse struct {
	Items []overview.Item `json:"items"`
}

// NewOccurrenceJSON converts an occurrence to its wire form.
func NewOccurrenceJSON(o recurrence.Occurrence) OccurrenceJSON {
	return OccurrenceJSON{ID: o.RuleID, Title: o.Title, Notes: o.Notes, On: o.Date}
}

// NewDayLogJSON converts a day log to its wire form. A nil log stays nil.
func NewDayLogJSON(d *entry.DayLog) *DayLogJSON {
	if d == nil {
		return nil
	}
	return &DayLogJSON{Date: d.Date, Content: d.Content, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// NewDayResponse converts a day detail to its wire form.
func NewDayResponse(detail overview.DayDetail) DayResponse {
	resp := DayResponse{
		DayLog:      NewDayLogJSON(detail.DayLog),
		Occurrences: make([]OccurrenceJSON, 0, len(detail.Occurrences)),
	}
	for _, o := range detail.Occurrences {
		resp.Occurrences = append(resp.Occurrences, NewOccurrenceJSON(o))
	}
	return resp
}

// NewOverviewResponse wraps items, never encoding a null list.
func NewOverviewResponse(items []overview.Item) OverviewResponse {
	if items == nil {
		items = []overview.Item{}
	}
	return OverviewResponse{Items: items}
}
