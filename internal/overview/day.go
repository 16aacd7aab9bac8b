package overview

import (
	"errors"
	"fmt"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
)

// DayLogLookup fetches the day log for a date. It returns
// storage.ErrNotFound when the day has no log.
type DayLogLookup func(date civil.Date) (entry.DayLog, error)

// DayDetail is a single day's log plus its recurring occurrences.
type DayDetail struct {
	Date        civil.Date
	DayLog      *entry.DayLog
	Occurrences []recurrence.Occurrence
}

// AssembleDay is the single-day case of the feed restricted to recurring
// rules, plus a pass-through lookup of the day log. A missing log is not an
// error; it yields a nil DayLog.
func AssembleDay(date civil.Date, lookup DayLogLookup, rules []recurrence.Rule) (DayDetail, error) {
	if !date.IsValid() {
		return DayDetail{}, fmt.Errorf("%w: %04d-%02d-%02d", civil.ErrInvalidDate, date.Year, date.Month, date.Day)
	}

	occurrences, err := recurrence.Materialize(rules, date, date)
	if err != nil {
		return DayDetail{}, err
	}

	detail := DayDetail{Date: date, Occurrences: occurrences}

	log, err := lookup(date)
	switch {
	case err == nil:
		detail.DayLog = &log
	case errors.Is(err, storage.ErrNotFound):
	default:
		return DayDetail{}, fmt.Errorf("looking up day log for %s: %w", date, err)
	}

	return detail, nil
}
