package shell

import (
	"context"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/storage"
)

// Status is what the prompt shows about today.
type Status struct {
	Logged bool
	Streak int
	// Items counts today's overview items (work, due todos, anniversaries).
	Items int
}

// ComputeStatus reports whether today has a day log, the current streak of
// consecutive logged days ending today, and how many overview items fall
// on today.
func ComputeStatus(ctx context.Context, svc *agenda.Service, store storage.Storage, owner string) (Status, error) {
	today := svc.Today()

	dates, err := store.ListDayLogDates(ctx, owner)
	if err != nil {
		return Status{}, err
	}
	logged, streak := streakFrom(dates, today)

	items, err := svc.OverviewRange(ctx, owner, today, today)
	if err != nil {
		return Status{}, err
	}

	return Status{Logged: logged, Streak: streak, Items: len(items)}, nil
}

// streakFrom counts consecutive dates ending at today. dates must be
// newest first.
func streakFrom(dates []civil.Date, today civil.Date) (bool, int) {
	set := make(map[civil.Date]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}

	streak := 0
	for check := today; set[check]; check = check.AddDays(-1) {
		streak++
	}
	return set[today], streak
}
