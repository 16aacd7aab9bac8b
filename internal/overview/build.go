package overview

import (
	"fmt"
	"sort"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

// Build produces the overview feed for the inclusive civil range [from, to]
// as seen from loc.
//
// Membership is decided on the local-date projection of each stored
// instant, never on the raw instant, so an entry stored near local
// midnight lands on the day the user saw it. The feed is work items by
// start, then todos by due instant, then recurring occurrences by date and
// rule input order. Kinds are concatenated, not merged.
//
// A from after to fails with civil.ErrInvalidRange before anything else.
func Build(from, to civil.Date, loc *time.Location, work []entry.WorkEntry, due []entry.Todo, rules []recurrence.Rule) ([]Item, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", civil.ErrInvalidRange, from, to)
	}
	if loc == nil {
		loc = time.Local
	}

	inRange := func(d civil.Date) bool {
		return !d.Before(from) && !d.After(to)
	}

	items := make([]Item, 0, len(work)+len(due))

	workItems := make([]entry.WorkEntry, 0, len(work))
	for _, w := range work {
		if inRange(civil.FromTime(w.Start, loc)) {
			workItems = append(workItems, w)
		}
	}
	sort.SliceStable(workItems, func(i, j int) bool {
		return workItems[i].Start.Before(workItems[j].Start)
	})
	for _, w := range workItems {
		items = append(items, Item{
			Kind:     KindWork,
			ID:       w.ID,
			Title:    w.Title,
			Date:     civil.FromTime(w.Start, loc),
			TimeHHMM: w.Start.In(loc).Format("15:04"),
		})
	}

	todoItems := make([]entry.Todo, 0, len(due))
	for _, t := range due {
		if t.Due == nil {
			continue
		}
		if inRange(civil.FromTime(*t.Due, loc)) {
			todoItems = append(todoItems, t)
		}
	}
	sort.SliceStable(todoItems, func(i, j int) bool {
		return todoItems[i].Due.Before(*todoItems[j].Due)
	})
	for _, t := range todoItems {
		items = append(items, Item{
			Kind:     KindTodo,
			ID:       t.ID,
			Title:    t.Title,
			Date:     civil.FromTime(*t.Due, loc),
			Priority: NormalizePriority(t.Priority),
		})
	}

	occurrences, err := recurrence.Materialize(rules, from, to)
	if err != nil {
		return nil, err
	}
	for _, occ := range occurrences {
		items = append(items, FromOccurrence(occ))
	}

	return items, nil
}
