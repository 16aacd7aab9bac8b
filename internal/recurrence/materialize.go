package recurrence

import (
	"github.com/chris-regnier/daybook/internal/civil"
)

// Materialize resolves every rule on every date in [start, end].
//
// Results are ordered by date ascending and, within a date, by the input
// order of rules. There is no sort by title or id. The cost is
// O(days x rules).
func Materialize(rules []Rule, start, end civil.Date) ([]Occurrence, error) {
	days, err := civil.DaysInclusive(start, end)
	if err != nil {
		return nil, err
	}

	out := make([]Occurrence, 0)
	for d := range days {
		for _, r := range rules {
			if occ, ok := Resolve(r, d); ok {
				out = append(out, occ)
			}
		}
	}
	return out, nil
}
