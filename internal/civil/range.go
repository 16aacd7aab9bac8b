package civil

import (
	"fmt"
	"iter"
	"strings"
)

// DaysInclusive returns every date from start to end, ascending. The
// sequence is finite and restartable: each range over it begins again at
// start. It fails with ErrInvalidRange when start is after end.
func DaysInclusive(start, end Date) (iter.Seq[Date], error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	return func(yield func(Date) bool) {
		for d := start; !d.After(end); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}, nil
}

// Days returns the inclusive length of [start, end]; zero when start is
// after end.
func Days(start, end Date) int {
	if start.After(end) {
		return 0
	}
	return end.DayNumber() - start.DayNumber() + 1
}

// ParseRange parses inclusive YYYY-MM-DD bounds. A missing or malformed
// bound, or from after to, is reported as ErrInvalidRange.
func ParseRange(from, to string) (Date, Date, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return Date{}, Date{}, fmt.Errorf("%w: both from and to are required", ErrInvalidRange)
	}
	start, err := Parse(from)
	if err != nil {
		return Date{}, Date{}, fmt.Errorf("%w: from: %v", ErrInvalidRange, err)
	}
	end, err := Parse(to)
	if err != nil {
		return Date{}, Date{}, fmt.Errorf("%w: to: %v", ErrInvalidRange, err)
	}
	if start.After(end) {
		return Date{}, Date{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	return start, end, nil
}

// WeekOf returns the Monday-to-Sunday week containing d.
func WeekOf(d Date) (Date, Date) {
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDays(-offset)
	return start, start.AddDays(6)
}
