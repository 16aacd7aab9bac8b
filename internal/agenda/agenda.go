// Package agenda answers per-request calendar questions for one owner:
// parse the caller's input, fetch what the store holds for the range, then
// hand everything to the pure overview and recurrence code.
package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/ical"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
)

// Service computes overviews and day details against a store, projecting
// stored instants into loc.
type Service struct {
	store storage.Storage
	loc   *time.Location
}

// New creates a Service. A nil loc means time.Local.
func New(store storage.Storage, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, loc: loc}
}

// Location returns the zone civil dates are projected into.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today returns the current civil date in the service's zone.
func (s *Service) Today() civil.Date {
	return civil.Today(s.loc)
}

// Overview parses from and to as YYYY-MM-DD and builds the feed for that
// inclusive range. Malformed or inverted bounds fail with
// civil.ErrInvalidRange before the store is read.
func (s *Service) Overview(ctx context.Context, owner, from, to string) ([]overview.Item, error) {
	start, end, err := civil.ParseRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.OverviewRange(ctx, owner, start, end)
}

// OverviewRange builds the feed for [from, to]. Completed todos stay in
// the feed; only a missing due date keeps a todo out.
func (s *Service) OverviewRange(ctx context.Context, owner string, from, to civil.Date) ([]overview.Item, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("%w: invalid bound %v..%v", civil.ErrInvalidRange, from, to)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s is after %s", civil.ErrInvalidRange, from, to)
	}

	lo := from.Midnight(s.loc)
	hi := to.AddDays(1).Midnight(s.loc)

	work, err := s.store.ListWorkEntries(ctx, owner, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("listing work entries: %w", err)
	}

	dueTo := hi.Add(-time.Nanosecond)
	due, err := s.store.ListTodos(ctx, owner, storage.TodoQuery{DueFrom: &lo, DueTo: &dueTo, IncludeDone: true})
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	rules, err := s.store.ListRules(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}

	return overview.Build(from, to, s.loc, work, due, rules)
}

// Day parses date as YYYY-MM-DD and assembles that day's log and
// occurrences. A malformed date fails with civil.ErrInvalidDate before the
// store is read.
func (s *Service) Day(ctx context.Context, owner, date string) (overview.DayDetail, error) {
	d, err := civil.Parse(date)
	if err != nil {
		return overview.DayDetail{}, err
	}
	return s.DayOf(ctx, owner, d)
}

// DayOf assembles the detail for d. An invalid d fails with
// civil.ErrInvalidDate before the store is read.
func (s *Service) DayOf(ctx context.Context, owner string, d civil.Date) (overview.DayDetail, error) {
	if !d.IsValid() {
		return overview.DayDetail{}, fmt.Errorf("%w: %04d-%02d-%02d", civil.ErrInvalidDate, d.Year, d.Month, d.Day)
	}
	rules, err := s.store.ListRules(ctx, owner)
	if err != nil {
		return overview.DayDetail{}, fmt.Errorf("listing rules: %w", err)
	}
	lookup := func(date civil.Date) (entry.DayLog, error) {
		return s.store.GetDayLog(ctx, owner, date)
	}
	return overview.AssembleDay(d, lookup, rules)
}

// Rules lists the rules visible to owner, in the order the store returns
// them.
func (s *Service) Rules(ctx context.Context, owner string) ([]recurrence.Rule, error) {
	return s.store.ListRules(ctx, owner)
}

// Feed gathers everything the calendar export holds for owner: all visible
// rules, plus work entries and due todos whose local date falls in
// [from, to].
func (s *Service) Feed(ctx context.Context, owner string, from, to civil.Date) (ical.Feed, error) {
	if from.After(to) {
		return ical.Feed{}, fmt.Errorf("%w: %s is after %s", civil.ErrInvalidRange, from, to)
	}
	lo := from.Midnight(s.loc)
	hi := to.AddDays(1).Midnight(s.loc)

	rules, err := s.store.ListRules(ctx, owner)
	if err != nil {
		return ical.Feed{}, fmt.Errorf("listing rules: %w", err)
	}
	work, err := s.store.ListWorkEntries(ctx, owner, lo, hi)
	if err != nil {
		return ical.Feed{}, fmt.Errorf("listing work entries: %w", err)
	}
	dueTo := hi.Add(-time.Nanosecond)
	todos, err := s.store.ListTodos(ctx, owner, storage.TodoQuery{DueFrom: &lo, DueTo: &dueTo, IncludeDone: true})
	if err != nil {
		return ical.Feed{}, fmt.Errorf("listing todos: %w", err)
	}
	return ical.Feed{Rules: rules, Work: work, Todos: todos}, nil
}
