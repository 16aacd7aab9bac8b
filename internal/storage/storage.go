package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("concurrent write conflict")
	ErrStorage    = errors.New("storage error")
	ErrValidation = errors.New("validation error")
)

// TodoQuery controls filtering for ListTodos.
type TodoQuery struct {
	// DueFrom and DueTo bound the due instant inclusively. Setting either
	// excludes todos without a due instant.
	DueFrom *time.Time
	DueTo   *time.Time
	// IncludeDone returns completed todos as well.
	IncludeDone bool
}

// Storage defines the interface for daybook persistence.
//
// Every read takes an owner. Rules are listed for an owner as that owner's
// rules plus the globally shared ones (Owner == ""); work entries, todos and
// day logs are strictly per owner.
type Storage interface {
	// Rule methods
	CreateRule(ctx context.Context, r recurrence.Rule) error
	GetRule(ctx context.Context, id string) (recurrence.Rule, error)
	ListRules(ctx context.Context, owner string) ([]recurrence.Rule, error)
	UpdateRule(ctx context.Context, id string, p recurrence.Patch) (recurrence.Rule, error)
	DeleteRule(ctx context.Context, id string) error

	// Work entry methods
	CreateWorkEntry(ctx context.Context, w entry.WorkEntry) error
	// ListWorkEntries returns entries starting in [from, to), ordered by start.
	ListWorkEntries(ctx context.Context, owner string, from, to time.Time) ([]entry.WorkEntry, error)
	DeleteWorkEntry(ctx context.Context, id string) error

	// Todo methods
	CreateTodo(ctx context.Context, t entry.Todo) error
	GetTodo(ctx context.Context, id string) (entry.Todo, error)
	ListTodos(ctx context.Context, owner string, q TodoQuery) ([]entry.Todo, error)
	CompleteTodo(ctx context.Context, id string) (entry.Todo, error)

	// Day log methods
	GetDayLog(ctx context.Context, owner string, date civil.Date) (entry.DayLog, error)
	PutDayLog(ctx context.Context, d entry.DayLog) (entry.DayLog, error)
	ListDayLogDates(ctx context.Context, owner string) ([]civil.Date, error)

	Close() error
}

// ValidateRule wraps rule validation failures as ErrValidation.
func ValidateRule(r recurrence.Rule) error {
	if err := entry.ValidateID(r.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// RuleVisible reports whether a rule is listed for owner.
func RuleVisible(r recurrence.Rule, owner string) bool {
	return r.Owner == "" || r.Owner == owner
}

// Matches reports whether a todo satisfies q.
func (q TodoQuery) Matches(t entry.Todo) bool {
	if t.Done && !q.IncludeDone {
		return false
	}
	if q.DueFrom == nil && q.DueTo == nil {
		return true
	}
	if t.Due == nil {
		return false
	}
	if q.DueFrom != nil && t.Due.Before(*q.DueFrom) {
		return false
	}
	if q.DueTo != nil && t.Due.After(*q.DueTo) {
		return false
	}
	return true
}
