// Package recurrence resolves yearly and monthly anniversary rules into
// occurrences on civil dates, honoring per-date skips and overrides.
package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
)

// Frequency is the closed set of supported recurrence patterns.
type Frequency string

const (
	Yearly  Frequency = "YEARLY"
	Monthly Frequency = "MONTHLY"
)

// ParseFrequency accepts the canonical names case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(s))) {
	case Yearly:
		return Yearly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown frequency %q (want YEARLY or MONTHLY)", s)
}

// Override replaces a rule's content for a single occurrence. Nil fields
// fall back to the rule's own values.
type Override struct {
	Title *string `json:"title,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// Rule is a user-defined recurring anniversary.
type Rule struct {
	ID string `json:"id"`
	// Owner is the owning user; empty means the rule is shared globally.
	Owner string `json:"owner,omitempty"`

	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`

	// BaseDate anchors the pattern: month and day for Yearly, day of month
	// for Monthly. Its year is otherwise irrelevant.
	BaseDate  civil.Date `json:"base_date"`
	Frequency Frequency  `json:"frequency"`

	Skips     []civil.Date            `json:"skips,omitempty"`
	Overrides map[civil.Date]Override `json:"overrides,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrEmptyTitle       = errors.New("rule title must not be empty")
	ErrInvalidFrequency = errors.New("rule frequency must be YEARLY or MONTHLY")
	ErrInvalidBaseDate  = errors.New("rule base date must be a valid calendar date")
)

// Validate checks the structural shape of a rule. Stores call it once on
// every write so the resolver never has to second-guess its input.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if r.Frequency != Yearly && r.Frequency != Monthly {
		return ErrInvalidFrequency
	}
	if !r.BaseDate.IsValid() {
		return ErrInvalidBaseDate
	}
	for _, d := range r.Skips {
		if !d.IsValid() {
			return fmt.Errorf("%w: skip %v", civil.ErrInvalidDate, d)
		}
	}
	for d := range r.Overrides {
		if !d.IsValid() {
			return fmt.Errorf("%w: override %v", civil.ErrInvalidDate, d)
		}
	}
	return nil
}

// IsSkipped reports whether d is one of the rule's skip dates.
func (r Rule) IsSkipped(d civil.Date) bool {
	return slices.Contains(r.Skips, d)
}

// NormalizeSkips sorts and de-duplicates skip dates in place.
func (r *Rule) NormalizeSkips() {
	slices.SortFunc(r.Skips, civil.Date.Compare)
	r.Skips = slices.Compact(r.Skips)
}

// AddSkip records d as skipped. It reports false if d was already skipped.
func (r *Rule) AddSkip(d civil.Date) bool {
	if r.IsSkipped(d) {
		return false
	}
	r.Skips = append(r.Skips, d)
	r.NormalizeSkips()
	return true
}

// RemoveSkip clears a skip. It reports false if d was not skipped.
func (r *Rule) RemoveSkip(d civil.Date) bool {
	i := slices.Index(r.Skips, d)
	if i < 0 {
		return false
	}
	r.Skips = slices.Delete(r.Skips, i, i+1)
	return true
}

// SetOverride stores replacement content for d.
func (r *Rule) SetOverride(d civil.Date, o Override) {
	if r.Overrides == nil {
		r.Overrides = make(map[civil.Date]Override)
	}
	r.Overrides[d] = o
}

// ClearOverride removes the override for d, reporting whether one existed.
func (r *Rule) ClearOverride(d civil.Date) bool {
	if _, ok := r.Overrides[d]; !ok {
		return false
	}
	delete(r.Overrides, d)
	return true
}

// Patch is a partial update of a rule. Nil fields are left untouched.
type Patch struct {
	Title     *string
	Notes     *string
	BaseDate  *civil.Date
	Frequency *Frequency
	Skips     *[]civil.Date
	Overrides *map[civil.Date]Override
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Notes == nil && p.BaseDate == nil &&
		p.Frequency == nil && p.Skips == nil && p.Overrides == nil
}

// Apply returns a copy of r with the patch applied. The caller validates
// the result.
func (p Patch) Apply(r Rule) Rule {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.BaseDate != nil {
		r.BaseDate = *p.BaseDate
	}
	if p.Frequency != nil {
		r.Frequency = *p.Frequency
	}
	if p.Skips != nil {
		r.Skips = slices.Clone(*p.Skips)
		r.NormalizeSkips()
	}
	if p.Overrides != nil {
		r.Overrides = make(map[civil.Date]Override, len(*p.Overrides))
		for d, o := range *p.Overrides {
			r.Overrides[d] = o
		}
	}
	return r
}
