package entry

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/chris-regnier/daybook/internal/civil"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 8
)

var idPattern = regexp.MustCompile(`^[a-z0-9]{8}$`)

// WorkEntry is a timed work-diary item.
type WorkEntry struct {
	ID        string     `json:"id"`
	Owner     string     `json:"owner,omitempty"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Todo is a task, optionally due at an instant.
type Todo struct {
	ID    string `json:"id"`
	Owner string `json:"owner,omitempty"`
	Title string `json:"title"`
	// Priority is free text as entered; overview normalizes it.
	Priority  string     `json:"priority,omitempty"`
	Due       *time.Time `json:"due,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DayLog is the free-form log for one civil date.
type DayLog struct {
	Owner     string     `json:"owner,omitempty"`
	Date      civil.Date `json:"date"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewID generates a new nanoid for a rule, work entry or todo.
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// ValidateID checks whether an ID matches the expected pattern.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid ID: %q (must be 8 lowercase alphanumeric characters)", id)
	}
	return nil
}

// ValidateTitle checks whether a title is non-empty.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	return nil
}

// ValidateContent checks whether day log content is non-empty.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("day log content must not be empty")
	}
	return nil
}

// Validate checks a work entry before it is stored.
func (w WorkEntry) Validate() error {
	if err := ValidateID(w.ID); err != nil {
		return err
	}
	if err := ValidateTitle(w.Title); err != nil {
		return err
	}
	if w.Start.IsZero() {
		return fmt.Errorf("work entry start must be set")
	}
	if w.End != nil && w.End.Before(w.Start) {
		return fmt.Errorf("work entry end %s is before start %s",
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Validate checks a todo before it is stored.
func (t Todo) Validate() error {
	if err := ValidateID(t.ID); err != nil {
		return err
	}
	return ValidateTitle(t.Title)
}

// Preview returns a truncated single-line preview of the day log content.
func (d *DayLog) Preview(maxLen int) string {
	return preview(d.Content, maxLen)
}

func preview(s string, maxLen int) string {
	content := strings.ReplaceAll(s, "\n", " ")
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen-3] + "..."
}
