package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/storage"
)

func TestParseLocalTime(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-03-09 09:30", time.Date(2026, 3, 9, 9, 30, 0, 0, berlin), false},
		{" 2026-03-09 ", time.Date(2026, 3, 9, 0, 0, 0, 0, berlin), false},
		{"2026-03-09T09:30", time.Time{}, true},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLocalTime(tt.in, berlin)
			if tt.wantErr {
				if !errors.Is(err, civil.ErrInvalidDate) {
					t.Errorf("expected ErrInvalidDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkAddAndList(t *testing.T) {
	setupTestEnv(t)
	now := time.Date(2026, 3, 9, 14, 7, 42, 0, time.UTC)

	var buf bytes.Buffer
	if err := workAddRun(&buf, workAddOptions{title: "Pairing"}, now); err != nil {
		t.Fatalf("workAddRun: %v", err)
	}
	if !strings.Contains(buf.String(), "2026-03-09 14:07") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	err := workAddRun(&buf, workAddOptions{title: "Planning", at: "2026-03-10 09:00", end: "2026-03-10 10:00"}, now)
	if err != nil {
		t.Fatalf("workAddRun: %v", err)
	}

	jsonOutput = true
	buf.Reset()
	if err := workListRun(&buf, "2026-03-09", "2026-03-10"); err != nil {
		t.Fatalf("workListRun: %v", err)
	}
	var entries []entry.WorkEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	buf.Reset()
	if err := workListRun(&buf, "2026-03-10", ""); err != nil {
		t.Fatalf("workListRun: %v", err)
	}
	entries = nil
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Planning" || entries[0].End == nil {
		t.Errorf("entries = %+v", entries)
	}
}

func TestWorkAddRunBadTime(t *testing.T) {
	setupTestEnv(t)
	var buf bytes.Buffer
	if err := workAddRun(&buf, workAddOptions{title: "x", at: "9am"}, time.Now()); err == nil {
		t.Error("expected error for bad --at")
	}
	if err := workAddRun(&buf, workAddOptions{title: "   "}, time.Now()); err == nil {
		t.Error("expected error for empty title")
	}
}

func TestTodoAddDoneList(t *testing.T) {
	setupTestEnv(t)
	appConfig.Owner = "alice"
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	jsonOutput = true
	var buf bytes.Buffer
	if err := todoAddRun(&buf, todoAddOptions{title: "File taxes", due: "2026-04-15", priority: "HIGH!"}, now); err != nil {
		t.Fatalf("todoAddRun: %v", err)
	}
	var added entry.Todo
	if err := json.Unmarshal(buf.Bytes(), &added); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if added.Priority != "high" || added.Due == nil || !added.Due.Equal(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("todo = %+v", added)
	}

	jsonOutput = false
	buf.Reset()
	if err := todoAddRun(&buf, todoAddOptions{title: "Someday"}, now); err != nil {
		t.Fatalf("todoAddRun: %v", err)
	}

	buf.Reset()
	if err := todoDoneRun(&buf, added.ID); err != nil {
		t.Fatalf("todoDoneRun: %v", err)
	}
	if !strings.Contains(buf.String(), "Completed todo") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	if err := todoListRun(&buf, false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "File taxes") || !strings.Contains(buf.String(), "Someday") {
		t.Errorf("open list:\n%s", buf.String())
	}

	buf.Reset()
	if err := todoListRun(&buf, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[x] "+added.ID) {
		t.Errorf("full list:\n%s", buf.String())
	}
}

func TestTodoDoneOtherOwner(t *testing.T) {
	setupTestEnv(t)
	appConfig.Owner = "bob"
	var buf bytes.Buffer
	if err := todoAddRun(&buf, todoAddOptions{title: "Bob's"}, time.Now()); err != nil {
		t.Fatal(err)
	}
	todos, err := store.ListTodos(context.Background(), "bob", storage.TodoQuery{})
	if err != nil || len(todos) != 1 {
		t.Fatalf("ListTodos: %v %+v", err, todos)
	}

	appConfig.Owner = "alice"
	if err := todoDoneRun(&buf, todos[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
