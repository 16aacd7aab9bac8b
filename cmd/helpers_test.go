package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/config"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/chris-regnier/daybook/internal/storage/markdown"
)

func setupTestStore(t *testing.T, dir string) storage.Storage {
	t.Helper()
	s, err := markdown.New(dir)
	if err != nil {
		t.Fatalf("creating test storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// setupTestEnv points the package globals at a fresh markdown store in UTC
// and returns its data directory.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	store = setupTestStore(t, dir)
	svc = agenda.New(store, time.UTC)
	appConfig = &config.Config{Storage: "markdown", DataDir: dir}
	jsonOutput = false
	return dir
}

func createTestRule(t *testing.T, id, title, base string, freq recurrence.Frequency) recurrence.Rule {
	t.Helper()
	now := time.Now().UTC()
	r := recurrence.Rule{
		ID:        id,
		Owner:     appConfig.Owner,
		Title:     title,
		BaseDate:  civil.MustParse(base),
		Frequency: freq,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateRule(context.Background(), r); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	return r
}
