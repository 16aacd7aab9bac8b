package cmd

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/shell"
)

func TestExportRun(t *testing.T) {
	setupTestEnv(t)
	r := createTestRule(t, "bday0001", "Mum's birthday", "1961-03-11", recurrence.Yearly)
	r.AddSkip(civil.MustParse("2026-03-11"))
	skips := r.Skips
	if _, err := store.UpdateRule(context.Background(), r.ID, recurrence.Patch{Skips: &skips}); err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	for _, w := range []entry.WorkEntry{
		{ID: "inrange1", Title: "Standup", Start: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)},
		{ID: "outrange", Title: "Old work", Start: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)},
	} {
		w.CreatedAt, w.UpdatedAt = now, now
		if err := store.CreateWorkEntry(context.Background(), w); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := exportRun(&buf, "2026-03-01", "2026-03-31"); err != nil {
		t.Fatalf("exportRun: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"SUMMARY:Mum's birthday",
		"RRULE:FREQ=YEARLY",
		"EXDATE",
		"SUMMARY:Standup",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q", want)
		}
	}
	if strings.Contains(out, "Old work") {
		t.Error("work entry outside the window was exported")
	}
}

func TestExportRunInvalidRange(t *testing.T) {
	setupTestEnv(t)
	var buf bytes.Buffer
	if err := exportRun(&buf, "2026-03-31", "2026-03-01"); !errors.Is(err, civil.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestExportWindowDefaults(t *testing.T) {
	setupTestEnv(t)
	if exportPastDays() != 90 || exportFutureDays() != 365 {
		t.Errorf("defaults = %d/%d", exportPastDays(), exportFutureDays())
	}
	appConfig.Web.ExportPastDays = 7
	appConfig.Web.ExportFutureDays = 30
	if exportPastDays() != 7 || exportFutureDays() != 30 {
		t.Errorf("configured = %d/%d", exportPastDays(), exportFutureDays())
	}
}

func TestInitShellRun(t *testing.T) {
	for _, sh := range []string{"bash", "zsh", "fish"} {
		t.Run(sh, func(t *testing.T) {
			var buf bytes.Buffer
			if err := initShellRun(&buf, sh); err != nil {
				t.Fatalf("initShellRun: %v", err)
			}
			if !strings.Contains(buf.String(), "daybook status") {
				t.Errorf("script does not call status:\n%s", buf.String())
			}
		})
	}

	var buf bytes.Buffer
	if err := initShellRun(&buf, "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestSeedRun(t *testing.T) {
	setupTestEnv(t)
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := seedRun(&buf, "dev-standup", now, rng); err != nil {
		t.Fatalf("seedRun: %v", err)
	}
	if !strings.Contains(buf.String(), `Seeded with profile "dev-standup"`) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	rules, err := store.ListRules(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != len(profiles["dev-standup"].rules) {
		t.Errorf("expected %d rules, got %d", len(profiles["dev-standup"].rules), len(rules))
	}

	work, err := store.ListWorkEntries(context.Background(), "", now.AddDate(0, 0, -40), now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if len(work) == 0 {
		t.Fatal("expected seeded work entries")
	}
	for _, w := range work {
		if isWeekend(civil.FromTime(w.Start, time.UTC)) {
			t.Errorf("work entry %s on a weekend", w.ID)
		}
	}

	if err := seedRun(&buf, "nope", now, rng); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestListProfilesRun(t *testing.T) {
	var buf bytes.Buffer
	listProfilesRun(&buf)
	out := buf.String()
	if strings.Index(out, "dev-standup") > strings.Index(out, "household") {
		t.Errorf("profiles not sorted:\n%s", out)
	}
}

func TestLoadStatus(t *testing.T) {
	dir := setupTestEnv(t)
	appConfig.Shell.CacheTTL = "5m"
	if _, err := store.PutDayLog(context.Background(), entry.DayLog{Date: svc.Today(), Content: "logged"}); err != nil {
		t.Fatal(err)
	}

	cache, err := loadStatus(false, time.Now())
	if err != nil {
		t.Fatalf("loadStatus: %v", err)
	}
	if !cache.Logged || cache.Streak != 1 {
		t.Errorf("cache = %+v", cache)
	}
	if shell.ReadCache(dir, appConfig.Owner) == nil {
		t.Error("expected cache to be written")
	}

	var buf bytes.Buffer
	if err := outputEnv(&buf, buildStatusData(cache), "zsh"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "export DAYBOOK_STREAK='1'") {
		t.Errorf("env output:\n%s", buf.String())
	}

	buf.Reset()
	if err := outputTemplate(&buf, buildStatusData(cache), "{{.Streak}}/{{.Items}}"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "1/0" {
		t.Errorf("template output = %q", buf.String())
	}
	if err := outputTemplate(&buf, statusData{}, "{{.Nope"); err == nil {
		t.Error("expected template parse error")
	}
}

func TestOutputEnvDialects(t *testing.T) {
	setupTestEnv(t)
	data := statusData{TodayIcon: "it's", Streak: 3, StreakIcon: "🔥", Items: 2, Backend: "sqlite"}

	var buf bytes.Buffer
	if err := outputEnv(&buf, data, "fish"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`set -gx DAYBOOK_TODAY 'it\'s'`, "set -gx DAYBOOK_ITEMS '2'", "set -gx DAYBOOK_BACKEND 'sqlite'"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("fish output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := outputEnv(&buf, data, "bash"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `export DAYBOOK_TODAY='it'\''s'`) {
		t.Errorf("bash output:\n%s", buf.String())
	}

	if err := outputEnv(&buf, data, "csh"); !errors.Is(err, shell.ErrUnsupportedShell) {
		t.Errorf("err = %v, want ErrUnsupportedShell", err)
	}
}
