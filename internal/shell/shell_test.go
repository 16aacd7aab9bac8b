package shell

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
)

func TestStreakFrom(t *testing.T) {
	today := civil.MustParse("2026-03-14")
	tests := []struct {
		name       string
		dates      []string
		wantLogged bool
		wantStreak int
	}{
		{"empty", nil, false, 0},
		{"today only", []string{"2026-03-14"}, true, 1},
		{"three in a row", []string{"2026-03-14", "2026-03-13", "2026-03-12", "2026-03-01"}, true, 3},
		{"gap before today", []string{"2026-03-13", "2026-03-12"}, false, 0},
		{"across month", []string{"2026-03-14", "2026-03-13", "2026-03-12", "2026-03-11", "2026-03-10", "2026-03-09", "2026-03-08", "2026-03-07", "2026-03-06", "2026-03-05", "2026-03-04", "2026-03-03", "2026-03-02", "2026-03-01", "2026-02-28"}, true, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dates []civil.Date
			for _, s := range tt.dates {
				dates = append(dates, civil.MustParse(s))
			}
			logged, streak := streakFrom(dates, today)
			if logged != tt.wantLogged || streak != tt.wantStreak {
				t.Errorf("streakFrom = (%v, %d), want (%v, %d)", logged, streak, tt.wantLogged, tt.wantStreak)
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if c := ReadCache(dir, "alice"); c != nil {
		t.Fatalf("expected nil cache, got %+v", c)
	}

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	alice := &PromptCache{Logged: true, Streak: 4, Items: 2, TodayDate: "2026-03-14", Owner: "alice", UpdatedAt: now}
	bob := &PromptCache{Streak: 1, TodayDate: "2026-03-14", Owner: "bob", UpdatedAt: now}
	for _, c := range []*PromptCache{alice, bob} {
		if err := WriteCache(dir, c); err != nil {
			t.Fatalf("WriteCache(%s): %v", c.Owner, err)
		}
	}

	got := ReadCache(dir, "alice")
	if got == nil || got.Streak != 4 || got.Items != 2 || !got.Logged {
		t.Fatalf("ReadCache(alice) = %+v", got)
	}
	if b := ReadCache(dir, "bob"); b == nil || b.Streak != 1 {
		t.Fatalf("ReadCache(bob) = %+v", b)
	}

	if err := InvalidateCache(dir, "alice"); err != nil {
		t.Fatalf("InvalidateCache: %v", err)
	}
	if ReadCache(dir, "alice") != nil {
		t.Error("alice's entry should be gone")
	}
	if ReadCache(dir, "bob") == nil {
		t.Error("bob's entry should survive")
	}

	if err := InvalidateCache(dir, "bob"); err != nil {
		t.Fatalf("InvalidateCache: %v", err)
	}
	if _, err := os.Stat(CachePath(dir)); !os.IsNotExist(err) {
		t.Error("empty cache file should be removed")
	}
	if err := InvalidateCache(dir, "bob"); err != nil {
		t.Errorf("InvalidateCache on missing file: %v", err)
	}
}

func TestInvalidateCorruptCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(CachePath(dir), []byte("stale"), 0600); err != nil {
		t.Fatal(err)
	}
	if ReadCache(dir, "alice") != nil {
		t.Error("corrupt cache should read as nil")
	}
	if err := InvalidateCache(dir, "alice"); err != nil {
		t.Fatalf("InvalidateCache: %v", err)
	}
	if _, err := os.Stat(CachePath(dir)); !os.IsNotExist(err) {
		t.Error("corrupt cache file should be removed")
	}
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c := &PromptCache{TodayDate: "2026-03-14", UpdatedAt: now}
	tests := []struct {
		name  string
		cache *PromptCache
		now   time.Time
		today string
		want  bool
	}{
		{"nil", nil, now, "2026-03-14", false},
		{"just written", c, now, "2026-03-14", true},
		{"within ttl", c, now.Add(59 * time.Second), "2026-03-14", true},
		{"ttl elapsed", c, now.Add(2 * time.Minute), "2026-03-14", false},
		{"date rolled over", c, now, "2026-03-15", false},
		{"written in the future", c, now.Add(-time.Hour), "2026-03-14", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cache.IsFresh(tt.now, time.Minute, tt.today); got != tt.want {
				t.Errorf("IsFresh = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitScripts(t *testing.T) {
	if got := strings.Join(Names(), ","); got != "bash,fish,zsh" {
		t.Errorf("Names = %s", got)
	}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			d, err := Lookup(name)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := d.WriteInit(&buf); err != nil {
				t.Fatalf("WriteInit: %v", err)
			}
			out := buf.String()
			for _, want := range []string{
				"# daybook shell integration (" + name + ")",
				"daybook status --env --shell " + name,
				"daybook completion " + name,
				"daybook_prompt_info",
			} {
				if !strings.Contains(out, want) {
					t.Errorf("script missing %q:\n%s", want, out)
				}
			}
		})
	}
	if _, err := Lookup("tcsh"); !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("Lookup(tcsh) err = %v", err)
	}
}

func TestWriteEnvQuoting(t *testing.T) {
	vars := []EnvVar{{Name: "A", Value: `it's $HOME`}, {Name: "B", Value: `back\slash`}}
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "export A='it'\\''s $HOME'\nexport B='back\\slash'\n"},
		{"fish", "set -gx A 'it\\'s $HOME'\nset -gx B 'back\\\\slash'\n"},
	}
	for _, tt := range tests {
		d, _ := Lookup(tt.shell)
		var buf bytes.Buffer
		if err := d.WriteEnv(&buf, vars); err != nil {
			t.Fatal(err)
		}
		if buf.String() != tt.want {
			t.Errorf("%s:\ngot  %q\nwant %q", tt.shell, buf.String(), tt.want)
		}
	}
}
