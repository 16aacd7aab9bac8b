package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := capture(t, LevelInfo)
	Debug("hidden")
	Info("shown", "path", "/overview")
	Error("failed", errors.New("boom"), "status", 500)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at INFO level: %s", out)
	}
	if !strings.Contains(out, "[INFO] shown path=/overview") {
		t.Errorf("missing info line: %s", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom status=500") {
		t.Errorf("missing error line: %s", out)
	}
}

func TestErrorLevelSuppressesInfo(t *testing.T) {
	buf := capture(t, LevelError)
	Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info written at ERROR level: %s", buf.String())
	}
}

func TestFormatKVsQuotesAndDropsOdd(t *testing.T) {
	got := formatKVs("msg", "two words", 42, "ignored", "dangling")
	if got != ` msg="two words"` {
		t.Errorf("formatKVs = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug,
		"ERROR": LevelError,
		"info":  LevelInfo,
		"":      LevelInfo,
		"loud":  LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
