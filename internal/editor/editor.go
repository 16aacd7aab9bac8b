package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// hintPrefix marks editor-only lines that are stripped before saving.
const hintPrefix = "<!-- daybook: "

// ErrNoEditor is returned when the editor command is blank.
var ErrNoEditor = errors.New("empty editor command")

// Resolve picks the editor command: the configured one, then $VISUAL, then
// $EDITOR, then vi.
func Resolve(configEditor string) string {
	for _, ed := range []string{configEditor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(ed) != "" {
			return ed
		}
	}
	return "vi"
}

// Session is one round of editing a document in an external editor.
type Session struct {
	// Command is the editor command line; extra words are passed as
	// arguments before the file name.
	Command string
	// Hint is shown as a comment on the first line.
	Hint string
	// Suffix is the temp file extension. Defaults to ".md".
	Suffix string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result is what the editor left behind.
type Result struct {
	Content string
	// Changed is false when the document came back unchanged or empty.
	Changed bool
}

// Run writes initial to a temp file, waits for the editor to exit and reads
// the file back with hint lines removed. An empty document reports
// Changed=false and empty Content so callers can treat it as an abort.
func (s Session) Run(ctx context.Context, initial string) (Result, error) {
	args := strings.Fields(s.Command)
	if len(args) == 0 {
		return Result{}, ErrNoEditor
	}

	suffix := s.Suffix
	if suffix == "" {
		suffix = ".md"
	}
	tmp, err := os.CreateTemp("", "daybook-*"+suffix)
	if err != nil {
		return Result{}, fmt.Errorf("creating temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	_, werr := tmp.WriteString(withHint(s.Hint, initial))
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return Result{}, fmt.Errorf("writing temp file: %w", werr)
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = or[io.Reader](s.Stdin, os.Stdin)
	cmd.Stdout = or[io.Writer](s.Stdout, os.Stdout)
	cmd.Stderr = or[io.Writer](s.Stderr, os.Stderr)
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("running %s: %w", args[0], err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading edited file: %w", err)
	}

	edited := stripHints(string(data))
	switch strings.TrimSpace(edited) {
	case "":
		return Result{}, nil
	case strings.TrimSpace(initial):
		return Result{Content: initial}, nil
	}
	return Result{Content: edited, Changed: true}, nil
}

func or[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

func withHint(hint, content string) string {
	if hint == "" {
		return content
	}
	return hintPrefix + hint + " -->\n" + content
}

func stripHints(s string) string {
	var b strings.Builder
	for line := range strings.SplitAfterSeq(s, "\n") {
		if !strings.HasPrefix(line, hintPrefix) {
			b.WriteString(line)
		}
	}
	return b.String()
}
