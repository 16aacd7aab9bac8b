package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
)

// sharedOwnerDir holds records of the global ("") owner.
const sharedOwnerDir = "_shared"

// Store implements storage.Storage using Markdown files with YAML front-matter.
//
// Layout under the data directory:
//
//	rules/<id>.md
//	work/<id>.md
//	todos/<id>.md
//	days/<owner>/<YYYY>/<MM>/<DD>.md
type Store struct {
	rulesDir string
	workDir  string
	todosDir string
	daysDir  string

	// mu serializes read-modify-write cycles within one process.
	mu sync.RWMutex
}

// New creates a new Markdown file storage backend.
func New(dataDir string) (*Store, error) {
	s := &Store{
		rulesDir: filepath.Join(dataDir, "rules"),
		workDir:  filepath.Join(dataDir, "work"),
		todosDir: filepath.Join(dataDir, "todos"),
		daysDir:  filepath.Join(dataDir, "days"),
	}
	for _, dir := range []string{s.rulesDir, s.workDir, s.todosDir, s.daysDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", storage.ErrStorage, filepath.Base(dir), err)
		}
	}
	return s, nil
}

// Close is a no-op for the Markdown backend.
func (s *Store) Close() error {
	return nil
}

// marshal renders front matter followed by a Markdown body.
func marshal(fm any, body string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("---\n")
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("%w: encoding front-matter: %v", storage.ErrStorage, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: encoding front-matter: %v", storage.ErrStorage, err)
	}
	b.WriteString("---\n")
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.Bytes(), nil
}

// unmarshal parses front matter into fm and returns the trimmed body.
func unmarshal(data []byte, fm any) (string, error) {
	body, err := frontmatter.Parse(bytes.NewReader(data), fm)
	if err != nil {
		return "", fmt.Errorf("%w: parsing front-matter: %v", storage.ErrStorage, err)
	}
	return strings.TrimSpace(string(body)), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing %s: %v", storage.ErrStorage, field, err)
	}
	return t, nil
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseOptTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", storage.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", storage.ErrStorage, err)
	}
	tmpName := tmp.Name()

	// Lock the temp file during write
	if err := syscall.Flock(int(tmp.Fd()), syscall.LOCK_EX); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: acquiring lock: %v", storage.ErrStorage, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", storage.ErrStorage, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", storage.ErrStorage, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming file: %v", storage.ErrStorage, err)
	}

	return nil
}

// createExclusive writes a new record file, failing with ErrConflict if the
// ID is taken.
func createExclusive(path, id string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", storage.ErrConflict, id)
	}
	return atomicWrite(path, data)
}

// readRecord reads a record file, mapping a missing file to ErrNotFound.
func readRecord(path, what, id string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s %s", storage.ErrNotFound, what, id)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", storage.ErrStorage, what, err)
	}
	return data, nil
}

// readDir visits every record file in dir, skipping unreadable or
// malformed files.
func readDir(dir string, visit func(data []byte) error) error {
	des, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", storage.ErrStorage, filepath.Base(dir), err)
	}
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			continue
		}
		if err := visit(data); err != nil {
			continue
		}
	}
	return nil
}

func recordPath(dir, id string) (string, error) {
	if err := entry.ValidateID(id); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	}
	return filepath.Join(dir, id+".md"), nil
}

// --- Rule methods ---

type overrideFrontMatter struct {
	Date  string  `yaml:"date"`
	Title *string `yaml:"title,omitempty"`
	Notes *string `yaml:"notes,omitempty"`
}

type ruleFrontMatter struct {
	ID        string                `yaml:"id"`
	Owner     string                `yaml:"owner,omitempty"`
	Title     string                `yaml:"title"`
	BaseDate  string                `yaml:"base_date"`
	Frequency string                `yaml:"frequency"`
	Skips     []string              `yaml:"skips,omitempty"`
	Overrides []overrideFrontMatter `yaml:"overrides,omitempty"`
	CreatedAt string                `yaml:"created_at"`
	UpdatedAt string                `yaml:"updated_at"`
}

func marshalRule(r recurrence.Rule) ([]byte, error) {
	fm := ruleFrontMatter{
		ID:        r.ID,
		Owner:     r.Owner,
		Title:     r.Title,
		BaseDate:  r.BaseDate.String(),
		Frequency: string(r.Frequency),
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
	for _, d := range r.Skips {
		fm.Skips = append(fm.Skips, d.String())
	}
	for d, o := range r.Overrides {
		fm.Overrides = append(fm.Overrides, overrideFrontMatter{Date: d.String(), Title: o.Title, Notes: o.Notes})
	}
	sort.Slice(fm.Overrides, func(i, j int) bool {
		return fm.Overrides[i].Date < fm.Overrides[j].Date
	})
	return marshal(fm, r.Notes)
}

func unmarshalRule(data []byte) (recurrence.Rule, error) {
	var fm ruleFrontMatter
	notes, err := unmarshal(data, &fm)
	if err != nil {
		return recurrence.Rule{}, err
	}

	r := recurrence.Rule{
		ID:        fm.ID,
		Owner:     fm.Owner,
		Title:     fm.Title,
		Notes:     notes,
		Frequency: recurrence.Frequency(fm.Frequency),
	}
	if r.BaseDate, err = civil.Parse(fm.BaseDate); err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: base_date: %v", storage.ErrStorage, err)
	}
	for _, s := range fm.Skips {
		d, err := civil.Parse(s)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("%w: skip: %v", storage.ErrStorage, err)
		}
		r.Skips = append(r.Skips, d)
	}
	for _, o := range fm.Overrides {
		d, err := civil.Parse(o.Date)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("%w: override: %v", storage.ErrStorage, err)
		}
		r.SetOverride(d, recurrence.Override{Title: o.Title, Notes: o.Notes})
	}
	if r.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return recurrence.Rule{}, err
	}
	if r.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return recurrence.Rule{}, err
	}
	return r, nil
}

// CreateRule persists a new rule as a Markdown file whose body is the notes.
func (s *Store) CreateRule(ctx context.Context, r recurrence.Rule) error {
	if err := storage.ValidateRule(r); err != nil {
		return err
	}
	r.NormalizeSkips()

	data, err := marshalRule(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return createExclusive(filepath.Join(s.rulesDir, r.ID+".md"), "rule "+r.ID, data)
}

func (s *Store) getRule(id string) (recurrence.Rule, error) {
	path, err := recordPath(s.rulesDir, id)
	if err != nil {
		return recurrence.Rule{}, err
	}
	data, err := readRecord(path, "rule", id)
	if err != nil {
		return recurrence.Rule{}, err
	}
	return unmarshalRule(data)
}

// GetRule retrieves a rule by ID.
func (s *Store) GetRule(ctx context.Context, id string) (recurrence.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRule(id)
}

// ListRules returns the owner's rules plus globally shared rules, oldest
// first.
func (s *Store) ListRules(ctx context.Context, owner string) ([]recurrence.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := []recurrence.Rule{}
	err := readDir(s.rulesDir, func(data []byte) error {
		r, err := unmarshalRule(data)
		if err != nil {
			return err
		}
		if storage.RuleVisible(r, owner) {
			rules = append(rules, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rules, func(i, j int) bool {
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, ctx.Err()
}

// UpdateRule applies a partial update to a rule.
func (s *Store) UpdateRule(ctx context.Context, id string, p recurrence.Patch) (recurrence.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getRule(id)
	if err != nil {
		return recurrence.Rule{}, err
	}
	updated := p.Apply(current)
	if err := storage.ValidateRule(updated); err != nil {
		return recurrence.Rule{}, err
	}
	updated.UpdatedAt = time.Now().UTC()

	data, err := marshalRule(updated)
	if err != nil {
		return recurrence.Rule{}, err
	}
	if err := atomicWrite(filepath.Join(s.rulesDir, id+".md"), data); err != nil {
		return recurrence.Rule{}, err
	}
	return updated, nil
}

// DeleteRule removes a rule permanently.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeRecord(s.rulesDir, "rule", id)
}

func removeRecord(dir, what, id string) error {
	path, err := recordPath(dir, id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s %s", storage.ErrNotFound, what, id)
		}
		return fmt.Errorf("%w: deleting %s: %v", storage.ErrStorage, what, err)
	}
	return nil
}

// --- Work entry methods ---

type workFrontMatter struct {
	ID        string `yaml:"id"`
	Owner     string `yaml:"owner,omitempty"`
	Title     string `yaml:"title"`
	Start     string `yaml:"start"`
	End       string `yaml:"end,omitempty"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

func unmarshalWork(data []byte) (entry.WorkEntry, error) {
	var fm workFrontMatter
	notes, err := unmarshal(data, &fm)
	if err != nil {
		return entry.WorkEntry{}, err
	}
	w := entry.WorkEntry{ID: fm.ID, Owner: fm.Owner, Title: fm.Title, Notes: notes}
	if w.Start, err = parseTime("start", fm.Start); err != nil {
		return entry.WorkEntry{}, err
	}
	if w.End, err = parseOptTime("end", fm.End); err != nil {
		return entry.WorkEntry{}, err
	}
	if w.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return entry.WorkEntry{}, err
	}
	if w.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return entry.WorkEntry{}, err
	}
	return w, nil
}

// CreateWorkEntry persists a new work entry.
func (s *Store) CreateWorkEntry(ctx context.Context, w entry.WorkEntry) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	data, err := marshal(workFrontMatter{
		ID:        w.ID,
		Owner:     w.Owner,
		Title:     w.Title,
		Start:     formatTime(w.Start),
		End:       formatOptTime(w.End),
		CreatedAt: formatTime(w.CreatedAt),
		UpdatedAt: formatTime(w.UpdatedAt),
	}, w.Notes)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return createExclusive(filepath.Join(s.workDir, w.ID+".md"), "work entry "+w.ID, data)
}

// ListWorkEntries returns the owner's entries starting in [from, to).
func (s *Store) ListWorkEntries(ctx context.Context, owner string, from, to time.Time) ([]entry.WorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []entry.WorkEntry{}
	err := readDir(s.workDir, func(data []byte) error {
		w, err := unmarshalWork(data)
		if err != nil {
			return err
		}
		if w.Owner != owner || w.Start.Before(from) || !w.Start.Before(to) {
			return nil
		}
		entries = append(entries, w)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Start.Equal(entries[j].Start) {
			return entries[i].Start.Before(entries[j].Start)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, ctx.Err()
}

// DeleteWorkEntry removes a work entry permanently.
func (s *Store) DeleteWorkEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeRecord(s.workDir, "work entry", id)
}

// --- Todo methods ---

type todoFrontMatter struct {
	ID        string `yaml:"id"`
	Owner     string `yaml:"owner,omitempty"`
	Title     string `yaml:"title"`
	Priority  string `yaml:"priority,omitempty"`
	Due       string `yaml:"due,omitempty"`
	Done      bool   `yaml:"done"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

func marshalTodo(t entry.Todo) ([]byte, error) {
	return marshal(todoFrontMatter{
		ID:        t.ID,
		Owner:     t.Owner,
		Title:     t.Title,
		Priority:  t.Priority,
		Due:       formatOptTime(t.Due),
		Done:      t.Done,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}, "")
}

func unmarshalTodo(data []byte) (entry.Todo, error) {
	var fm todoFrontMatter
	if _, err := unmarshal(data, &fm); err != nil {
		return entry.Todo{}, err
	}
	t := entry.Todo{ID: fm.ID, Owner: fm.Owner, Title: fm.Title, Priority: fm.Priority, Done: fm.Done}
	var err error
	if t.Due, err = parseOptTime("due", fm.Due); err != nil {
		return entry.Todo{}, err
	}
	if t.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return entry.Todo{}, err
	}
	if t.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return entry.Todo{}, err
	}
	return t, nil
}

// CreateTodo persists a new todo.
func (s *Store) CreateTodo(ctx context.Context, t entry.Todo) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	data, err := marshalTodo(t)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return createExclusive(filepath.Join(s.todosDir, t.ID+".md"), "todo "+t.ID, data)
}

func (s *Store) getTodo(id string) (entry.Todo, error) {
	path, err := recordPath(s.todosDir, id)
	if err != nil {
		return entry.Todo{}, err
	}
	data, err := readRecord(path, "todo", id)
	if err != nil {
		return entry.Todo{}, err
	}
	return unmarshalTodo(data)
}

// GetTodo retrieves a todo by ID.
func (s *Store) GetTodo(ctx context.Context, id string) (entry.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTodo(id)
}

// ListTodos returns the owner's todos matching q, ordered by due instant
// with undated todos last.
func (s *Store) ListTodos(ctx context.Context, owner string, q storage.TodoQuery) ([]entry.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := []entry.Todo{}
	err := readDir(s.todosDir, func(data []byte) error {
		t, err := unmarshalTodo(data)
		if err != nil {
			return err
		}
		if t.Owner == owner && q.Matches(t) {
			todos = append(todos, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		switch {
		case a.Due == nil && b.Due != nil:
			return false
		case a.Due != nil && b.Due == nil:
			return true
		case a.Due != nil && !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return todos, ctx.Err()
}

// CompleteTodo marks a todo done.
func (s *Store) CompleteTodo(ctx context.Context, id string) (entry.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.getTodo(id)
	if err != nil {
		return entry.Todo{}, err
	}
	t.Done = true
	t.UpdatedAt = time.Now().UTC()

	data, err := marshalTodo(t)
	if err != nil {
		return entry.Todo{}, err
	}
	if err := atomicWrite(filepath.Join(s.todosDir, id+".md"), data); err != nil {
		return entry.Todo{}, err
	}
	return t, nil
}

// --- Day log methods ---

type dayLogFrontMatter struct {
	Date      string `yaml:"date"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

func ownerDir(owner string) string {
	if owner == "" {
		return sharedOwnerDir
	}
	return url.PathEscape(owner)
}

func (s *Store) dayLogPath(owner string, date civil.Date) string {
	return filepath.Join(s.daysDir, ownerDir(owner),
		fmt.Sprintf("%04d", date.Year), fmt.Sprintf("%02d", int(date.Month)), fmt.Sprintf("%02d.md", date.Day))
}

func (s *Store) getDayLog(owner string, date civil.Date) (entry.DayLog, error) {
	data, err := readRecord(s.dayLogPath(owner, date), "day log", date.String())
	if err != nil {
		return entry.DayLog{}, err
	}
	var fm dayLogFrontMatter
	content, err := unmarshal(data, &fm)
	if err != nil {
		return entry.DayLog{}, err
	}
	d := entry.DayLog{Owner: owner, Date: date, Content: content}
	if d.CreatedAt, err = parseTime("created_at", fm.CreatedAt); err != nil {
		return entry.DayLog{}, err
	}
	if d.UpdatedAt, err = parseTime("updated_at", fm.UpdatedAt); err != nil {
		return entry.DayLog{}, err
	}
	return d, nil
}

// GetDayLog retrieves the owner's log for a date.
func (s *Store) GetDayLog(ctx context.Context, owner string, date civil.Date) (entry.DayLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getDayLog(owner, date)
}

// PutDayLog creates or replaces the log for a date, keeping the original
// creation time on replace.
func (s *Store) PutDayLog(ctx context.Context, d entry.DayLog) (entry.DayLog, error) {
	if err := entry.ValidateContent(d.Content); err != nil {
		return entry.DayLog{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	if !d.Date.IsValid() {
		return entry.DayLog{}, fmt.Errorf("%w: invalid day log date", storage.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, err := s.getDayLog(d.Owner, d.Date); err == nil {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	d.Content = strings.TrimSpace(d.Content)

	data, err := marshal(dayLogFrontMatter{
		Date:      d.Date.String(),
		CreatedAt: formatTime(d.CreatedAt),
		UpdatedAt: formatTime(d.UpdatedAt),
	}, d.Content)
	if err != nil {
		return entry.DayLog{}, err
	}
	if err := atomicWrite(s.dayLogPath(d.Owner, d.Date), data); err != nil {
		return entry.DayLog{}, err
	}
	return d, nil
}

// ListDayLogDates returns the dates the owner has logs for, newest first.
func (s *Store) ListDayLogDates(ctx context.Context, owner string) ([]civil.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := filepath.Join(s.daysDir, ownerDir(owner))
	dates := []civil.Date{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return nil // skip errors
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		// <YYYY>/<MM>/<DD>.md
		parts := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), ".md"), "/")
		if len(parts) != 3 {
			return nil
		}
		date, err := civil.Parse(strings.Join(parts, "-"))
		if err != nil {
			return nil // skip malformed paths
		}
		dates = append(dates, date)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning day logs: %v", storage.ErrStorage, err)
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
	return dates, ctx.Err()
}
