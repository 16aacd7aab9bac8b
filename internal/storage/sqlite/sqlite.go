package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
	_ "github.com/tursodatabase/go-libsql"
)

// timeLayout is fixed-width so stored instants sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements storage.Storage using SQLite via Turso/libSQL.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite storage backend.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", storage.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, "daybook.db")
	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", storage.ErrStorage, err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", storage.ErrStorage, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS rules (
			id         TEXT PRIMARY KEY,
			owner      TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL CHECK(length(trim(title)) > 0),
			notes      TEXT NOT NULL DEFAULT '',
			base_date  TEXT NOT NULL,
			frequency  TEXT NOT NULL CHECK(frequency IN ('YEARLY', 'MONTHLY')),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rules_owner ON rules(owner);

		CREATE TABLE IF NOT EXISTS rule_skips (
			rule_id TEXT NOT NULL,
			date    TEXT NOT NULL,
			PRIMARY KEY (rule_id, date)
		);

		CREATE TABLE IF NOT EXISTS rule_overrides (
			rule_id TEXT NOT NULL,
			date    TEXT NOT NULL,
			title   TEXT,
			notes   TEXT,
			PRIMARY KEY (rule_id, date)
		);

		CREATE TABLE IF NOT EXISTS work_entries (
			id         TEXT PRIMARY KEY,
			owner      TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL CHECK(length(trim(title)) > 0),
			notes      TEXT NOT NULL DEFAULT '',
			start_at   TEXT NOT NULL,
			end_at     TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_work_owner_start ON work_entries(owner, start_at);

		CREATE TABLE IF NOT EXISTS todos (
			id         TEXT PRIMARY KEY,
			owner      TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL CHECK(length(trim(title)) > 0),
			priority   TEXT NOT NULL DEFAULT '',
			due_at     TEXT,
			done       INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_todos_owner_due ON todos(owner, due_at);

		CREATE TABLE IF NOT EXISTS day_logs (
			owner      TEXT NOT NULL DEFAULT '',
			date       TEXT NOT NULL,
			content    TEXT NOT NULL CHECK(length(trim(content)) > 0),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (owner, date),
			CHECK(created_at <= updated_at)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("%w: creating schema: %v", storage.ErrStorage, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing timestamp %q: %v", storage.ErrStorage, s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func scanNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.Parse(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %v", storage.ErrStorage, err)
	}
	return d, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// --- Rule methods ---

// CreateRule persists a new rule with its skips and overrides.
func (s *Store) CreateRule(ctx context.Context, r recurrence.Rule) error {
	if err := storage.ValidateRule(r); err != nil {
		return err
	}
	r.NormalizeSkips()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM rules WHERE id = ?", r.ID).Scan(&exists); err != nil {
		return fmt.Errorf("%w: checking rule: %v", storage.ErrStorage, err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: rule %s already exists", storage.ErrConflict, r.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rules (id, owner, title, notes, base_date, frequency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Owner, r.Title, r.Notes, r.BaseDate.String(), string(r.Frequency),
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	); err != nil {
		return fmt.Errorf("%w: inserting rule: %v", storage.ErrStorage, err)
	}
	if err := writeSkips(ctx, tx, r.ID, r.Skips); err != nil {
		return err
	}
	if err := writeOverrides(ctx, tx, r.ID, r.Overrides); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return nil
}

func writeSkips(ctx context.Context, q queryer, ruleID string, skips []civil.Date) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM rule_skips WHERE rule_id = ?", ruleID); err != nil {
		return fmt.Errorf("%w: clearing skips: %v", storage.ErrStorage, err)
	}
	for _, d := range skips {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO rule_skips (rule_id, date) VALUES (?, ?)", ruleID, d.String(),
		); err != nil {
			return fmt.Errorf("%w: inserting skip: %v", storage.ErrStorage, err)
		}
	}
	return nil
}

func writeOverrides(ctx context.Context, q queryer, ruleID string, overrides map[civil.Date]recurrence.Override) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM rule_overrides WHERE rule_id = ?", ruleID); err != nil {
		return fmt.Errorf("%w: clearing overrides: %v", storage.ErrStorage, err)
	}
	for d, o := range overrides {
		if _, err := q.ExecContext(ctx,
			"INSERT INTO rule_overrides (rule_id, date, title, notes) VALUES (?, ?, ?, ?)",
			ruleID, d.String(), nullString(o.Title), nullString(o.Notes),
		); err != nil {
			return fmt.Errorf("%w: inserting override: %v", storage.ErrStorage, err)
		}
	}
	return nil
}

const ruleColumns = "id, owner, title, notes, base_date, frequency, created_at, updated_at"

func scanRule(sc interface{ Scan(...any) error }) (recurrence.Rule, error) {
	var r recurrence.Rule
	var baseStr, freq, createdStr, updatedStr string
	if err := sc.Scan(&r.ID, &r.Owner, &r.Title, &r.Notes, &baseStr, &freq, &createdStr, &updatedStr); err != nil {
		return recurrence.Rule{}, err
	}
	var err error
	if r.BaseDate, err = parseDate(baseStr); err != nil {
		return recurrence.Rule{}, err
	}
	r.Frequency = recurrence.Frequency(freq)
	if r.CreatedAt, err = parseTime(createdStr); err != nil {
		return recurrence.Rule{}, err
	}
	if r.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return recurrence.Rule{}, err
	}
	return r, nil
}

// loadRuleDetails fills in skips and overrides for r.
func loadRuleDetails(ctx context.Context, q queryer, r *recurrence.Rule) error {
	rows, err := q.QueryContext(ctx, "SELECT date FROM rule_skips WHERE rule_id = ? ORDER BY date", r.ID)
	if err != nil {
		return fmt.Errorf("%w: querying skips: %v", storage.ErrStorage, err)
	}
	for rows.Next() {
		var ds string
		if err := rows.Scan(&ds); err != nil {
			rows.Close()
			return fmt.Errorf("%w: scanning skip: %v", storage.ErrStorage, err)
		}
		d, err := parseDate(ds)
		if err != nil {
			rows.Close()
			return err
		}
		r.Skips = append(r.Skips, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating skips: %v", storage.ErrStorage, err)
	}

	rows, err = q.QueryContext(ctx, "SELECT date, title, notes FROM rule_overrides WHERE rule_id = ?", r.ID)
	if err != nil {
		return fmt.Errorf("%w: querying overrides: %v", storage.ErrStorage, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ds string
		var title, notes sql.NullString
		if err := rows.Scan(&ds, &title, &notes); err != nil {
			return fmt.Errorf("%w: scanning override: %v", storage.ErrStorage, err)
		}
		d, err := parseDate(ds)
		if err != nil {
			return err
		}
		r.SetOverride(d, recurrence.Override{Title: scanNullString(title), Notes: scanNullString(notes)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating overrides: %v", storage.ErrStorage, err)
	}
	return nil
}

func getRule(ctx context.Context, q queryer, id string) (recurrence.Rule, error) {
	row := q.QueryRowContext(ctx, "SELECT "+ruleColumns+" FROM rules WHERE id = ?", id)
	r, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return recurrence.Rule{}, fmt.Errorf("%w: rule %s", storage.ErrNotFound, id)
		}
		return recurrence.Rule{}, fmt.Errorf("%w: querying rule: %v", storage.ErrStorage, err)
	}
	if err := loadRuleDetails(ctx, q, &r); err != nil {
		return recurrence.Rule{}, err
	}
	return r, nil
}

// GetRule retrieves a rule by ID.
func (s *Store) GetRule(ctx context.Context, id string) (recurrence.Rule, error) {
	return getRule(ctx, s.db, id)
}

// ListRules returns the owner's rules plus globally shared rules, oldest
// first.
func (s *Store) ListRules(ctx context.Context, owner string) ([]recurrence.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ruleColumns+" FROM rules WHERE owner = '' OR owner = ? ORDER BY created_at, id",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing rules: %v", storage.ErrStorage, err)
	}

	rules := []recurrence.Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scanning rule: %v", storage.ErrStorage, err)
		}
		rules = append(rules, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rules: %v", storage.ErrStorage, err)
	}

	for i := range rules {
		if err := loadRuleDetails(ctx, s.db, &rules[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// UpdateRule applies a partial update to a rule.
func (s *Store) UpdateRule(ctx context.Context, id string, p recurrence.Patch) (recurrence.Rule, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	current, err := getRule(ctx, tx, id)
	if err != nil {
		return recurrence.Rule{}, err
	}

	updated := p.Apply(current)
	if err := storage.ValidateRule(updated); err != nil {
		return recurrence.Rule{}, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE rules SET title = ?, notes = ?, base_date = ?, frequency = ?, updated_at = ? WHERE id = ?`,
		updated.Title, updated.Notes, updated.BaseDate.String(), string(updated.Frequency),
		formatTime(updated.UpdatedAt), id,
	); err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: updating rule: %v", storage.ErrStorage, err)
	}
	if p.Skips != nil {
		if err := writeSkips(ctx, tx, id, updated.Skips); err != nil {
			return recurrence.Rule{}, err
		}
	}
	if p.Overrides != nil {
		if err := writeOverrides(ctx, tx, id, updated.Overrides); err != nil {
			return recurrence.Rule{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return recurrence.Rule{}, fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return updated, nil
}

// DeleteRule removes a rule with its skips and overrides.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting rule: %v", storage.ErrStorage, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", storage.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: rule %s", storage.ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rule_skips WHERE rule_id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting skips: %v", storage.ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rule_overrides WHERE rule_id = ?", id); err != nil {
		return fmt.Errorf("%w: deleting overrides: %v", storage.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing: %v", storage.ErrStorage, err)
	}
	return nil
}

// --- Work entry methods ---

// CreateWorkEntry persists a new work entry.
func (s *Store) CreateWorkEntry(ctx context.Context, w entry.WorkEntry) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_entries (id, owner, title, notes, start_at, end_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Owner, w.Title, w.Notes, formatTime(w.Start), nullTime(w.End),
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting work entry: %v", storage.ErrStorage, err)
	}
	return nil
}

// ListWorkEntries returns the owner's entries starting in [from, to).
func (s *Store) ListWorkEntries(ctx context.Context, owner string, from, to time.Time) ([]entry.WorkEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, title, notes, start_at, end_at, created_at, updated_at
		 FROM work_entries WHERE owner = ? AND start_at >= ? AND start_at < ?
		 ORDER BY start_at, id`,
		owner, formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing work entries: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	entries := []entry.WorkEntry{}
	for rows.Next() {
		var w entry.WorkEntry
		var startStr, createdStr, updatedStr string
		var endStr sql.NullString
		if err := rows.Scan(&w.ID, &w.Owner, &w.Title, &w.Notes, &startStr, &endStr, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("%w: scanning work entry: %v", storage.ErrStorage, err)
		}
		if w.Start, err = parseTime(startStr); err != nil {
			return nil, err
		}
		if w.End, err = scanNullTime(endStr); err != nil {
			return nil, err
		}
		if w.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, err
		}
		if w.UpdatedAt, err = parseTime(updatedStr); err != nil {
			return nil, err
		}
		entries = append(entries, w)
	}
	return entries, rows.Err()
}

// DeleteWorkEntry removes a work entry permanently.
func (s *Store) DeleteWorkEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM work_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting work entry: %v", storage.ErrStorage, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", storage.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: work entry %s", storage.ErrNotFound, id)
	}
	return nil
}

// --- Todo methods ---

const todoColumns = "id, owner, title, priority, due_at, done, created_at, updated_at"

func scanTodo(sc interface{ Scan(...any) error }) (entry.Todo, error) {
	var t entry.Todo
	var dueStr sql.NullString
	var done int
	var createdStr, updatedStr string
	if err := sc.Scan(&t.ID, &t.Owner, &t.Title, &t.Priority, &dueStr, &done, &createdStr, &updatedStr); err != nil {
		return entry.Todo{}, err
	}
	var err error
	if t.Due, err = scanNullTime(dueStr); err != nil {
		return entry.Todo{}, err
	}
	t.Done = done != 0
	if t.CreatedAt, err = parseTime(createdStr); err != nil {
		return entry.Todo{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return entry.Todo{}, err
	}
	return t, nil
}

// CreateTodo persists a new todo.
func (s *Store) CreateTodo(ctx context.Context, t entry.Todo) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}
	done := 0
	if t.Done {
		done = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO todos ("+todoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Owner, t.Title, t.Priority, nullTime(t.Due), done,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting todo: %v", storage.ErrStorage, err)
	}
	return nil
}

// GetTodo retrieves a todo by ID.
func (s *Store) GetTodo(ctx context.Context, id string) (entry.Todo, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+todoColumns+" FROM todos WHERE id = ?", id)
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.Todo{}, fmt.Errorf("%w: todo %s", storage.ErrNotFound, id)
		}
		return entry.Todo{}, fmt.Errorf("%w: querying todo: %v", storage.ErrStorage, err)
	}
	return t, nil
}

// ListTodos returns the owner's todos matching q, ordered by due instant
// with undated todos last.
func (s *Store) ListTodos(ctx context.Context, owner string, q storage.TodoQuery) ([]entry.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE owner = ?"
	args := []any{owner}

	if !q.IncludeDone {
		query += " AND done = 0"
	}
	if q.DueFrom != nil {
		query += " AND due_at IS NOT NULL AND due_at >= ?"
		args = append(args, formatTime(*q.DueFrom))
	}
	if q.DueTo != nil {
		query += " AND due_at IS NOT NULL AND due_at <= ?"
		args = append(args, formatTime(*q.DueTo))
	}
	query += " ORDER BY due_at IS NULL, due_at, created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing todos: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	todos := []entry.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning todo: %v", storage.ErrStorage, err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// CompleteTodo marks a todo done.
func (s *Store) CompleteTodo(ctx context.Context, id string) (entry.Todo, error) {
	now := formatTime(time.Now())
	result, err := s.db.ExecContext(ctx,
		"UPDATE todos SET done = 1, updated_at = ? WHERE id = ?", now, id,
	)
	if err != nil {
		return entry.Todo{}, fmt.Errorf("%w: completing todo: %v", storage.ErrStorage, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return entry.Todo{}, fmt.Errorf("%w: checking rows affected: %v", storage.ErrStorage, err)
	}
	if n == 0 {
		return entry.Todo{}, fmt.Errorf("%w: todo %s", storage.ErrNotFound, id)
	}
	return s.GetTodo(ctx, id)
}

// --- Day log methods ---

// GetDayLog retrieves the owner's log for a date.
func (s *Store) GetDayLog(ctx context.Context, owner string, date civil.Date) (entry.DayLog, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT content, created_at, updated_at FROM day_logs WHERE owner = ? AND date = ?",
		owner, date.String(),
	)
	d := entry.DayLog{Owner: owner, Date: date}
	var createdStr, updatedStr string
	if err := row.Scan(&d.Content, &createdStr, &updatedStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.DayLog{}, fmt.Errorf("%w: day log %s", storage.ErrNotFound, date)
		}
		return entry.DayLog{}, fmt.Errorf("%w: querying day log: %v", storage.ErrStorage, err)
	}
	var err error
	if d.CreatedAt, err = parseTime(createdStr); err != nil {
		return entry.DayLog{}, err
	}
	if d.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return entry.DayLog{}, err
	}
	return d, nil
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

	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO day_logs (owner, date, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(owner, date) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		d.Owner, d.Date.String(), d.Content, formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
	)
	if err != nil {
		return entry.DayLog{}, fmt.Errorf("%w: writing day log: %v", storage.ErrStorage, err)
	}
	return s.GetDayLog(ctx, d.Owner, d.Date)
}

// ListDayLogDates returns the dates the owner has logs for, newest first.
func (s *Store) ListDayLogDates(ctx context.Context, owner string) ([]civil.Date, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date FROM day_logs WHERE owner = ? ORDER BY date DESC", owner,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: listing day logs: %v", storage.ErrStorage, err)
	}
	defer rows.Close()

	dates := []civil.Date{}
	for rows.Next() {
		var ds string
		if err := rows.Scan(&ds); err != nil {
			return nil, fmt.Errorf("%w: scanning date: %v", storage.ErrStorage, err)
		}
		d, err := parseDate(ds)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
