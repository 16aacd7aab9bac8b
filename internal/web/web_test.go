package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/chris-regnier/daybook/internal/storage/markdown"
	"github.com/chris-regnier/daybook/internal/web"
)

func setupStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := markdown.New(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newServer(t *testing.T, store storage.Storage, opts web.Options) http.Handler {
	t.Helper()
	return web.NewServer(agenda.New(store, time.UTC), opts).Handler()
}

func get(t *testing.T, h http.Handler, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func seedAnniversary(t *testing.T, store storage.Storage, owner string) recurrence.Rule {
	t.Helper()
	id, err := entry.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	title := "Anniversary!"
	now := time.Now().UTC()
	r := recurrence.Rule{
		ID:        id,
		Owner:     owner,
		Title:     "Anniversary",
		BaseDate:  civil.MustParse("2020-06-01"),
		Frequency: recurrence.Yearly,
		Skips:     []civil.Date{civil.MustParse("2025-06-01")},
		Overrides: map[civil.Date]recurrence.Override{civil.MustParse("2027-06-01"): {Title: &title}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateRule(context.Background(), r); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	return r
}

func TestHealth(t *testing.T) {
	h := newServer(t, setupStore(t), web.Options{BasicAuthUser: "u", BasicAuthPassword: "p"})
	rec := get(t, h, "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestDayLog(t *testing.T) {
	store := setupStore(t)
	rule := seedAnniversary(t, store, "")
	h := newServer(t, store, web.Options{})

	rec := get(t, h, "/daylog?date=2027-06-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode[agenda.DayResponse](t, rec)
	if body.DayLog != nil {
		t.Errorf("dayLog = %+v, want null", body.DayLog)
	}
	if len(body.Occurrences) != 1 || body.Occurrences[0].ID != rule.ID || body.Occurrences[0].Title != "Anniversary!" {
		t.Errorf("occurrences = %+v", body.Occurrences)
	}
	if !strings.Contains(rec.Body.String(), `"dayLog":null`) {
		t.Errorf("dayLog should encode as null: %s", rec.Body.String())
	}

	rec = get(t, h, "/daylog?date=2025-06-01")
	body = decode[agenda.DayResponse](t, rec)
	if len(body.Occurrences) != 0 {
		t.Errorf("skipped date returned %+v", body.Occurrences)
	}
	if !strings.Contains(rec.Body.String(), `"occurrences":[]`) {
		t.Errorf("occurrences should encode as []: %s", rec.Body.String())
	}
}

func TestDayLogWithContent(t *testing.T) {
	store := setupStore(t)
	date := civil.MustParse("2025-09-20")
	if _, err := store.PutDayLog(context.Background(), entry.DayLog{Date: date, Content: "Quiet Saturday"}); err != nil {
		t.Fatalf("PutDayLog: %v", err)
	}
	h := newServer(t, store, web.Options{})

	rec := get(t, h, "/daylog?date=2025-09-20")
	body := decode[agenda.DayResponse](t, rec)
	if body.DayLog == nil || body.DayLog.Content != "Quiet Saturday" || body.DayLog.Date != date {
		t.Errorf("dayLog = %+v", body.DayLog)
	}
	if !strings.Contains(rec.Body.String(), `"createdAt"`) {
		t.Errorf("dayLog should use camelCase timestamps: %s", rec.Body.String())
	}
}

func TestBadInput(t *testing.T) {
	h := newServer(t, setupStore(t), web.Options{})
	tests := []struct {
		target string
		code   string
	}{
		{"/daylog", web.CodeInvalidDate},
		{"/daylog?date=2025-13-01", web.CodeInvalidDate},
		{"/daylog?date=yesterday", web.CodeInvalidDate},
		{"/daylog?date=%202025-01-01", web.CodeInvalidDate},
		{"/overview", web.CodeInvalidRange},
		{"/overview?from=2025-09-20", web.CodeInvalidRange},
		{"/overview?from=2025-09-21&to=2025-09-20", web.CodeInvalidRange},
		{"/overview?from=2025-9-1&to=2025-09-20", web.CodeInvalidRange},
		{"/calendar.ics?from=2025-09-21&to=2025-09-20", web.CodeInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := decode[errorBody](t, rec)
			if body.Code != tt.code || body.Error == "" {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestOverview(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	id, _ := entry.NewID()
	w := entry.WorkEntry{
		ID: id, Title: "Planning",
		Start:     time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC),
		CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateWorkEntry(ctx, w); err != nil {
		t.Fatalf("CreateWorkEntry: %v", err)
	}
	h := newServer(t, store, web.Options{})

	rec := get(t, h, "/overview?from=2025-09-20&to=2025-09-20")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	want := `{"items":[{"kind":"work","id":"` + id + `","title":"Planning","dateISO":"2025-09-20","timeHHMM":"09:00"}]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s\nwant   %s", got, want)
	}

	rec = get(t, h, "/overview?from=2025-09-21&to=2025-09-21")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"items":[]}` {
		t.Errorf("empty range body = %s", got)
	}
}

func TestOwnerScope(t *testing.T) {
	store := setupStore(t)
	seedAnniversary(t, store, "alice")
	h := newServer(t, store, web.Options{UserHeader: "X-Forwarded-User"})

	count := func(user string) int {
		rec := get(t, h, "/daylog?date=2026-06-01", func(r *http.Request) {
			if user != "" {
				r.Header.Set("X-Forwarded-User", user)
			}
		})
		return len(decode[agenda.DayResponse](t, rec).Occurrences)
	}
	if n := count("alice"); n != 1 {
		t.Errorf("alice sees %d occurrences, want 1", n)
	}
	if n := count("bob"); n != 0 {
		t.Errorf("bob sees %d occurrences, want 0", n)
	}
	if n := count(""); n != 0 {
		t.Errorf("global scope sees %d occurrences, want 0", n)
	}
}

func TestBasicAuth(t *testing.T) {
	store := setupStore(t)
	seedAnniversary(t, store, "alice")
	h := newServer(t, store, web.Options{BasicAuthUser: "alice", BasicAuthPassword: "s3cret"})

	rec := get(t, h, "/daylog?date=2026-06-01")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no credentials: status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}

	rec = get(t, h, "/daylog?date=2026-06-01", func(r *http.Request) { r.SetBasicAuth("alice", "wrong") })
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", rec.Code)
	}

	rec = get(t, h, "/daylog?date=2026-06-01", func(r *http.Request) { r.SetBasicAuth("alice", "s3cret") })
	if rec.Code != http.StatusOK {
		t.Fatalf("good credentials: status = %d", rec.Code)
	}
	if n := len(decode[agenda.DayResponse](t, rec).Occurrences); n != 1 {
		t.Errorf("authenticated alice sees %d occurrences, want 1", n)
	}
}

func TestCalendar(t *testing.T) {
	store := setupStore(t)
	rule := seedAnniversary(t, store, "")
	h := newServer(t, store, web.Options{})

	rec := get(t, h, "/calendar.ics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "UID:" + rule.ID + "@daybook", "FREQ=YEARLY", "20250601"} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar missing %q:\n%s", want, body)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newServer(t, setupStore(t), web.Options{})
	req := httptest.NewRequest(http.MethodPost, "/overview?from=2025-01-01&to=2025-01-01", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /overview = %d, want 405", rec.Code)
	}
}
