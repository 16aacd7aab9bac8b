// Package web serves the day log, overview and calendar feed over HTTP.
package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/ical"
	appLog "github.com/chris-regnier/daybook/internal/log"
	"github.com/chris-regnier/daybook/internal/storage"
)

// Error codes carried in error bodies.
const (
	CodeInvalidDate  = "INVALID_DATE"
	CodeInvalidRange = "INVALID_RANGE"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL"
)

// Options configures the server.
type Options struct {
	// BasicAuthUser and BasicAuthPassword enable HTTP Basic Auth on every
	// route except /health when both are set. The authenticated user
	// becomes the request owner.
	BasicAuthUser     string
	BasicAuthPassword string
	// UserHeader names a trusted header (e.g. X-Forwarded-User) carrying the
	// owner when basic auth is off. Empty means every request is global.
	UserHeader string
	// ExportPastDays and ExportFutureDays bound the work entries and todos
	// included in /calendar.ics around today. Rules are always included.
	ExportPastDays   int
	ExportFutureDays int
}

// Server provides the HTTP API.
type Server struct {
	svc  *agenda.Service
	opts Options
	mux  *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(svc *agenda.Service, opts Options) *Server {
	if opts.ExportPastDays <= 0 {
		opts.ExportPastDays = 90
	}
	if opts.ExportFutureDays <= 0 {
		opts.ExportFutureDays = 365
	}
	s := &Server{
		svc:  svc,
		opts: opts,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		h = s.basicAuthMiddleware(h)
	}
	return s.logMiddleware(h)
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		appLog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /daylog", s.handleDayLog)
	s.mux.HandleFunc("GET /overview", s.handleOverview)
	s.mux.HandleFunc("GET /calendar.ics", s.handleCalendar)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	return s.opts.BasicAuthUser != "" && s.opts.BasicAuthPassword != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.opts.BasicAuthUser
	password := s.opts.BasicAuthPassword

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="daybook", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// owner resolves the requesting user. Basic auth wins over the trusted
// header; no identity means the global scope.
func (s *Server) owner(r *http.Request) string {
	if s.basicAuthEnabled() {
		if u, _, ok := r.BasicAuth(); ok {
			return u
		}
	}
	if s.opts.UserHeader != "" {
		return r.Header.Get(s.opts.UserHeader)
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleDayLog returns the day log and occurrences for one date.
//
// GET /daylog?date=YYYY-MM-DD
func (s *Server) handleDayLog(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.Day(r.Context(), s.owner(r), r.URL.Query().Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agenda.NewDayResponse(detail))
}

// handleOverview returns the merged feed for an inclusive date range.
//
// GET /overview?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.svc.Overview(r.Context(), s.owner(r), q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agenda.NewOverviewResponse(items))
}

// handleCalendar serves the owner's rules, work entries and todos as an
// iCalendar feed. Optional from/to narrow the window for work entries and
// todos.
//
// GET /calendar.ics[?from=YYYY-MM-DD&to=YYYY-MM-DD]
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := s.owner(r)

	q := r.URL.Query()
	today := s.svc.Today()
	from, to := today.AddDays(-s.opts.ExportPastDays), today.AddDays(s.opts.ExportFutureDays)
	if q.Get("from") != "" || q.Get("to") != "" {
		var err error
		from, to, err = civil.ParseRange(q.Get("from"), q.Get("to"))
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
	}

	feed, err := s.svc.Feed(ctx, owner, from, to)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := ical.Write(&buf, feed); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, civil.ErrInvalidDate):
		return http.StatusBadRequest, CodeInvalidDate
	case errors.Is(err, civil.ErrInvalidRange):
		return http.StatusBadRequest, CodeInvalidRange
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		appLog.Error("request failed", err, "path", r.URL.Path)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}
