package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"timeful/internal/config"
	"timeful/internal/dow"
	appLog "timeful/internal/log"
	"timeful/internal/model"
	"timeful/internal/overlay"
	"timeful/internal/tracing"
	"timeful/internal/tz"
	"timeful/internal/validate"
)

const (
	busyCacheTTL = 30 * time.Second

	// maxBodyBytes bounds request bodies of the POST endpoints.
	maxBodyBytes = 1 << 20

	headerRequestID = "X-Request-ID"
)

// Server provides the HTTP API over the overlay engine and the recurring
// availability validator.
type Server struct {
	cfg  *config.Config
	week *dow.CanonicalWeek
	busy overlay.BusyFetcher
	mux  *http.ServeMux

	// now is the clock used for recurring week selection and cache expiry.
	now func() time.Time

	// In-memory cache of fetched busy intervals, keyed by range, so repeated
	// renders of the same event do not refetch every feed.
	busyMu    sync.Mutex
	busyCache map[busyKey]busyEntry
}

type busyKey struct {
	timeMin int64
	timeMax int64
}

type busyEntry struct {
	blocks    []model.TimeBlock
	updatedAt time.Time
}

// NewServer constructs a new Server. busy may be nil, in which case the
// endpoints that need calendar data answer 503.
func NewServer(cfg *config.Config, week *dow.CanonicalWeek, busy overlay.BusyFetcher) *Server {
	if week == nil {
		week = dow.DefaultCanonicalWeek()
	}

	s := &Server{
		cfg:       cfg,
		week:      week,
		busy:      busy,
		mux:       http.NewServeMux(),
		now:       time.Now,
		busyCache: make(map[busyKey]busyEntry),
	}
	s.registerRoutes()

	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}

	return otelhttp.NewHandler(requestIDMiddleware(h), "timeful-api")
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendars", s.handleCalendars)
	s.mux.HandleFunc("POST /api/events/split", s.handleSplit)
	s.mux.HandleFunc("POST /api/dow/validate", s.handleValidateDOW)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}

	// An empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="timeful", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every response with a request id, reusing the
// caller's when one is sent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)

		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", id,
			"trace_id", tracing.TraceID(r.Context()),
		)
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCalendars returns the busy intervals of every configured calendar.
//
// GET /api/calendars?timeMin=2024-01-08T00:00:00Z&timeMax=2024-01-15T00:00:00Z
func (s *Server) handleCalendars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	timeMin, errMin := time.Parse(time.RFC3339, q.Get("timeMin"))
	if errMin != nil {
		writeError(w, http.StatusBadRequest, "timeMin must be an RFC3339 timestamp")
		return
	}

	timeMax, errMax := time.Parse(time.RFC3339, q.Get("timeMax"))
	if errMax != nil {
		writeError(w, http.StatusBadRequest, "timeMax must be an RFC3339 timestamp")
		return
	}

	if !timeMax.After(timeMin) {
		writeError(w, http.StatusBadRequest, "timeMax must be after timeMin")
		return
	}

	if s.busy == nil {
		writeError(w, http.StatusServiceUnavailable, "no calendar source configured")
		return
	}

	blocks, err := s.FetchBusyIntervals(r.Context(), timeMin.UTC(), timeMax.UTC())
	if err != nil {
		appLog.Error("api calendars: fetch failed", err, "request_id", w.Header().Get(headerRequestID))
		writeError(w, http.StatusBadGateway, "failed to fetch calendars")
		return
	}

	if blocks == nil {
		blocks = []model.TimeBlock{}
	}

	writeJSON(w, http.StatusOK, blocks)
}

// splitRequest is the JSON body of /api/events/split. TimeBlocks left out
// (or null) are fetched from the configured calendars.
type splitRequest struct {
	Event      *model.Event      `json:"event"`
	TimeBlocks []model.TimeBlock `json:"timeBlocks"`
	WeekOffset int               `json:"weekOffset"`
	Timezone   *model.Timezone   `json:"timezone"`
}

// handleSplit lays busy intervals out over the day windows of an event.
//
// POST /api/events/split
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Event == nil {
		writeError(w, http.StatusBadRequest, "event is required")
		return
	}

	now := s.now()

	pref := req.Timezone
	if pref.IsZero() && s.cfg != nil {
		pref = &s.cfg.Timezone
	}

	zone := tz.Resolve(pref, now)

	opts := overlay.Options{
		WeekOffset:     req.WeekOffset,
		TimezoneOffset: zone.OffsetMinutes,
		Now:            now,
		Week:           s.week,
	}

	var (
		result *overlay.Result
		err    error
	)

	if req.TimeBlocks != nil {
		result, err = splitGiven(req.Event, req.TimeBlocks, opts)
	} else {
		if s.busy == nil {
			writeError(w, http.StatusServiceUnavailable, "no calendar source configured")
			return
		}

		result, err = overlay.Overlay(r.Context(), req.Event, s, opts)
	}

	if err != nil {
		if isInputError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		appLog.Error("api split: overlay failed", err, "request_id", w.Header().Get(headerRequestID))
		writeError(w, http.StatusBadGateway, "failed to fetch calendars")
		return
	}

	appLog.Debug("api split",
		"type", string(req.Event.Type),
		"days", len(result.TimeBlocksByDay),
		"timezone_offset", zone.OffsetMinutes,
	)

	writeJSON(w, http.StatusOK, result)
}

func splitGiven(event *model.Event, blocks []model.TimeBlock, opts overlay.Options) (*overlay.Result, error) {
	timeMin, timeMax, errRange := overlay.FetchRange(event, opts.WeekOffset, opts.Now, opts.Week)
	if errRange != nil {
		return nil, errRange
	}

	byDay, errSplit := overlay.SplitTimeBlocksByDay(event, blocks, opts)
	if errSplit != nil {
		return nil, errSplit
	}

	return &overlay.Result{
			TimeMin:         timeMin,
			TimeMax:         timeMax,
			TimeBlocksByDay: byDay,
		},
		nil
}

// handleValidateDOW checks a recurring availability submission.
//
// POST /api/dow/validate?skipSameDayCheck=true
func (s *Server) handleValidateDOW(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.ParseBool(r.URL.Query().Get("skipSameDayCheck"))

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if res := validate.ValidateDOWPayloadJSON(raw, s.week, skip); res != nil {
		appLog.Debug("api dow validate: rejected", "index", res.Index, "error", res.Error)
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// FetchBusyIntervals serves busy intervals through the in-memory cache.
func (s *Server) FetchBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]model.TimeBlock, error) {
	key := busyKey{timeMin: timeMin.UnixMilli(), timeMax: timeMax.UnixMilli()}
	now := s.now()

	s.busyMu.Lock()
	entry, ok := s.busyCache[key]
	s.busyMu.Unlock()

	if ok && now.Sub(entry.updatedAt) < busyCacheTTL {
		return entry.blocks, nil
	}

	blocks, err := s.busy.FetchBusyIntervals(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}

	s.busyMu.Lock()
	for k, e := range s.busyCache {
		if now.Sub(e.updatedAt) >= busyCacheTTL {
			delete(s.busyCache, k)
		}
	}
	s.busyCache[key] = busyEntry{blocks: blocks, updatedAt: now}
	s.busyMu.Unlock()

	return blocks, nil
}

func isInputError(err error) bool {
	var (
		errValidation goerrors.ErrValidation
		errNil        goerrors.ErrNilInput
	)

	return errors.As(err, &errValidation) || errors.As(err, &errNil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
