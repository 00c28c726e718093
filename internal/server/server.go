package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Takenobou/class-calendar/internal/cache"
	"github.com/Takenobou/class-calendar/internal/calendar"
	"github.com/Takenobou/class-calendar/internal/config"
	"github.com/Takenobou/class-calendar/internal/schedule"
)

const (
	dateLayout    = "2006-01-02"
	cacheControl  = "public, max-age=300"
	noStore       = "no-store"
	uncachedParam = "uncached_for_tests"
	downloadName  = "calendar"
)

var (
	errInvalidDate         = errors.New("invalid calendar date")
	errScheduleUnavailable = errors.New("schedule unavailable")
	errRenderFailed        = errors.New("calendar render failed")
)

// Store abstracts schedule lookups for easier testing.
type Store interface {
	Occurrences(context.Context, schedule.Range) ([]schedule.Occurrence, error)
}

// CalendarBuilder abstracts grouping and rendering of the schedule.
type CalendarBuilder interface {
	Location() *time.Location
	Schedule([]schedule.Occurrence, time.Time) *calendar.Schedule
	Build(calendar.Format, *calendar.Schedule, calendar.Options) ([]byte, error)
}

// Server wires together HTTP endpoints, the schedule store, the calendar
// builder and the response cache.
type Server struct {
	cfg        config.Config
	store      Store
	calendar   CalendarBuilder
	cache      cache.Store
	logger     *slog.Logger
	metrics    *metrics
	httpServer *http.Server
}

// New prepares a Server for use. A nil cache falls back to an in-memory cache
// honouring cfg.CacheTTL.
func New(cfg config.Config, store Store, cal CalendarBuilder, c cache.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.NewMemory(cfg.CacheTTL)
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		calendar: cal,
		cache:    c,
		logger:   logger,
		metrics:  newMetrics(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.HandleFunc("GET /calendars", s.indexHandler)
	for _, f := range calendar.Formats() {
		mux.HandleFunc("GET /calendars."+f.String(), s.indexHandler)
	}
	mux.HandleFunc("GET /calendars/{date}", s.showHandler)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("listening", slog.String("addr", s.cfg.ListenAddr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// calendarRequest is the parsed form of a calendar URL.
type calendarRequest struct {
	format   calendar.Format
	day      time.Time
	brief    bool
	uncached bool
}

func (c calendarRequest) cacheKey() string {
	view, date := "full", "all"
	if !c.day.IsZero() {
		view, date = "day", c.day.Format(dateLayout)
	}
	key := fmt.Sprintf("%s:%s:%s", view, date, c.format)
	if c.brief {
		key += ":brief"
	}
	return key
}

func (c calendarRequest) filename() string {
	name := downloadName
	if !c.day.IsZero() {
		name += "-" + c.day.Format(dateLayout)
	}
	if c.brief {
		name += "-brief"
	}
	return name + "." + c.format.String()
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	ext := strings.TrimPrefix(path.Ext(r.URL.Path), ".")
	req, err := s.parseRequest(r, ext)
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}
	s.serveCalendar(w, r, req)
}

func (s *Server) showHandler(w http.ResponseWriter, r *http.Request) {
	raw, ext := calendar.SplitExtension(r.PathValue("date"))
	req, err := s.parseRequest(r, ext)
	if err != nil {
		s.respondBadRequest(w, err)
		return
	}

	day, err := time.ParseInLocation(dateLayout, raw, s.calendar.Location())
	if err != nil {
		s.respondBadRequest(w, fmt.Errorf("%w: %q", errInvalidDate, raw))
		return
	}
	req.day = day
	s.serveCalendar(w, r, req)
}

func (s *Server) parseRequest(r *http.Request, ext string) (calendarRequest, error) {
	values := r.URL.Query()
	name := ext
	if name == "" {
		name = values.Get("format")
	}
	format, err := calendar.ParseFormat(name)
	if err != nil {
		return calendarRequest{}, err
	}

	return calendarRequest{
		format:   format,
		brief:    format == calendar.FormatPDF && parseBool(values.Get("brief")),
		uncached: parseBool(values.Get(uncachedParam)),
	}, nil
}

func (s *Server) serveCalendar(w http.ResponseWriter, r *http.Request, req calendarRequest) {
	payload, err := s.render(r.Context(), req)
	if err != nil {
		s.respondRenderError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", req.format.ContentType())
	if req.format.Download() {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", req.filename()))
	}
	if req.uncached {
		w.Header().Set("Cache-Control", noStore)
	} else {
		w.Header().Set("Cache-Control", cacheControl)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		s.logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

// render returns the payload for req, consulting the response cache unless
// the request opts out of caching.
func (s *Server) render(ctx context.Context, req calendarRequest) ([]byte, error) {
	key := req.cacheKey()
	if !req.uncached {
		data, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		case ok:
			s.metrics.cacheHits.Inc()
			s.logger.Debug("cache hit", slog.String("key", key), slog.Int("bytes", len(data)))
			return data, nil
		}
		s.metrics.cacheMisses.Inc()
	}

	var rng schedule.Range
	if !req.day.IsZero() {
		rng = schedule.Day(req.day, s.calendar.Location())
	}

	start := time.Now()
	items, err := s.store.Occurrences(ctx, rng)
	if err != nil {
		s.metrics.storeFailures.Inc()
		return nil, fmt.Errorf("%w: %w", errScheduleUnavailable, err)
	}

	payload, err := s.calendar.Build(req.format, s.calendar.Schedule(items, req.day), calendar.Options{Brief: req.brief})
	if err != nil {
		s.metrics.renderFailures.WithLabelValues(req.format.String()).Inc()
		return nil, fmt.Errorf("%w: %w", errRenderFailed, err)
	}
	s.metrics.renders.WithLabelValues(req.format.String(), viewLabel(req)).Inc()
	s.metrics.renderDuration.WithLabelValues(req.format.String()).Observe(time.Since(start).Seconds())
	s.logger.Info("calendar rendered",
		slog.String("key", key),
		slog.Int("occurrences", len(items)),
		slog.Int("bytes", len(payload)),
		slog.Duration("took", time.Since(start)),
	)

	if !req.uncached {
		if err := s.cache.Set(ctx, key, payload); err != nil {
			s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return payload, nil
}

func (s *Server) respondBadRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, calendar.ErrUnsupportedFormat) {
		writeJSON(w, http.StatusNotAcceptable, map[string]string{"error": "unsupported_format"})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_date"})
}

func (s *Server) respondRenderError(w http.ResponseWriter, req calendarRequest, err error) {
	s.logger.Error("calendar unavailable",
		slog.String("format", req.format.String()),
		slog.String("error", err.Error()),
	)
	detail := "render_failed"
	if errors.Is(err, errScheduleUnavailable) {
		detail = "schedule_unavailable"
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": detail})
}

func viewLabel(req calendarRequest) string {
	if req.day.IsZero() {
		return "full"
	}
	return "day"
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
