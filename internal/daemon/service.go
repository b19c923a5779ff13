// Package daemon serves the projection over HTTP and streams an event
// whenever the store changes.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/calendar"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/pipeline"
)

// Source is where the service reads state from. *store.Store satisfies it.
type Source interface {
	Revision() (int64, error)
	Load(defaults model.State) (model.State, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	Stride       int
	StorePath    string
	Defaults     model.State
	Now          func() time.Time
}

// Projection is a compact view of one recomputation.
type Projection struct {
	At              time.Time           `json:"at"`
	Revision        int64               `json:"revision"`
	Year            int                 `json:"year"`
	InitialBalance  decimal.Decimal     `json:"initial_balance"`
	YearEndForecast decimal.Decimal     `json:"year_end_forecast"`
	YearEndReal     decimal.Decimal     `json:"year_end_real"`
	YearEndDelta    decimal.Decimal     `json:"year_end_delta"`
	Today           string              `json:"today,omitempty"`
	CurrentDelta    decimal.NullDecimal `json:"current_delta"`
	Rules           int                 `json:"rules"`
	Events          int                 `json:"events"`
	Movements       int                 `json:"movements"`
}

// Change captures how a projection moved since the previous one.
type Change struct {
	YearEndForecast decimal.Decimal `json:"year_end_forecast"`
	YearEndReal     decimal.Decimal `json:"year_end_real"`
	CurrentDelta    decimal.Decimal `json:"current_delta"`
}

func (c Change) isZero() bool {
	return c.YearEndForecast.IsZero() && c.YearEndReal.IsZero() && c.CurrentDelta.IsZero()
}

// Event is emitted whenever a recomputation changes the projection.
type Event struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Timestamp  time.Time  `json:"timestamp"`
	Projection Projection `json:"projection"`
	Change     Change     `json:"change"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time  `json:"started_at"`
	LastPollAt      time.Time  `json:"last_poll_at"`
	PollIntervalMS  int64      `json:"poll_interval_ms"`
	PollCount       int64      `json:"poll_count"`
	StorePath       string     `json:"store_path,omitempty"`
	Projection      Projection `json:"projection"`
	LastError       string     `json:"last_error,omitempty"`
	EventCount      int        `json:"event_count"`
	SubscriberCount int        `json:"subscriber_count"`
}

// PointJSON is one day of /v1/points.
type PointJSON struct {
	Day      int             `json:"day"`
	Date     string          `json:"date"`
	Forecast decimal.Decimal `json:"forecast"`
	Real     decimal.Decimal `json:"real"`
	Delta    decimal.Decimal `json:"delta"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	src Source
	log zerolog.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastPollAt    time.Time
	pollCount     int64
	lastError     string
	lastRevision  int64
	hasProjection bool
	projection    Projection
	state         model.State
	result        pipeline.Result
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading from src.
func New(src Source, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Interval < 100*time.Millisecond {
		cfg.Interval = 2 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Stride < 1 {
		cfg.Stride = pipeline.DefaultStride
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		log:       logger,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Router returns the HTTP API.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/feed", s.handleFeed)
		r.Get("/points", s.handlePoints)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("starting feed server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed the projection so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("shutdown initiated")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				s.log.Error().Err(err).Msg("graceful shutdown failed")
				return server.Close()
			}
			return nil
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("feed server: %w", err)
		}
	}
}

// pollOnce recomputes the projection when the store revision moved, and
// re-derives the current-day delta from the cached result when only the
// date moved.
func (s *Service) pollOnce() {
	now := s.cfg.Now()

	rev, err := s.src.Revision()
	if err != nil {
		s.recordError(now, fmt.Errorf("reading revision: %w", err))
		return
	}

	s.mu.RLock()
	unchanged := s.hasProjection && rev == s.lastRevision
	var (
		st  model.State
		res pipeline.Result
	)
	if unchanged {
		st, res = s.state, s.result
	}
	stale := unchanged && s.projection.Today != todayKey(res, now)
	s.mu.RUnlock()
	if unchanged && !stale {
		s.mu.Lock()
		s.lastPollAt = now
		s.pollCount++
		s.lastError = ""
		s.mu.Unlock()
		return
	}

	if !unchanged {
		st, err = s.src.Load(s.cfg.Defaults)
		if err != nil {
			s.recordError(now, fmt.Errorf("loading state: %w", err))
			return
		}
		res, err = pipeline.Run(st)
		if err != nil {
			s.recordError(now, err)
			return
		}
	}
	proj := projectionOf(st, res, rev, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev, prevExists := s.projection, s.hasProjection
	s.hasProjection = true
	s.projection = proj
	s.state = st
	s.result = res
	s.lastRevision = rev
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	change := diffProjections(prev, proj)
	if !prevExists || !change.isZero() {
		s.nextEventID++
		ev = Event{
			ID:         s.nextEventID,
			Type:       "projection",
			Timestamp:  now,
			Projection: proj,
			Change:     change,
		}
		if !prevExists {
			ev.Change = Change{}
		}
		publish = true
	}
	s.mu.Unlock()

	s.log.Debug().Int64("revision", rev).Bool("rolled_day", stale).Bool("published", publish).Msg("projection recomputed")
	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) recordError(now time.Time, err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = now
	s.pollCount++
	s.mu.Unlock()
	s.log.Warn().Err(err).Msg("poll failed")
}

func projectionOf(st model.State, res pipeline.Result, rev int64, now time.Time) Projection {
	last := res.Last()
	p := Projection{
		At:              now,
		Revision:        rev,
		Year:            res.Year,
		InitialBalance:  st.InitialBalance,
		YearEndForecast: last.Forecast,
		YearEndReal:     last.Real,
		YearEndDelta:    last.Delta(),
		Rules:           len(st.MonthlyRules),
		Events:          len(st.PlannedEvents),
		Movements:       len(st.RealMovements),
	}
	if delta, ok := pipeline.CurrentDelta(res.Points, res.Year, now); ok {
		p.Today = model.DateOf(now).String()
		p.CurrentDelta = decimal.NewNullDecimal(delta)
	}
	return p
}

// todayKey is the Projection.Today value for now: the date when now falls in
// the projected year, empty otherwise.
func todayKey(res pipeline.Result, now time.Time) string {
	if _, ok := res.Today(now); !ok {
		return ""
	}
	return model.DateOf(now).String()
}

func diffProjections(prev, curr Projection) Change {
	return Change{
		YearEndForecast: curr.YearEndForecast.Sub(prev.YearEndForecast),
		YearEndReal:     curr.YearEndReal.Sub(prev.YearEndReal),
		CurrentDelta:    curr.CurrentDelta.Decimal.Sub(prev.CurrentDelta.Decimal),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalMS:  s.cfg.Interval.Milliseconds(),
		PollCount:       s.pollCount,
		StorePath:       s.cfg.StorePath,
		Projection:      s.projection,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

// currentResult returns the latest recomputation, or false before the first
// successful poll.
func (s *Service) currentResult() (pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.hasProjection
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleFeed(w http.ResponseWriter, r *http.Request) {
	res, ok := s.currentResult()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no projection yet")
		return
	}
	stride, err := intParam(r, "stride", s.cfg.Stride)
	if err != nil || stride < 1 {
		writeError(w, http.StatusBadRequest, "stride must be a positive integer")
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Feed(res.Points, stride))
}

func (s *Service) handlePoints(w http.ResponseWriter, r *http.Request) {
	res, ok := s.currentResult()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no projection yet")
		return
	}
	total := calendar.DaysInYear(res.Year)
	from, err := intParam(r, "from", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be a day number")
		return
	}
	to, err := intParam(r, "to", total)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be a day number")
		return
	}
	if from < 1 || to > total || from > to {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("day range must satisfy 1 <= from <= to <= %d", total))
		return
	}

	window := pipeline.Window(res.Points, from, to)
	out := make([]PointJSON, len(window))
	for i, p := range window {
		out[i] = PointJSON{
			Day:      p.Day,
			Date:     p.Date.Format(model.DateLayout),
			Forecast: p.Forecast,
			Real:     p.Real,
			Delta:    p.Delta(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)
	zerolog.Ctx(r.Context()).Debug().Int("subscriber", id).Msg("stream opened")

	// Send the current projection immediately.
	writeSSE(w, Event{
		Type:       "snapshot",
		Timestamp:  s.cfg.Now(),
		Projection: s.snapshotStatus().Projection,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
