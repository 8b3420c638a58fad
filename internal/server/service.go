// Package server provides the credit backend: the HTTP API the dashboard
// polls and the scrape loop that feeds it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/acumon/internal/metrics"
	"github.com/theirongolddev/acumon/internal/model"
	"github.com/theirongolddev/acumon/internal/store"
)

const maxRecordBytes = 1 << 20

// Scraper reads one fresh snapshot.
type Scraper interface {
	Scrape(ctx context.Context) (model.Snapshot, error)
}

// Publisher forwards a stored record elsewhere.
type Publisher interface {
	Publish(raw json.RawMessage) error
}

// Config controls the backend runtime behavior.
type Config struct {
	Addr           string
	ScrapeInterval time.Duration // zero disables the scrape loop
	EventsBuffer   int
}

// Event is emitted whenever a record is stored.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Record    json.RawMessage `json:"record"`
}

// Status is served at /api/status.
type Status struct {
	StartedAt         time.Time `json:"started_at"`
	LastScrapeAt      time.Time `json:"last_scrape_at"`
	ScrapeIntervalSec int       `json:"scrape_interval_sec"`
	ScrapeCount       int64     `json:"scrape_count"`
	Records           int       `json:"records"`
	LastError         string    `json:"last_error,omitempty"`
	EventCount        int       `json:"event_count"`
	SubscriberCount   int       `json:"subscriber_count"`
}

// Service provides the backend runtime and HTTP API.
type Service struct {
	cfg     Config
	store   *store.Store
	scraper Scraper
	pub     Publisher
	log     zerolog.Logger

	mu           sync.RWMutex
	startedAt    time.Time
	lastScrapeAt time.Time
	scrapeCount  int64
	lastError    string
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a backend serving records from st.
func New(cfg Config, st *store.Store, log zerolog.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:5000"
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       log.With().Str("component", "server").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// WithScraper enables ScrapeOnce and the scrape loop.
func (s *Service) WithScraper(sc Scraper) *Service {
	s.scraper = sc
	return s
}

// WithPublisher forwards every stored record to p.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.pub = p
	return s
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/latest-credit-data", metrics.Instrument("latest-credit-data", s.handleLatest))
	mux.HandleFunc("GET /api/credit-data", metrics.Instrument("credit-data", s.handleAll))
	mux.HandleFunc("GET /api/usage-history", metrics.Instrument("usage-history", s.handleAll))
	mux.HandleFunc("POST /api/credit-data", metrics.Instrument("record", s.handleRecord))
	mux.HandleFunc("GET /api/status", metrics.Instrument("status", s.handleStatus))
	mux.HandleFunc("GET /api/events", metrics.Instrument("events", s.handleEvents))
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// Run serves the API and, when a scraper is set, scrapes once immediately
// and then on every tick until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		// Streams end when the service stops.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("serving credit API")

	var tick <-chan time.Time
	if s.scraper != nil && s.cfg.ScrapeInterval > 0 {
		// Seed a record so the dashboard has data immediately.
		_ = s.ScrapeOnce(ctx)

		ticker := time.NewTicker(s.cfg.ScrapeInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-tick:
			_ = s.ScrapeOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("credit api server: %w", err)
		}
	}
}

// ScrapeOnce runs the scraper and stores its snapshot.
func (s *Service) ScrapeOnce(ctx context.Context) error {
	if s.scraper == nil {
		return errors.New("no scraper configured")
	}

	start := time.Now()
	snap, err := s.scraper.Scrape(ctx)
	metrics.ScrapeDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		var raw []byte
		raw, err = json.Marshal(snap)
		if err == nil {
			_, err = s.Record(raw)
		}
	}

	s.mu.Lock()
	s.lastScrapeAt = time.Now()
	s.scrapeCount++
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		metrics.ScrapesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		s.log.Error().Err(err).Msg("scrape failed")
		return err
	}
	metrics.ScrapesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Dur("took", time.Since(start)).Msg("scrape completed")
	return nil
}

// Record stores raw, publishes it and notifies stream subscribers.
func (s *Service) Record(raw json.RawMessage) (int64, error) {
	id, err := s.store.Append(raw)
	if err != nil {
		return 0, err
	}
	metrics.SnapshotsRecorded.Inc()

	if s.pub != nil {
		if err := s.pub.Publish(raw); err != nil {
			metrics.PublishErrors.Inc()
			s.log.Warn().Err(err).Int64("id", id).Msg("publish failed")
		}
	}

	s.publishEvent(raw)
	return id, nil
}

func (s *Service) publishEvent(raw json.RawMessage) {
	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      "record",
		Timestamp: time.Now(),
		Record:    raw,
	}
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
	records, err := s.store.Count()
	if err != nil {
		s.log.Warn().Err(err).Msg("counting records")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:         s.startedAt,
		LastScrapeAt:      s.lastScrapeAt,
		ScrapeIntervalSec: int(s.cfg.ScrapeInterval.Seconds()),
		ScrapeCount:       s.scrapeCount,
		Records:           records,
		LastError:         s.lastError,
		EventCount:        len(s.events),
		SubscriberCount:   len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleLatest(w http.ResponseWriter, _ *http.Request) {
	raw, err := s.store.Latest()
	if err != nil {
		s.log.Error().Err(err).Msg("loading latest record")
		http.Error(w, "loading latest record", http.StatusInternalServerError)
		return
	}
	if raw == nil {
		raw = json.RawMessage(`{}`)
	}
	writeJSON(w, http.StatusOK, raw)
}

func (s *Service) handleAll(w http.ResponseWriter, _ *http.Request) {
	records, err := s.store.All()
	if err != nil {
		s.log.Error().Err(err).Msg("loading records")
		http.Error(w, "loading records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Service) handleRecord(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBytes))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	id, err := s.Record(body)
	switch {
	case errors.Is(err, store.ErrNotObject):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error().Err(err).Msg("recording")
		http.Error(w, "storing record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
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

	// Send the current record immediately.
	if raw, err := s.store.Latest(); err == nil && raw != nil {
		writeSSE(w, Event{Type: "snapshot", Timestamp: time.Now(), Record: raw})
	}
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

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	metrics.StreamSubscribers.Inc()
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	metrics.StreamSubscribers.Dec()
}
