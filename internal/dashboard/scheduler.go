package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/acumon/internal/model"
)

// Kind identifies a fetch kind.
type Kind int

// Fetch kinds.
const (
	KindLatest Kind = iota
	KindHistory
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindLatest:
		return "latest"
	case KindHistory:
		return "history"
	}
	return "unknown"
}

// DefaultInterval is the refresh cadence when none is configured.
const DefaultInterval = 5 * time.Minute

// Source is the backend the scheduler polls.
type Source interface {
	Latest(ctx context.Context) (*model.Snapshot, error)
	History(ctx context.Context) ([]model.HistoryRecord, error)
}

// LatestResult carries one latest-snapshot fetch outcome.
type LatestResult struct {
	Seq      uint64
	At       time.Time
	Snapshot *model.Snapshot
	Err      error
}

// HistoryResult carries one history fetch outcome.
type HistoryResult struct {
	Seq     uint64
	At      time.Time
	Records []model.HistoryRecord
	Err     error
}

// Scheduler runs both fetchers immediately and then on a fixed interval.
// Fetches run in their own goroutines and may overlap; results are handed to
// emit, which must forward them to the single goroutine that owns the View.
type Scheduler struct {
	src      Source
	interval time.Duration
	emit     func(any)
	log      zerolog.Logger
	now      func() time.Time

	seq      [numKinds]atomic.Uint64
	inflight sync.WaitGroup

	mu      sync.Mutex
	stopped bool // set once Run returns; no fetch starts after that
}

// NewScheduler creates a scheduler polling src every interval.
func NewScheduler(src Source, interval time.Duration, emit func(any), log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		src:      src,
		interval: interval,
		emit:     emit,
		log:      log,
		now:      time.Now,
	}
}

// Interval returns the refresh cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run fetches once and then on every tick until ctx is canceled. It waits
// for in-flight fetches before returning.
func (s *Scheduler) Run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.inflight.Wait()
	}()

	s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh starts one fetch of each kind without waiting for them. It does
// nothing once ctx is canceled or Run has returned.
func (s *Scheduler) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || ctx.Err() != nil {
		return
	}
	s.inflight.Add(2)
	go s.fetchLatest(ctx, s.seq[KindLatest].Add(1))
	go s.fetchHistory(ctx, s.seq[KindHistory].Add(1))
}

// Wait blocks until every started fetch has emitted its result.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

func (s *Scheduler) fetchLatest(ctx context.Context, seq uint64) {
	defer s.inflight.Done()

	snap, err := s.src.Latest(ctx)
	if err != nil {
		s.log.Error().Err(err).Stringer("kind", KindLatest).Uint64("seq", seq).Msg("fetch latest credit data")
	} else {
		s.log.Debug().Stringer("kind", KindLatest).Uint64("seq", seq).Bool("empty", snap.Empty()).Msg("fetched")
	}
	s.emit(LatestResult{Seq: seq, At: s.now(), Snapshot: snap, Err: err})
}

func (s *Scheduler) fetchHistory(ctx context.Context, seq uint64) {
	defer s.inflight.Done()

	records, err := s.src.History(ctx)
	if err != nil {
		s.log.Error().Err(err).Stringer("kind", KindHistory).Uint64("seq", seq).Msg("fetch usage history")
	} else {
		s.log.Debug().Stringer("kind", KindHistory).Uint64("seq", seq).Int("records", len(records)).Msg("fetched")
	}
	s.emit(HistoryResult{Seq: seq, At: s.now(), Records: records, Err: err})
}

// Apply routes a result emitted by a Scheduler to the matching View method.
// It reports whether the view changed.
func (v *View) Apply(msg any) bool {
	switch r := msg.(type) {
	case LatestResult:
		return v.ApplyLatest(r)
	case HistoryResult:
		return v.ApplyHistory(r)
	}
	return false
}
