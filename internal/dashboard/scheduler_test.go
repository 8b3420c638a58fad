package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/acumon/internal/model"
)

type fakeSource struct {
	latestCalls  atomic.Int32
	historyCalls atomic.Int32
	latestErr    error
	historyErr   error
}

func (f *fakeSource) Latest(context.Context) (*model.Snapshot, error) {
	f.latestCalls.Add(1)
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return &model.Snapshot{AvailableACUs: model.StringField("42")}, nil
}

func (f *fakeSource) History(context.Context) ([]model.HistoryRecord, error) {
	f.historyCalls.Add(1)
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []model.HistoryRecord{{SessionName: model.StringField("s1")}}, nil
}

type collector struct {
	mu   sync.Mutex
	msgs []any
}

func (c *collector) emit(msg any) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *collector) snapshot() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.msgs...)
}

func TestRefreshRunsBothFetchers(t *testing.T) {
	src := &fakeSource{}
	var c collector
	s := NewScheduler(src, time.Hour, c.emit, zerolog.Nop())

	s.Refresh(context.Background())
	s.Wait()

	msgs := c.snapshot()
	if len(msgs) != 2 {
		t.Fatalf("got %d results, want 2", len(msgs))
	}
	var sawLatest, sawHistory bool
	for _, m := range msgs {
		switch r := m.(type) {
		case LatestResult:
			sawLatest = true
			if r.Seq != 1 || r.Err != nil {
				t.Errorf("latest result = %+v", r)
			}
		case HistoryResult:
			sawHistory = true
			if r.Seq != 1 || len(r.Records) != 1 {
				t.Errorf("history result = %+v", r)
			}
		}
	}
	if !sawLatest || !sawHistory {
		t.Fatalf("missing result kinds: latest=%v history=%v", sawLatest, sawHistory)
	}
}

func TestRefreshSequencesIncrease(t *testing.T) {
	src := &fakeSource{}
	var c collector
	s := NewScheduler(src, time.Hour, c.emit, zerolog.Nop())

	s.Refresh(context.Background())
	s.Refresh(context.Background())
	s.Wait()

	seen := map[uint64]bool{}
	for _, m := range c.snapshot() {
		if r, ok := m.(LatestResult); ok {
			seen[r.Seq] = true
		}
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("latest seqs = %v, want 1 and 2", seen)
	}
}

func TestFetchErrorsAreEmitted(t *testing.T) {
	src := &fakeSource{latestErr: errors.New("down"), historyErr: errors.New("down")}
	var c collector
	s := NewScheduler(src, time.Hour, c.emit, zerolog.Nop())

	s.Refresh(context.Background())
	s.Wait()

	v := NewView()
	for _, m := range c.snapshot() {
		v.Apply(m)
	}
	if v.Summary.Available != ErrorText {
		t.Errorf("Available = %q, want Error", v.Summary.Available)
	}
	if v.Chart() != nil {
		t.Error("chart should not exist after failed history")
	}
	if v.LastErr == nil {
		t.Error("LastErr not set")
	}
}

func TestRunTicksUntilCanceled(t *testing.T) {
	src := &fakeSource{}
	var c collector
	s := NewScheduler(src, 10*time.Millisecond, c.emit, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for src.latestCalls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d latest fetches before deadline", src.latestCalls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if src.historyCalls.Load() < 3 {
		t.Errorf("history fetches = %d, want >= 3", src.historyCalls.Load())
	}
}

func TestDefaultInterval(t *testing.T) {
	s := NewScheduler(&fakeSource{}, 0, func(any) {}, zerolog.Nop())
	if s.Interval() != 5*time.Minute {
		t.Fatalf("Interval() = %v, want 5m", s.Interval())
	}
}

// blockingSource holds Latest until release is closed.
type blockingSource struct {
	fakeSource
	release chan struct{}
}

func (b *blockingSource) Latest(ctx context.Context) (*model.Snapshot, error) {
	<-b.release
	return b.fakeSource.Latest(ctx)
}

func TestFetchersRunConcurrently(t *testing.T) {
	src := &blockingSource{release: make(chan struct{})}
	history := make(chan HistoryResult, 1)
	var c collector
	emit := func(msg any) {
		c.emit(msg)
		if r, ok := msg.(HistoryResult); ok {
			history <- r
		}
	}
	s := NewScheduler(src, time.Hour, emit, zerolog.Nop())

	s.Refresh(context.Background())

	select {
	case r := <-history:
		if r.Err != nil {
			t.Fatalf("history error: %v", r.Err)
		}
	case <-time.After(2 * time.Second):
		close(src.release)
		t.Fatal("history result not emitted while latest was blocked")
	}
	if n := len(c.snapshot()); n != 1 {
		t.Fatalf("got %d results while latest was blocked, want 1", n)
	}

	close(src.release)
	s.Wait()

	if n := len(c.snapshot()); n != 2 {
		t.Fatalf("got %d results after release, want 2", n)
	}
}

func TestRefreshAfterCancelDoesNothing(t *testing.T) {
	src := &fakeSource{}
	var c collector
	s := NewScheduler(src, time.Hour, c.emit, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Refresh(ctx)
	s.Wait()
	if n := len(c.snapshot()); n != 0 {
		t.Fatalf("canceled refresh emitted %d results", n)
	}

	// Once Run has returned, even a live context starts nothing.
	s.Run(ctx)
	s.Refresh(context.Background())
	s.Wait()
	if n := src.latestCalls.Load(); n != 0 {
		t.Fatalf("latest fetched %d times after Run returned", n)
	}
}
