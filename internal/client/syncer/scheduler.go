package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

// Prober reports whether the remote side is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// Runner performs one full sync.
type Runner interface {
	SyncNow(ctx context.Context) Outcome
}

const probeTimeout = 3 * time.Second

// Scheduler runs a sync right away and then on every tick, but only while
// the prober says the server is reachable.
type Scheduler struct {
	runner   Runner
	prober   Prober
	interval time.Duration
	logger   logging.Logger
	notify   chan string

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	online  bool

	// runMu is held for the whole of a run; paused counts open Pause calls.
	runMu  sync.Mutex
	paused int
}

func NewScheduler(runner Runner, prober Prober, interval time.Duration, logger logging.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		prober:   prober,
		interval: interval,
		logger:   logger,
		notify:   make(chan string, 16),
	}
}

// Notify delivers human-readable status lines. Lines are dropped when
// nobody reads them.
func (s *Scheduler) Notify() <-chan string {
	return s.notify
}

// Online reports the result of the last probe.
func (s *Scheduler) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop cancels the schedule and waits for a run in flight to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Pause waits for a run in flight and holds off new ones until the
// returned resume is called. Ticks that fall inside the pause are skipped.
func (s *Scheduler) Pause() (resume func()) {
	s.runMu.Lock()
	s.paused++
	s.runMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.runMu.Lock()
			s.paused--
			s.runMu.Unlock()
		})
	}
}

// RunOnce probes and, when online, syncs. It reports whether a sync ran.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.paused > 0 {
		s.logger.Debug(ctx, "sync paused")
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := s.prober.Ping(pctx)
	cancel()

	s.setOnline(err == nil)
	if err != nil {
		s.logger.Debug(ctx, "server unreachable, sync postponed", "error", err)
		return false
	}

	out := s.runner.SyncNow(ctx)
	s.logger.Info(ctx, "scheduled sync", "status", out.Status, "message", out.Message)
	s.publish(out.String())
	return true
}

func (s *Scheduler) setOnline(online bool) {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	s.mu.Unlock()

	if !changed {
		return
	}
	if online {
		s.publish("switched to online mode")
	} else {
		s.publish("switched to offline mode")
	}
}

func (s *Scheduler) publish(msg string) {
	select {
	case s.notify <- msg:
	default:
	}
}
