package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/monitoring"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type SweeperConfig struct {
	Interval        time.Duration // How often to sweep all events
	Concurrency     int           // Max event ticks running at once
	TickTimeout     time.Duration // Upper bound for one event tick
	ShutdownTimeout time.Duration // Max time to wait for running ticks on Stop
}

// Sweeper drives OfferCoordinator.Tick for every active event on a fixed
// cadence. Each event tick runs in its own goroutine so a slow booking call
// for one event does not delay the others.
type Sweeper struct {
	// Dependencies
	engine *QueueEngine
	coord  *OfferCoordinator
	l      logger.Logger

	cfg SweeperConfig

	// State management
	mu        sync.RWMutex
	isRunning bool
	startedAt time.Time
	stopCh    chan struct{}
	ticker    *time.Ticker
	wg        sync.WaitGroup
	group     *errgroup.Group

	inflightMu sync.Mutex
	inflight   map[string]struct{}

	// Stats
	lastSweep    time.Time
	eventsActive int
	errorCount   int64
}

func NewSweeper(engine *QueueEngine, coord *OfferCoordinator, l logger.Logger, cfg SweeperConfig) *Sweeper {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	g := &errgroup.Group{}
	g.SetLimit(cfg.Concurrency)

	return &Sweeper{
		engine:   engine,
		coord:    coord,
		l:        l,
		cfg:      cfg,
		group:    g,
		inflight: make(map[string]struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return errors.New("sweeper is already running")
	}

	s.l.Info(ctx, "Starting sweeper",
		"interval", s.cfg.Interval,
		"concurrency", s.cfg.Concurrency,
	)

	s.isRunning = true
	s.startedAt = time.Now()
	s.stopCh = make(chan struct{})
	s.ticker = time.NewTicker(s.cfg.Interval)

	s.wg.Add(1)
	go s.loop(ctx, s.stopCh, s.ticker)

	return nil
}

func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return errors.New("sweeper is not running")
	}

	s.l.Info(context.Background(), "Stopping sweeper...")

	close(s.stopCh)
	s.ticker.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		_ = s.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.l.Info(context.Background(), "Sweeper stopped gracefully")
	case <-time.After(s.cfg.ShutdownTimeout):
		s.l.Warn(context.Background(), "Sweeper shutdown timeout exceeded")
	}

	s.isRunning = false
	return nil
}

func (s *Sweeper) loop(ctx context.Context, stopCh <-chan struct{}, ticker *time.Ticker) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			s.l.Info(ctx, "Sweeper stopped due to context cancellation")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep schedules one tick for every event that has a waitlist or a live
// offer. Events whose previous tick is still running are skipped, as are
// events beyond the concurrency limit; both are picked up next time.
func (s *Sweeper) Sweep(ctx context.Context) int {
	events, err := s.engine.ActiveEvents(ctx)
	if err != nil {
		s.incrementErrorCount()
		s.l.Error(ctx, "Failed to list active events", "error", err)
		return 0
	}
	events = mergeEventIDs(events, s.coord.OfferedEvents())

	s.mu.Lock()
	s.lastSweep = time.Now()
	s.eventsActive = len(events)
	s.mu.Unlock()

	scheduled := 0
	for _, eventID := range events {
		eventID := eventID
		if !s.claim(eventID) {
			continue
		}

		started := s.group.TryGo(func() error {
			defer s.release(eventID)
			s.tick(ctx, eventID)
			return nil
		})
		if !started {
			s.release(eventID)
			continue
		}
		scheduled++
	}

	return scheduled
}

func (s *Sweeper) tick(ctx context.Context, eventID string) {
	ctx = s.l.WithFields(ctx, "event_id", eventID)
	tickCtx, cancel := context.WithTimeout(ctx, s.cfg.TickTimeout)
	defer cancel()

	start := time.Now()
	err := s.coord.Tick(tickCtx, eventID)
	monitoring.ObserveSweep(time.Since(start))

	if err != nil {
		s.incrementErrorCount()
		s.l.Error(ctx, "Failed to tick event", "error", err)
	}
}

// Wait blocks until every scheduled tick has returned.
func (s *Sweeper) Wait() {
	_ = s.group.Wait()
}

func (s *Sweeper) claim(eventID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if _, busy := s.inflight[eventID]; busy {
		return false
	}
	s.inflight[eventID] = struct{}{}
	return true
}

func (s *Sweeper) release(eventID string) {
	s.inflightMu.Lock()
	delete(s.inflight, eventID)
	s.inflightMu.Unlock()
}

func (s *Sweeper) incrementErrorCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorCount++
}

func (s *Sweeper) Status() SweeperStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SweeperStatus{
		IsRunning:    s.isRunning,
		StartedAt:    s.startedAt,
		LastSweep:    s.lastSweep,
		EventsActive: s.eventsActive,
		ErrorCount:   s.errorCount,
	}
}

func mergeEventIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, ids := range [][]string{a, b} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
