// Package scheduler implements the Background Scheduler (spec §4.7): it
// runs BackgroundTasks on their own cadence, independent of the main
// sense-fuse-decide-act tick, and separately ticks any registered
// Connector that also implements dispatcher.Ticker at the interval given to
// AddConnectorTicker (once every 60s by default). Grounded on the teacher's
// cron.Scheduler (internal/cron/scheduler.go): functional options, a
// mutex-guarded task/job list, and a single driving loop per unit of work
// — replacing the teacher's time.Ticker polling loop with
// stopsignal.StopSignal-bound cooperative sleeps so shutdown is immediate
// rather than bounded by the next tick.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/windlgrass/om1agent/internal/dispatcher"
	"github.com/windlgrass/om1agent/internal/errtax"
	"github.com/windlgrass/om1agent/internal/stopsignal"
)

// DefaultConnectorTickInterval is used when AddConnectorTicker is given a
// zero or negative interval. No per-connector tick rate is read from the
// configuration; cmd/om1agent passes this value for every connector.
const DefaultConnectorTickInterval = 60 * time.Second

// BackgroundTask is one independently scheduled unit of work (spec's
// "backgrounds" top-level config key — e.g. the teleops-status reporter or
// the approaching-person watcher, SPEC_FULL.md's supplemented features).
type BackgroundTask interface {
	Name() string
	Run(ctx context.Context) error
}

type entry struct {
	task     BackgroundTask
	interval time.Duration
	cronExpr cron.Schedule
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger overrides the scheduler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the scheduler's clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// Scheduler drives BackgroundTasks and connector Tick() calls on
// independent cadences, all bound to one shared StopSignal.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tickers map[string]dispatcher.Ticker
	stop    *stopsignal.StopSignal
	logger  *slog.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// New creates a Scheduler bound to stop; Run starts the goroutines and
// returns once they have all exited.
func New(stop *stopsignal.StopSignal, opts ...Option) *Scheduler {
	s := &Scheduler{
		tickers: make(map[string]dispatcher.Ticker),
		stop:    stop,
		logger:  slog.Default().With("component", "scheduler"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask registers a task to run every interval, starting immediately.
func (s *Scheduler) AddTask(task BackgroundTask, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.mu.Lock()
	s.entries = append(s.entries, &entry{task: task, interval: interval})
	s.mu.Unlock()
}

// AddCronTask registers a task on a standard five-field cron expression
// (spec's original-source-only "backgrounds[].schedule" field, supplemented
// here because a cron-backed cadence gives operators a more precise
// schedule than a flat interval for things like a once-daily report).
func (s *Scheduler) AddCronTask(task BackgroundTask, cronExpr string) error {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return errtax.NewConfigError("scheduler", fmt.Errorf("parse cron expression %q: %w", cronExpr, err))
	}
	s.mu.Lock()
	s.entries = append(s.entries, &entry{task: task, cronExpr: schedule})
	s.mu.Unlock()
	return nil
}

// AddConnectorTicker registers a dispatcher connector for periodic Tick
// calls, independent of action dispatch.
func (s *Scheduler) AddConnectorTicker(name string, t dispatcher.Ticker, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultConnectorTickInterval
	}
	s.mu.Lock()
	s.tickers[name] = t
	s.mu.Unlock()
	s.AddTask(tickerTask{name: name, ticker: t}, interval)
}

// Run starts one goroutine per registered task/ticker and blocks until
// every goroutine has returned, which happens once the StopSignal fires or
// ctx is done. With nothing registered it returns at once.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	entries := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range entries {
		s.wg.Add(1)
		go s.driveTask(ctx, e)
	}
	s.wg.Wait()
}

func (s *Scheduler) driveTask(ctx context.Context, e *entry) {
	defer s.wg.Done()
	for {
		s.runOnce(ctx, e.task)

		var wait time.Duration
		if e.cronExpr != nil {
			wait = time.Until(e.cronExpr.Next(s.now()))
			if wait < 0 {
				wait = 0
			}
		} else {
			wait = e.interval
		}

		if !s.stop.Sleep(ctx, wait) {
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task BackgroundTask) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler: task panicked, isolated", "task", task.Name(), "panic", r)
		}
	}()
	if err := task.Run(ctx); err != nil {
		s.logger.Error("scheduler: task run failed", "task", task.Name(), "error", errtax.Classify(task.Name(), err))
	}
}

// tickerTask adapts a dispatcher.Ticker to BackgroundTask so it can share
// the same cooperative-sleep worker loop as any other background task.
type tickerTask struct {
	name   string
	ticker dispatcher.Ticker
}

func (t tickerTask) Name() string                  { return t.name + ":tick" }
func (t tickerTask) Run(ctx context.Context) error { return t.ticker.Tick(ctx) }
