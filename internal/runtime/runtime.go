// Package runtime assembles the Plugin Loader, Input Orchestrator, Fuser,
// LLM Adapter, Action Dispatcher, and Background Scheduler into the
// sense-fuse-decide-act tick loop described in spec §2: each tick the
// Fuser reads the latest formatted buffer from every sensor, concatenates
// it with the action catalog into a prompt, hands the prompt to the LLM
// Adapter, and forwards every returned Action to the Dispatcher. Sensors,
// the Scheduler, and per-connector ticks all run on independent
// goroutines for the lifetime of the process; Run blocks until the
// runtime's StopSignal fires.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/windlgrass/om1agent/internal/dispatcher"
	"github.com/windlgrass/om1agent/internal/fuser"
	"github.com/windlgrass/om1agent/internal/iostate"
	"github.com/windlgrass/om1agent/internal/llmadapter"
	"github.com/windlgrass/om1agent/internal/observability"
	"github.com/windlgrass/om1agent/internal/orchestrator"
	"github.com/windlgrass/om1agent/internal/scheduler"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/internal/stopsignal"
	"github.com/windlgrass/om1agent/pkg/models"
)

// DefaultTickInterval (0.5 Hz) is used when Config.TickInterval is zero or
// negative. config.Load rejects a missing or non-positive hertz, so a
// loaded configuration always supplies its own interval.
const DefaultTickInterval = 2 * time.Second

// Runtime owns one instance of each top-level component and drives the
// per-tick dataflow between them.
type Runtime struct {
	orchestrator *orchestrator.Orchestrator
	fuser        *fuser.Fuser
	adapter      *llmadapter.Adapter
	dispatcher   *dispatcher.Dispatcher
	scheduler    *scheduler.Scheduler

	actions      []models.AgentAction
	stop         *stopsignal.StopSignal
	state        *iostate.IOState
	logger       *slog.Logger
	tickInterval time.Duration
	metrics      *observability.Metrics
	tracer       *observability.Tracer

	// wake lets an urgent sensor event skip the remainder of the current
	// inter-tick sleep (spec §2's "early-wake skip-sleep signal").
	wake chan struct{}

	statusMu   sync.RWMutex
	running    bool
	lastTickAt time.Time
	lastErr    string
}

// Config carries everything New needs to assemble a Runtime. Sensors
// and Actions are config-driven (built via the Plugin Loader before the
// Runtime is constructed); Backend is the single LLM backend this process
// talks to.
type Config struct {
	// Sensors carries the YAML declaration order of agent_inputs (spec
	// §4.4 requires the Fuser walk "all sensors' currently formatted
	// buffers in declaration order"); each entry's Name must be unique so
	// two same-Type sensors (e.g. two Telegram inputs) don't collide.
	Sensors      []fuser.NamedSensor
	Prompt       fuser.SystemPromptSections
	Actions      []models.AgentAction
	Backend      llmadapter.Backend
	TickInterval time.Duration
	Logger       *slog.Logger

	// Metrics and Tracer are optional. When nil, the tick loop records no
	// metrics and opens no spans — tests construct a Runtime without
	// either rather than fighting Prometheus's default-registry
	// singleton across repeated New calls.
	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// New assembles a Runtime from cfg, wiring one Orchestrator over
// cfg.Sensors, one Fuser over cfg.Prompt/cfg.Actions, one Adapter over
// cfg.Backend, one Dispatcher with every action's connector registered by
// its LLMLabel, and an empty Scheduler. The Orchestrator, Adapter,
// Dispatcher and Scheduler share one StopSignal; the Fuser and Adapter
// share one IOState instance.
func New(cfg Config) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stop := stopsignal.New()
	state := iostate.New()

	sensorSet := make(map[string]sensors.Sensor, len(cfg.Sensors))
	for _, ns := range cfg.Sensors {
		sensorSet[ns.Name] = ns.Sensor
	}

	disp := dispatcher.New(stop, logger.With("component", "dispatcher"))
	for _, a := range cfg.Actions {
		if a.Connector != nil {
			disp.Register(a.LLMLabel, a.Interface, a.Connector)
		}
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	return &Runtime{
		orchestrator: orchestrator.New(sensorSet, stop, logger.With("component", "orchestrator")),
		fuser:        fuser.New(cfg.Prompt, cfg.Sensors, cfg.Actions, state),
		adapter:      llmadapter.New(cfg.Backend, stop, state, logger.With("component", "llmadapter")),
		dispatcher:   disp,
		scheduler:    scheduler.New(stop, scheduler.WithLogger(logger.With("component", "scheduler"))),
		actions:      cfg.Actions,
		stop:         stop,
		state:        state,
		logger:       logger,
		tickInterval: tickInterval,
		metrics:      cfg.Metrics,
		tracer:       cfg.Tracer,
		wake:         make(chan struct{}, 1),
	}
}

// Scheduler exposes the Runtime's Scheduler so callers can register
// BackgroundTasks and connector tickers before calling Run.
func (r *Runtime) Scheduler() *scheduler.Scheduler { return r.scheduler }

// Dispatcher exposes the Runtime's Dispatcher, e.g. so the Scheduler can
// be wired to tick every registered connector that implements
// dispatcher.Ticker.
func (r *Runtime) Dispatcher() *dispatcher.Dispatcher { return r.dispatcher }

// Stop exposes the Runtime's StopSignal so a caller (typically a signal
// handler in cmd/om1agent) can trigger graceful shutdown.
func (r *Runtime) Stop() *stopsignal.StopSignal { return r.stop }

// Status reports the tick loop's high-level health for the AIStatus RPC
// (spec §6): whether Run is currently active, the time of the last
// completed tick, and the most recent tick panic (if any).
func (r *Runtime) Status() (running bool, lastTick time.Time, lastErr string) {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.running, r.lastTickAt, r.lastErr
}

func (r *Runtime) setRunning(v bool) {
	r.statusMu.Lock()
	r.running = v
	r.statusMu.Unlock()
}

func (r *Runtime) setLastTickAt(t time.Time) {
	r.statusMu.Lock()
	r.lastTickAt = t
	r.statusMu.Unlock()
}

func (r *Runtime) setLastErr(msg string) {
	r.statusMu.Lock()
	r.lastErr = msg
	r.statusMu.Unlock()
}

// WakeNow skips the remainder of the current inter-tick sleep, letting an
// urgent sensor event (spec §2) pull the next tick forward instead of
// waiting out the full interval.
func (r *Runtime) WakeNow() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run starts the Orchestrator and Scheduler on their own goroutines and
// drives the tick loop on the calling goroutine until the StopSignal
// fires.
func (r *Runtime) Run(ctx context.Context) {
	r.setRunning(true)
	defer r.setRunning(false)

	runCtx, cancel := r.stop.Context(ctx)
	defer cancel()

	done := make(chan struct{}, 2)
	go func() { defer func() { done <- struct{}{} }(); r.orchestrator.Run(runCtx) }()
	go func() { defer func() { done <- struct{}{} }(); r.scheduler.Run(runCtx) }()

	r.runTickLoop(runCtx)

	<-done
	<-done
}

// runTickLoop implements spec §2's per-tick dataflow: fuse, ask, dispatch,
// sleep (or wake early).
func (r *Runtime) runTickLoop(ctx context.Context) {
	for {
		r.tick(ctx)

		if r.stop.Fired() {
			return
		}
		select {
		case <-r.wake:
		case <-r.stop.Done():
			return
		case <-ctx.Done():
			return
		case <-time.After(r.tickInterval):
		}
	}
}

func (r *Runtime) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("runtime: tick panicked, isolated", "panic", rec)
			r.setLastErr(fmt.Sprintf("%v", rec))
		}
	}()
	defer r.setLastTickAt(time.Now())

	tickID := uuid.NewString()
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.StartTick(ctx, tickID)
		defer span.End()
	}

	prompt := r.fuser.Build()
	actions := r.adapter.Ask(ctx, prompt, r.actions)
	for _, a := range actions {
		r.dispatcher.Dispatch(a)
		if r.metrics != nil {
			r.metrics.ActionsDispatched.WithLabelValues(a.Type).Inc()
		}
	}

	if r.metrics != nil {
		r.metrics.TicksTotal.Inc()
		r.metrics.ObserveLLMDuration(r.state.LLMDuration())
	}
}
