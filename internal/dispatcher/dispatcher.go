// Package dispatcher implements the Action Dispatcher (spec §4.6): it
// routes each Action the LLM Adapter produced to the registered Connector
// for its type. Per connector, at most one Connect call is ever in flight;
// further dispatches to a busy connector queue in arrival order behind a
// bound, oldest dropped past it. Different connectors run independently so
// one slow connector never blocks another (spec §5, "independent
// concurrency domains"), following the per-entity worker/queue shape of
// the teacher's MultiRateLimiter (internal/channels/ratelimit.go).
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/windlgrass/om1agent/internal/stopsignal"
	"github.com/windlgrass/om1agent/pkg/models"
)

// DefaultQueueCapacity bounds each connector's pending-dispatch queue.
const DefaultQueueCapacity = 8

// Ticker is implemented by connectors that also want a periodic tick
// independent of any dispatched action (spec §4.6, scheduled by the
// Background Scheduler rather than the Dispatcher itself).
type Ticker interface {
	Tick(ctx context.Context) error
}

// Failure classifies why a Connect call failed, so callers can decide
// whether to retry, back off, or give up on a connector.
type Failure int

const (
	// FailureUnknown is the default when a connector returns a plain error.
	FailureUnknown Failure = iota
	FailureTimeout
	FailureConnectionLost
	FailureFatal
)

func (f Failure) String() string {
	switch f {
	case FailureTimeout:
		return "timeout"
	case FailureConnectionLost:
		return "connection_lost"
	case FailureFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Timeout, ConnectionLost, and Fatal are sentinel errors connectors can
// wrap (via errors.Join or fmt.Errorf("...: %w", ...)) so Classify can
// recognize them.
var (
	Timeout        = errors.New("dispatcher: connector timed out")
	ConnectionLost = errors.New("dispatcher: connector lost its connection")
	Fatal          = errors.New("dispatcher: connector failed fatally")
)

// Classify maps a Connect error to a Failure category.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return FailureUnknown
	case errors.Is(err, Timeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, ConnectionLost):
		return FailureConnectionLost
	case errors.Is(err, Fatal):
		return FailureFatal
	default:
		return FailureUnknown
	}
}

// Dispatcher owns one worker per registered connector and fans dispatched
// Actions out to them by action type.
type Dispatcher struct {
	mu       sync.RWMutex
	workers  map[string]*connectorWorker
	capacity int
	stop     *stopsignal.StopSignal
	logger   *slog.Logger
}

// New creates an empty Dispatcher. Register connectors with Register
// before calling Dispatch.
func New(stop *stopsignal.StopSignal, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		workers:  make(map[string]*connectorWorker),
		capacity: DefaultQueueCapacity,
		stop:     stop,
		logger:   logger,
	}
}

// SetQueueCapacity overrides the per-connector pending-dispatch bound for
// connectors registered afterward.
func (d *Dispatcher) SetQueueCapacity(n int) {
	if n > 0 {
		d.capacity = n
	}
}

// Register binds an action type name to the Connector that handles it and
// starts its worker goroutine. iface carries the action's accepted enum
// values (when Kind == models.KindEnum), which Dispatch validates every
// value against before it ever reaches conn. Registering the same name
// twice replaces the prior connector; the old worker's queue is discarded.
func (d *Dispatcher) Register(actionType string, iface models.ActionInterface, conn models.Connector) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.workers[actionType]; ok {
		old.mu.Lock()
		old.queue = nil
		old.mu.Unlock()
	}
	w := newConnectorWorker(actionType, iface, conn, d.capacity, d.logger)
	d.workers[actionType] = w
	go w.run(d.stop)
}

// Connectors returns each registered action type name mapped to its
// connector, for Tick scheduling by the Background Scheduler.
func (d *Dispatcher) Connectors() map[string]models.Connector {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]models.Connector, len(d.workers))
	for name, w := range d.workers {
		out[name] = w.conn
	}
	return out
}

// Dispatch enqueues one Action onto its connector's worker. An action type
// with no registered connector is logged and dropped (spec §4.6 boundary
// behavior). When the action's interface is KindEnum, Dispatch additionally
// enforces strict enum parsing at this boundary (spec §9): a value outside
// the declared Enum is logged and dropped rather than forwarded, so an LLM
// hallucinating an unlisted member (e.g. "grumpy" against
// ["happy","sad"]) never reaches the connector. Dispatch never blocks on a
// full queue, it drops the oldest pending dispatch instead.
func (d *Dispatcher) Dispatch(action models.Action) {
	d.mu.RLock()
	w, ok := d.workers[action.Type]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("dispatcher: unknown action type, dropping", "type", action.Type)
		return
	}
	if w.iface.Kind == models.KindEnum && !isEnumMember(w.iface.Enum, action.Value) {
		d.logger.Warn("dispatcher: value outside declared enum, dropping",
			"type", action.Type, "value", action.Value, "enum", w.iface.Enum)
		return
	}
	w.enqueue(action.Value)
}

func isEnumMember(enum []string, value string) bool {
	for _, v := range enum {
		if v == value {
			return true
		}
	}
	return false
}

// connectorWorker serializes Connect calls for one connector through a
// single goroutine; concurrent Dispatch calls only ever touch the bounded
// queue, never the connector itself.
type connectorWorker struct {
	name     string
	iface    models.ActionInterface
	conn     models.Connector
	logger   *slog.Logger
	capacity int

	mu    sync.Mutex
	queue []string
	wake  chan struct{}
}

func newConnectorWorker(name string, iface models.ActionInterface, conn models.Connector, capacity int, logger *slog.Logger) *connectorWorker {
	return &connectorWorker{
		name:     name,
		iface:    iface,
		conn:     conn,
		logger:   logger,
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

func (w *connectorWorker) enqueue(value string) {
	w.mu.Lock()
	w.queue = append(w.queue, value)
	if len(w.queue) > w.capacity {
		dropped := w.queue[0]
		w.queue = w.queue[1:]
		w.logger.Warn("dispatcher: connector queue full, dropping oldest", "connector", w.name, "dropped", dropped)
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *connectorWorker) pop() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return "", false
	}
	v := w.queue[0]
	w.queue = w.queue[1:]
	return v, true
}

// run drains the queue one value at a time until the StopSignal fires,
// guaranteeing single-flight execution for this connector: the next value
// is only popped after Connect returns.
func (w *connectorWorker) run(stop *stopsignal.StopSignal) {
	var done <-chan struct{}
	if stop != nil {
		done = stop.Done()
	}
	for {
		for {
			value, ok := w.pop()
			if !ok {
				break
			}
			w.connectOne(value)
		}
		select {
		case <-done:
			return
		case <-w.wake:
		}
	}
}

func (w *connectorWorker) connectOne(value string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("dispatcher: connector panicked, isolated", "connector", w.name, "panic", r)
		}
	}()

	ctx := context.Background()
	if err := w.conn.Connect(ctx, value); err != nil {
		w.logger.Error("dispatcher: connect failed", "connector", w.name, "failure", Classify(err).String(), "error", err)
	}
}
