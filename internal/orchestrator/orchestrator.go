// Package orchestrator implements the Input Orchestrator (spec §4.3):
// it runs every sensor's Listen() stream concurrently as an independent
// goroutine, converts each raw event via RawToText, and survives any
// single sensor's failure. It is the Go translation of
// original_source/src/inputs/orchestrator.py's
// `asyncio.gather(..., return_exceptions=True)` pattern.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/windlgrass/om1agent/internal/errtax"
	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/internal/stopsignal"
)

// DefaultShutdownTimeout bounds how long Run waits for sensor goroutines
// to exit after the StopSignal fires.
const DefaultShutdownTimeout = 2 * time.Second

// Orchestrator drives a fixed set of sensors for the lifetime of the
// runtime.
type Orchestrator struct {
	sensors         map[string]sensors.Sensor
	logger          *slog.Logger
	stop            *stopsignal.StopSignal
	shutdownTimeout time.Duration
}

// New creates an Orchestrator over the given named sensors. The name is
// used only for log attribution; sensors never see each other's names.
func New(sensorSet map[string]sensors.Sensor, stop *stopsignal.StopSignal, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sensors:         sensorSet,
		logger:          logger,
		stop:            stop,
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// SetShutdownTimeout overrides the default bounded join timeout.
func (o *Orchestrator) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		o.shutdownTimeout = d
	}
}

// Run starts one goroutine per sensor and blocks until the StopSignal
// fires, at which point it cancels all sensor contexts and waits (bounded
// by shutdownTimeout) for them to exit. A failing sensor is logged with
// its name and does not affect its siblings.
func (o *Orchestrator) Run(ctx context.Context) {
	runCtx, cancel := o.stop.Context(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for name, sensor := range o.sensors {
		wg.Add(1)
		go func(name string, s sensors.Sensor) {
			defer wg.Done()
			o.listenToSensor(runCtx, name, s)
		}(name, sensor)
	}

	<-o.stop.Done()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(o.shutdownTimeout):
		o.logger.Warn("orchestrator shutdown timed out waiting for sensors", "timeout", o.shutdownTimeout)
	}
}

// listenToSensor processes events from a single sensor, isolating any
// failure to this sensor's own log lines (spec §4.3's failure semantics).
func (o *Orchestrator) listenToSensor(ctx context.Context, name string, s sensors.Sensor) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("sensor panicked", "sensor", name, "panic", r)
		}
	}()

	for ev := range s.Listen(ctx) {
		if pe, ok := ev.(sensors.PollError); ok {
			o.logger.Error("sensor poll failed", "sensor", name, "error", errtax.Classify(name, pe.Err))
			continue
		}
		if err := s.RawToText(ctx, ev); err != nil {
			o.logger.Error("sensor event processing failed", "sensor", name, "error", errtax.Classify(name, err))
		}
	}
}
