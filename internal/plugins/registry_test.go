package plugins

import (
	"context"
	"errors"
	"testing"

	"github.com/windlgrass/om1agent/internal/sensors"
	"github.com/windlgrass/om1agent/pkg/models"
)

type stubSensor struct{ sensors.Buffer }

func (s *stubSensor) Listen(ctx context.Context) <-chan sensors.RawEvent {
	ch := make(chan sensors.RawEvent)
	close(ch)
	return ch
}
func (s *stubSensor) RawToText(ctx context.Context, raw sensors.RawEvent) error { return nil }

func TestUnregisteredPluginIsConfigError(t *testing.T) {
	r := NewRegistry()
	if _, err := r.NewSensor("vision", nil); err == nil {
		t.Fatal("expected an error for an unregistered sensor plugin")
	}
}

func TestRegisterAndConstructSensor(t *testing.T) {
	r := NewRegistry()
	r.RegisterSensor("vision", func(cfg map[string]any) (sensors.Sensor, error) {
		return &stubSensor{Buffer: *sensors.NewBuffer("VisionInput", 10)}, nil
	})

	s, err := r.NewSensor("vision", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Descriptor() != "VisionInput" {
		t.Fatalf("unexpected descriptor: %s", s.Descriptor())
	}
}

func TestConnectorFactoryErrorIsWrappedAsConfigError(t *testing.T) {
	r := NewRegistry()
	r.RegisterConnector("speak", func(cfg map[string]any) (models.Connector, error) {
		return nil, errors.New("missing endpoint")
	})

	if _, err := r.NewConnector("speak", nil); err == nil {
		t.Fatal("expected a wrapped construction error")
	}
}
