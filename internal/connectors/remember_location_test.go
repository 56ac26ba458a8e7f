package connectors

import (
	"testing"

	"github.com/windlgrass/om1agent/internal/providers"
)

func TestRememberLocationConnectorStoresCurrentOdometry(t *testing.T) {
	locations := providers.NewLocationsProvider()
	odometry := providers.NewOdometryProvider()
	odometry.Update(providers.OdometryReading{X: 1.5, Y: -2, HeadingRadians: 0.3})
	tts := providers.NewTTSProvider()

	c := NewRememberLocationConnector(locations, odometry, tts)
	if err := c.Connect(t.Context(), "dock"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, ok := locations.Lookup("dock")
	if !ok {
		t.Fatal("expected the location to be remembered")
	}
	if loc.X != 1.5 || loc.Y != -2 {
		t.Fatalf("expected (1.5, -2), got (%v, %v)", loc.X, loc.Y)
	}
}

func TestRememberLocationConnectorRequiresOdometry(t *testing.T) {
	locations := providers.NewLocationsProvider()
	odometry := providers.NewOdometryProvider()
	c := NewRememberLocationConnector(locations, odometry, nil)

	if err := c.Connect(t.Context(), "dock"); err == nil {
		t.Fatal("expected an error with no odometry reading yet")
	}
}
