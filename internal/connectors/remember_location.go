package connectors

import (
	"context"
	"fmt"

	"github.com/windlgrass/om1agent/internal/providers"
)

// RememberLocationConnector stores the robot's current odometry position
// under the dispatched label, the counterpart to NavigateLocationConnector
// (SPEC_FULL.md §10, grounded in original_source's
// UnitreeG1RememberLocationConnector storing a label against the live
// pose rather than an operator-supplied one).
type RememberLocationConnector struct {
	locations *providers.LocationsProvider
	odometry  *providers.OdometryProvider
	tts       *providers.TTSProvider
}

func NewRememberLocationConnector(locations *providers.LocationsProvider, odometry *providers.OdometryProvider, tts *providers.TTSProvider) *RememberLocationConnector {
	return &RememberLocationConnector{locations: locations, odometry: odometry, tts: tts}
}

func (c *RememberLocationConnector) Connect(ctx context.Context, label string) error {
	reading, ok := c.odometry.Latest()
	if !ok {
		return fmt.Errorf("connectors: no odometry reading available to remember %q", label)
	}
	c.locations.Remember(providers.NamedLocation{
		Name:    label,
		X:       reading.X,
		Y:       reading.Y,
		Heading: reading.HeadingRadians,
	})
	if c.tts != nil {
		c.tts.AddPendingMessage(fmt.Sprintf("Location %s remembered.", label))
	}
	return nil
}
