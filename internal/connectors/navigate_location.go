package connectors

import (
	"context"
	"fmt"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/wire"
)

// NavigateLocationConnector resolves a remembered name to a pose and
// forwards it to the navigation goal endpoint, supplementing the
// original's remember_location/navigate_location action pair
// (SPEC_FULL.md §10).
type NavigateLocationConnector struct {
	locations *providers.LocationsProvider
	goals     *NavigationGoalConnector
}

func NewNavigateLocationConnector(locations *providers.LocationsProvider, goals *NavigationGoalConnector) *NavigateLocationConnector {
	return &NavigateLocationConnector{locations: locations, goals: goals}
}

func (c *NavigateLocationConnector) Connect(ctx context.Context, name string) error {
	loc, ok := c.locations.Lookup(name)
	if !ok {
		return fmt.Errorf("connectors: no remembered location named %q", name)
	}
	pose := wire.PoseStamped{FrameID: "map", X: loc.X, Y: loc.Y}
	return c.goals.PublishPose(ctx, pose)
}
