package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/statemachine"
)

// TeleopsStatusTask periodically reports machine health to the configured
// TeleopsStatus Provider, grounded on
// original_source/src/backgrounds/plugins/agent_teleops_status.py's
// AgentTeleopsStatusBackground: every run, push one status line built from
// a fixed machine name and the last known battery reading.
type TeleopsStatusTask struct {
	MachineName string
	Teleops     *providers.TeleopsStatus
	Battery     *providers.BatteryProvider
	now         func() time.Time
}

// NewTeleopsStatusTask builds a TeleopsStatusTask. battery may be nil, in
// which case every report carries a zero battery reading (matching the
// original's default when no robot is connected).
func NewTeleopsStatusTask(machineName string, teleops *providers.TeleopsStatus, battery *providers.BatteryProvider) *TeleopsStatusTask {
	return &TeleopsStatusTask{MachineName: machineName, Teleops: teleops, Battery: battery, now: time.Now}
}

// Name identifies this task for scheduler logging.
func (t *TeleopsStatusTask) Name() string { return "teleops_status" }

// Run pushes one status report.
func (t *TeleopsStatusTask) Run(ctx context.Context) error {
	var level float64
	var charging bool
	if t.Battery != nil {
		if reading, ok := t.Battery.Latest(); ok {
			level = reading.PercentRemaining
			charging = reading.Charging
		}
	}
	status := fmt.Sprintf(
		"machine=%s update_time=%s battery_level=%.1f charging=%t",
		t.MachineName, t.now().UTC().Format(time.RFC3339), level, charging,
	)
	t.Teleops.ShareStatus(status)
	return nil
}

// proximityReading is the JSON shape a proximity endpoint reports.
type proximityReading struct {
	PersonDetected bool `json:"person_detected"`
}

// ApproachingPersonTask polls a proximity endpoint and resets the
// greeting-conversation state machine to Engaging whenever a person comes
// into range, grounded on
// original_source/src/backgrounds/plugins/approaching_person.py's
// ApproachingPerson.run, which calls
// greeting_state_provider.reset_state(ConversationState.ENGAGING) once a
// person is detected nearby.
type ApproachingPersonTask struct {
	BaseURL  string
	Client   *http.Client
	Greeting *statemachine.GreetingConversation
	Context  *providers.ContextProvider
	now      func() time.Time
}

// NewApproachingPersonTask builds an ApproachingPersonTask polling
// baseURL+"/proximity" each run. context may be nil, in which case a
// detected approach resets only the state machine, not the finished flag
// (tests construct the task without a Context Provider).
func NewApproachingPersonTask(baseURL string, greeting *statemachine.GreetingConversation, context *providers.ContextProvider) *ApproachingPersonTask {
	return &ApproachingPersonTask{
		BaseURL:  baseURL,
		Client:   &http.Client{Timeout: 5 * time.Second},
		Greeting: greeting,
		Context:  context,
		now:      time.Now,
	}
}

// Name identifies this task for scheduler logging.
func (t *ApproachingPersonTask) Name() string { return "approaching_person" }

// Run polls once and resets the greeting conversation on detection.
func (t *ApproachingPersonTask) Run(ctx context.Context) error {
	detected, err := t.pollProximity(ctx)
	if err != nil {
		return fmt.Errorf("approaching_person: poll proximity: %w", err)
	}
	if detected {
		t.Greeting.ResetOnApproach(t.now())
		if t.Context != nil {
			t.Context.Clear(providers.GreetingConversationFinishedFlag)
		}
	}
	return nil
}

func (t *ApproachingPersonTask) pollProximity(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"/proximity", nil)
	if err != nil {
		return false, err
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var reading proximityReading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		return false, err
	}
	return reading.PersonDetected, nil
}

// navigationStatusReading is the JSON shape a navigation status endpoint
// reports: one of "executing", "succeeded", or "aborted", matching the
// action-server states original_source's UnitreeGo2NavigationProvider
// subscribes to over zenoh. This module speaks plain HTTP polling instead,
// following ApproachingPersonTask's pattern, since the corpus carries no
// zenoh/ROS2 transport.
type navigationStatusReading struct {
	Status string `json:"status"`
}

// NavigationStatusTask polls a robot's navigation action-server status and
// drives the Navigation state machine's Executing/Succeeded/Aborted
// transitions, grounded on
// original_source/src/backgrounds/plugins/unitree_go2_navigation.py's
// background-provider pairing.
type NavigationStatusTask struct {
	BaseURL    string
	Client     *http.Client
	Navigation *statemachine.Navigation
}

// NewNavigationStatusTask builds a NavigationStatusTask polling
// baseURL+"/navigation/status" each run.
func NewNavigationStatusTask(baseURL string, navigation *statemachine.Navigation) *NavigationStatusTask {
	return &NavigationStatusTask{
		BaseURL:    baseURL,
		Client:     &http.Client{Timeout: 5 * time.Second},
		Navigation: navigation,
	}
}

// Name identifies this task for scheduler logging.
func (t *NavigationStatusTask) Name() string { return "navigation_status" }

// Run polls once and applies the reported status to the Navigation state
// machine. A status reported while Navigation is Idle (no goal published
// yet) is ignored rather than forced into Executing.
func (t *NavigationStatusTask) Run(ctx context.Context) error {
	status, err := t.pollStatus(ctx)
	if err != nil {
		return fmt.Errorf("navigation_status: poll status: %w", err)
	}
	if t.Navigation.State() == statemachine.Idle {
		return nil
	}
	switch status {
	case "executing":
		t.Navigation.ActionServerExecuting()
	case "succeeded":
		t.Navigation.Succeed()
	case "aborted":
		t.Navigation.Abort()
	}
	return nil
}

func (t *NavigationStatusTask) pollStatus(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"/navigation/status", nil)
	if err != nil {
		return "", err
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var reading navigationStatusReading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		return "", err
	}
	return reading.Status, nil
}
