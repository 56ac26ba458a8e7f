// Package connectors implements concrete models.Connector integrations
// (spec §4.6's action/connector boundary). Each connector owns exactly one
// downstream transport — an HTTP endpoint on the robot, a vendor SDK, a
// messaging API — and converts one dispatched Action value into that
// transport's call shape. None of them know about the Dispatcher's queue
// or single-flight guarantee; that's the caller's job.
package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/windlgrass/om1agent/internal/statemachine"
	"github.com/windlgrass/om1agent/internal/wire"
)

// DefaultHTTPTimeout bounds any connector here that issues a plain HTTP
// request with no caller-supplied deadline.
const DefaultHTTPTimeout = 5 * time.Second

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("connectors: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("connectors: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connectors: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("connectors: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func postAuthorizedJSON(ctx context.Context, client *http.Client, method, url, bearerToken string, payload any) error {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("connectors: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("connectors: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connectors: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("connectors: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// ArmConnector drives a robot arm's HTTP motion endpoint — this corpus
// ships no Unitree/ROS2 Go SDK, so it speaks the same REST shape the
// teacher's webhook job uses (internal/cron/scheduler.go:executeWebhook),
// grounded in original_source's ARMUnitreeSDKConnector.connect for the
// one-action-per-call contract.
type ArmConnector struct {
	BaseURL string
	Client  *http.Client
}

func NewArmConnector(baseURL string) *ArmConnector {
	return &ArmConnector{BaseURL: baseURL, Client: &http.Client{Timeout: DefaultHTTPTimeout}}
}

func (c *ArmConnector) Connect(ctx context.Context, value string) error {
	return postJSON(ctx, c.Client, c.BaseURL+"/arm/action", map[string]string{"action": value})
}

// NavigationGoalConnector publishes a named or raw navigation goal to a
// robot base's HTTP goal endpoint. Navigation is optional; when set, a
// successfully published goal moves it Idle/Succeeded/Aborted -> Planning
// (spec §4.9's Navigation state machine transition (a), "goal publication
// moves it to Planning"), grounded on
// original_source/src/providers/unitree_go2_navigation_provider.py
// publishing to goal_pose_topic.
type NavigationGoalConnector struct {
	BaseURL    string
	Client     *http.Client
	Navigation *statemachine.Navigation
}

func NewNavigationGoalConnector(baseURL string, navigation *statemachine.Navigation) *NavigationGoalConnector {
	return &NavigationGoalConnector{BaseURL: baseURL, Client: &http.Client{Timeout: DefaultHTTPTimeout}, Navigation: navigation}
}

func (c *NavigationGoalConnector) Connect(ctx context.Context, value string) error {
	if err := postJSON(ctx, c.Client, c.BaseURL+"/navigate", map[string]string{"goal": value}); err != nil {
		return err
	}
	c.goalPublished()
	return nil
}

// PublishPose sends a fully resolved pose to the goal endpoint, for
// callers that have already resolved a named location into coordinates
// (NavigateLocationConnector) rather than passing an opaque goal string.
func (c *NavigationGoalConnector) PublishPose(ctx context.Context, pose wire.PoseStamped) error {
	if err := postJSON(ctx, c.Client, c.BaseURL+"/navigate/pose", pose); err != nil {
		return err
	}
	c.goalPublished()
	return nil
}

func (c *NavigationGoalConnector) goalPublished() {
	if c.Navigation != nil {
		c.Navigation.GoalPublished()
	}
}

// LEDConnector sets a status LED's color via the robot's lighting HTTP
// endpoint.
type LEDConnector struct {
	BaseURL string
	Client  *http.Client
}

func NewLEDConnector(baseURL string) *LEDConnector {
	return &LEDConnector{BaseURL: baseURL, Client: &http.Client{Timeout: DefaultHTTPTimeout}}
}

func (c *LEDConnector) Connect(ctx context.Context, value string) error {
	return postJSON(ctx, c.Client, c.BaseURL+"/led", map[string]string{"color": value})
}

// EmergencyAlertConnector posts to an incident webhook (SPEC_FULL.md's
// supplemented emergency_alert action — no connector for it exists in
// original_source, so this follows the teacher's webhook job shape
// exactly, internal/cron/scheduler.go:executeWebhook).
type EmergencyAlertConnector struct {
	WebhookURL string
	Client     *http.Client
}

func NewEmergencyAlertConnector(webhookURL string) *EmergencyAlertConnector {
	return &EmergencyAlertConnector{WebhookURL: webhookURL, Client: &http.Client{Timeout: DefaultHTTPTimeout}}
}

func (c *EmergencyAlertConnector) Connect(ctx context.Context, value string) error {
	return postJSON(ctx, c.Client, c.WebhookURL, map[string]string{"alert": value, "severity": "critical"})
}
