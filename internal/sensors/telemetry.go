package sensors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/pkg/models"
)

// DefaultTelemetryInterval is the polling cadence for the hardware-facing
// sensors in this file. No vendor SDK in the retrieval pack speaks
// ROS2/serial/GPIO (see DESIGN.md), so each sensor here polls a local HTTP
// status endpoint the way original_source's PollingSource bases do (a
// bare `requests.get` loop) and mirrors the result into its Provider.
const DefaultTelemetryInterval = 2 * time.Second

func pollJSON[T any](ctx context.Context, client *http.Client, url string) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return zero, fmt.Errorf("sensors: endpoint returned status %d", resp.StatusCode)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

// GPSSensor polls a GPS fix endpoint and mirrors readings into a
// GPSProvider while surfacing them as Messages for the Fuser.
type GPSSensor struct {
	Buffer
	*PollingSource
	provider *providers.GPSProvider
	client   *http.Client
	baseURL  string
}

func NewGPSSensor(baseURL string, provider *providers.GPSProvider) *GPSSensor {
	s := &GPSSensor{
		Buffer:   *NewBuffer("GPSInput", 20),
		provider: provider,
		client:   &http.Client{Timeout: DefaultTelemetryInterval},
		baseURL:  baseURL,
	}
	s.PollingSource = &PollingSource{Interval: DefaultTelemetryInterval, Poll: s.poll}
	return s
}

func (s *GPSSensor) poll(ctx context.Context) (RawEvent, error) {
	return pollJSON[providers.GPSFix](ctx, s.client, s.baseURL+"/gps")
}

func (s *GPSSensor) RawToText(ctx context.Context, raw RawEvent) error {
	if pe, ok := raw.(PollError); ok {
		return pe.Err
	}
	fix, ok := raw.(providers.GPSFix)
	if !ok {
		return fmt.Errorf("sensors: unexpected GPS event type %T", raw)
	}
	s.provider.Update(fix)
	s.Push(models.NewMessage(fmt.Sprintf("gps: lat=%.6f lon=%.6f accuracy=%.1fm", fix.Latitude, fix.Longitude, fix.Accuracy)))
	return nil
}

// LidarSensor polls a lidar scan endpoint, mirroring readings into a
// LidarProvider.
type LidarSensor struct {
	Buffer
	*PollingSource
	provider *providers.LidarProvider
	client   *http.Client
	baseURL  string
}

func NewLidarSensor(baseURL string, provider *providers.LidarProvider) *LidarSensor {
	s := &LidarSensor{
		Buffer:   *NewBuffer("LidarInput", 20),
		provider: provider,
		client:   &http.Client{Timeout: DefaultTelemetryInterval},
		baseURL:  baseURL,
	}
	s.PollingSource = &PollingSource{Interval: DefaultTelemetryInterval, Poll: s.poll}
	return s
}

func (s *LidarSensor) poll(ctx context.Context) (RawEvent, error) {
	return pollJSON[providers.LidarScan](ctx, s.client, s.baseURL+"/lidar")
}

func (s *LidarSensor) RawToText(ctx context.Context, raw RawEvent) error {
	if pe, ok := raw.(PollError); ok {
		return pe.Err
	}
	scan, ok := raw.(providers.LidarScan)
	if !ok {
		return fmt.Errorf("sensors: unexpected lidar event type %T", raw)
	}
	s.provider.Update(scan)
	minRange := minFloat(scan.RangesMeters)
	s.Push(models.NewMessage(fmt.Sprintf("lidar: %d beams, closest obstacle %.2fm", len(scan.RangesMeters), minRange)))
	return nil
}

func minFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// BatterySensor polls a battery status endpoint, mirroring readings into a
// BatteryProvider.
type BatterySensor struct {
	Buffer
	*PollingSource
	provider *providers.BatteryProvider
	client   *http.Client
	baseURL  string
}

func NewBatterySensor(baseURL string, provider *providers.BatteryProvider) *BatterySensor {
	s := &BatterySensor{
		Buffer:   *NewBuffer("BatteryInput", 10),
		provider: provider,
		client:   &http.Client{Timeout: DefaultTelemetryInterval},
		baseURL:  baseURL,
	}
	s.PollingSource = &PollingSource{Interval: 30 * time.Second, Poll: s.poll}
	return s
}

func (s *BatterySensor) poll(ctx context.Context) (RawEvent, error) {
	return pollJSON[providers.BatteryState](ctx, s.client, s.baseURL+"/battery")
}

func (s *BatterySensor) RawToText(ctx context.Context, raw RawEvent) error {
	if pe, ok := raw.(PollError); ok {
		return pe.Err
	}
	state, ok := raw.(providers.BatteryState)
	if !ok {
		return fmt.Errorf("sensors: unexpected battery event type %T", raw)
	}
	s.provider.Update(state)
	status := "discharging"
	if state.Charging {
		status = "charging"
	}
	s.Push(models.NewMessage(fmt.Sprintf("battery: %.0f%% (%s)", state.PercentRemaining, status)))
	return nil
}

// OdometrySensor polls an odometry endpoint, mirroring readings into an
// OdometryProvider.
type OdometrySensor struct {
	Buffer
	*PollingSource
	provider *providers.OdometryProvider
	client   *http.Client
	baseURL  string
}

func NewOdometrySensor(baseURL string, provider *providers.OdometryProvider) *OdometrySensor {
	s := &OdometrySensor{
		Buffer:   *NewBuffer("OdometryInput", 20),
		provider: provider,
		client:   &http.Client{Timeout: DefaultTelemetryInterval},
		baseURL:  baseURL,
	}
	s.PollingSource = &PollingSource{Interval: DefaultTelemetryInterval, Poll: s.poll}
	return s
}

func (s *OdometrySensor) poll(ctx context.Context) (RawEvent, error) {
	return pollJSON[providers.OdometryReading](ctx, s.client, s.baseURL+"/odometry")
}

func (s *OdometrySensor) RawToText(ctx context.Context, raw RawEvent) error {
	if pe, ok := raw.(PollError); ok {
		return pe.Err
	}
	reading, ok := raw.(providers.OdometryReading)
	if !ok {
		return fmt.Errorf("sensors: unexpected odometry event type %T", raw)
	}
	s.provider.Update(reading)
	s.Push(models.NewMessage(fmt.Sprintf("odometry: x=%.2f y=%.2f heading=%.2frad", reading.X, reading.Y, reading.HeadingRadians)))
	return nil
}

// WalletBalance is a minimal on-chain balance snapshot. No Coinbase/wallet
// SDK ships in the retrieval pack, so WalletSensor speaks plain HTTP to
// whatever balance endpoint the deployment configures (DESIGN.md).
type WalletBalance struct {
	Address      string  `json:"address"`
	BalanceQuote float64 `json:"balance_quote"`
	Asset        string  `json:"asset"`
}

// WalletSensor polls a wallet balance endpoint and surfaces balance
// changes as Messages; it has no dedicated Provider because nothing else
// in the runtime consumes wallet state directly.
type WalletSensor struct {
	Buffer
	*PollingSource
	client  *http.Client
	baseURL string
}

func NewWalletSensor(baseURL string) *WalletSensor {
	s := &WalletSensor{
		Buffer:  *NewBuffer("WalletInput", 10),
		client:  &http.Client{Timeout: DefaultTelemetryInterval},
		baseURL: baseURL,
	}
	s.PollingSource = &PollingSource{Interval: 60 * time.Second, Poll: s.poll}
	return s
}

func (s *WalletSensor) poll(ctx context.Context) (RawEvent, error) {
	return pollJSON[WalletBalance](ctx, s.client, s.baseURL+"/wallet")
}

func (s *WalletSensor) RawToText(ctx context.Context, raw RawEvent) error {
	if pe, ok := raw.(PollError); ok {
		return pe.Err
	}
	balance, ok := raw.(WalletBalance)
	if !ok {
		return fmt.Errorf("sensors: unexpected wallet event type %T", raw)
	}
	s.Push(models.NewMessage(fmt.Sprintf("wallet %s: %.4f %s", balance.Address, balance.BalanceQuote, balance.Asset)))
	return nil
}
