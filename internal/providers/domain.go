package providers

import "sync"

// TTSProvider queues text for a speech connector to consume, matching
// spec §6's documented TTSProvider.add_pending_message(text) accessor.
type TTSProvider struct {
	*PushProvider[string]
}

// NewTTSProvider creates a TTSProvider with a modest pending-message bound
// — a robot that can't keep up with its own speech queue should drop old
// lines rather than fall further behind.
func NewTTSProvider() *TTSProvider {
	return &TTSProvider{PushProvider: NewPushProvider[string](16)}
}

// AddPendingMessage enqueues one line of text for the TTS connector.
func (p *TTSProvider) AddPendingMessage(text string) {
	p.Enqueue(text)
}

// AvatarExpression is one requested facial expression/viseme update.
type AvatarExpression struct {
	Emotion string
	Viseme  string
}

// AvatarFaceProvider queues expression updates for an avatar connector.
type AvatarFaceProvider struct {
	*PushProvider[AvatarExpression]
}

func NewAvatarFaceProvider() *AvatarFaceProvider {
	return &AvatarFaceProvider{PushProvider: NewPushProvider[AvatarExpression](8)}
}

// GPSFix is one GPS reading.
type GPSFix struct {
	Latitude, Longitude float64
	Accuracy            float64
}

// GPSProvider holds the latest GPS fix, ingested by a background reader.
type GPSProvider struct{ *IngestProvider[GPSFix] }

func NewGPSProvider() *GPSProvider { return &GPSProvider{IngestProvider: NewIngestProvider[GPSFix]()} }

// LidarScan is one lidar sweep's summarized range data.
type LidarScan struct {
	RangesMeters []float64
}

// LidarProvider holds the latest lidar scan.
type LidarProvider struct{ *IngestProvider[LidarScan] }

func NewLidarProvider() *LidarProvider {
	return &LidarProvider{IngestProvider: NewIngestProvider[LidarScan]()}
}

// BatteryState is one battery telemetry reading.
type BatteryState struct {
	PercentRemaining float64
	Charging         bool
}

// BatteryProvider holds the latest battery reading.
type BatteryProvider struct{ *IngestProvider[BatteryState] }

func NewBatteryProvider() *BatteryProvider {
	return &BatteryProvider{IngestProvider: NewIngestProvider[BatteryState]()}
}

// OdometryReading is one pose/velocity estimate.
type OdometryReading struct {
	X, Y, HeadingRadians  float64
	LinearVel, AngularVel float64
}

// OdometryProvider holds the latest odometry reading.
type OdometryProvider struct{ *IngestProvider[OdometryReading] }

func NewOdometryProvider() *OdometryProvider {
	return &OdometryProvider{IngestProvider: NewIngestProvider[OdometryReading]()}
}

// NamedLocation is a remembered navigation target (SPEC_FULL.md's
// supplemented "remember/navigate named locations" feature).
type NamedLocation struct {
	Name    string
	X, Y    float64
	Heading float64
}

// LocationsProvider is a concurrency-safe name -> NamedLocation registry
// backing the navigate_location action family.
type LocationsProvider struct {
	mu        sync.RWMutex
	locations map[string]NamedLocation
}

func NewLocationsProvider() *LocationsProvider {
	return &LocationsProvider{locations: make(map[string]NamedLocation)}
}

// Remember stores or overwrites a named location.
func (p *LocationsProvider) Remember(loc NamedLocation) {
	p.mu.Lock()
	p.locations[loc.Name] = loc
	p.mu.Unlock()
}

// Lookup retrieves a named location.
func (p *LocationsProvider) Lookup(name string) (NamedLocation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	loc, ok := p.locations[name]
	return loc, ok
}

// Names returns every remembered location name.
func (p *LocationsProvider) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.locations))
	for name := range p.locations {
		names = append(names, name)
	}
	return names
}

// GreetingConversationFinishedFlag is the ContextProvider key the greeting
// flow writes on entering its Finished state, per spec §4.9's "Exit from
// Finished writes a 'greeting finished' flag into the Context Provider" —
// grounded on original_source's GreetingConversationConnector.connect,
// which calls context_provider.update_context
// ({"greeting_conversation_finished": True}) the moment
// process_conversation reports FINISHED.
const GreetingConversationFinishedFlag = "greeting_conversation_finished"

// ContextProvider is the pull-style Shared-State Provider spec §4.8 names
// alongside IOState and GreetingConversationState: a small process-wide
// key/value store other components write cross-cutting facts into and
// downstream actions poll before acting — e.g. the greeting flow's
// "finished" flag, read back by the same connector to suppress repeat
// greetings until the approaching-person background resets it. Grounded
// on internal/iostate.IOState's dynamic-variable map, split into its own
// Provider because spec §4.8 names it separately from IOState.
type ContextProvider struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewContextProvider() *ContextProvider {
	return &ContextProvider{values: make(map[string]any)}
}

// Set stores value under key, overwriting any previous value.
func (p *ContextProvider) Set(key string, value any) {
	p.mu.Lock()
	p.values[key] = value
	p.mu.Unlock()
}

// Get returns the value stored under key, if any.
func (p *ContextProvider) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Flag reports whether key holds a stored boolean true value.
func (p *ContextProvider) Flag(key string) bool {
	v, ok := p.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Clear removes key, e.g. when a reset event invalidates a previously set
// flag.
func (p *ContextProvider) Clear(key string) {
	p.mu.Lock()
	delete(p.values, key)
	p.mu.Unlock()
}

// Reset clears every stored value. For tests only.
func (p *ContextProvider) Reset() {
	p.mu.Lock()
	p.values = make(map[string]any)
	p.mu.Unlock()
}

// TeleopsStatus is the push-style status-reporting Provider spec §6 names
// directly (TeleopsStatus.share_status(status)); a background task calls
// ShareStatus on its own cadence and a connector worker drains it.
type TeleopsStatus struct {
	*PushProvider[string]
}

func NewTeleopsStatus() *TeleopsStatus {
	return &TeleopsStatus{PushProvider: NewPushProvider[string](4)}
}

// ShareStatus enqueues one status report for the teleops connector.
func (t *TeleopsStatus) ShareStatus(status string) {
	t.Enqueue(status)
}
