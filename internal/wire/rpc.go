package wire

// RPCCode classifies the outcome of an onboard-status RPC call.
type RPCCode int

const (
	CodeOK RPCCode = iota
	CodeError
)

// Header is the envelope every onboard-status RPC response carries,
// matching spec §6's "{header, request_id, code, payload…}" shape: a
// request id for correlating a response back to its request, and a result
// code defined per RPC.
type Header struct {
	RequestID string
	Code      RPCCode
}

// Envelope wraps one RPC response's Payload with its Header. Response is a
// type alias over Envelope[Payload] rather than a distinct struct so every
// *Response below shares one marshaling shape.
type Envelope[T any] struct {
	Header
	Payload T
}

// NewEnvelope builds a response Envelope for requestID, carrying payload
// under code.
func NewEnvelope[T any](requestID string, code RPCCode, payload T) Envelope[T] {
	return Envelope[T]{Header: Header{RequestID: requestID, Code: code}, Payload: payload}
}

// TTSStatusRequest/Response report whether the speech connector is
// currently speaking.
type TTSStatusRequest struct {
	RequestID string
}

type TTSStatusPayload struct {
	Speaking    bool
	PendingText string
}

type TTSStatusResponse = Envelope[TTSStatusPayload]

// AIStatusRequest/Response report the runtime's high-level tick health.
type AIStatusRequest struct {
	RequestID string
}

type AIStatusPayload struct {
	Running          bool
	LastTickUnixNano int64
	LastError        string
}

type AIStatusResponse = Envelope[AIStatusPayload]

// AvatarFaceRequest/Response set and report the avatar's current
// expression.
type AvatarFaceRequest struct {
	RequestID string
	Emotion   string
	Viseme    string
}

type AvatarFacePayload struct {
	Applied bool
}

type AvatarFaceResponse = Envelope[AvatarFacePayload]

// ModeStatusRequest/Response report and switch the active multi-mode
// configuration (spec §6's "modes" facility).
type ModeStatusRequest struct {
	RequestID     string
	RequestedMode string
}

type ModeStatusPayload struct {
	ActiveMode     string
	AvailableModes []string
}

type ModeStatusResponse = Envelope[ModeStatusPayload]

// ConfigRequest/Response return the runtime's effective configuration
// summary for diagnostics tooling.
type ConfigRequest struct {
	RequestID string
}

type ConfigPayload struct {
	Hertz       float64
	CortexLLM   string
	SensorCount int
	ActionCount int
}

type ConfigResponse = Envelope[ConfigPayload]
