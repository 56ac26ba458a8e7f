package connectors

import (
	"context"
	"net/http"

	"github.com/windlgrass/om1agent/internal/providers"
)

// SpeakConnector drives a text-to-speech device over HTTP and mirrors
// every spoken line into a TTSProvider so the TTSStatusRequest RPC (spec
// §6) can report what's pending or in flight, grounded in
// original_source's UbTtsConnector pairing a connector with a provider.
type SpeakConnector struct {
	tts     *providers.TTSProvider
	baseURL string
	client  *http.Client
}

func NewSpeakConnector(tts *providers.TTSProvider, baseURL string) *SpeakConnector {
	return &SpeakConnector{tts: tts, baseURL: baseURL, client: &http.Client{Timeout: DefaultHTTPTimeout}}
}

func (c *SpeakConnector) Connect(ctx context.Context, value string) error {
	c.tts.AddPendingMessage(value)
	return postJSON(ctx, c.client, c.baseURL+"/tts/speak", map[string]string{"text": value})
}
