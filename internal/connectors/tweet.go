package connectors

import (
	"context"
	"net/http"
)

// TweetConnector posts a status update to the Twitter/X API v2. No Go
// tweepy-equivalent SDK ships in this corpus (original_source's
// TweetAPIConnector wraps tweepy.Client directly), so this speaks the v2
// REST endpoint over stdlib net/http the way the teacher's webhook job
// does for arbitrary outbound calls.
type TweetConnector struct {
	BearerToken string
	Client      *http.Client
	baseURL     string // overridable in tests; defaults to the v2 API host
}

const twitterAPIBase = "https://api.twitter.com/2"

func NewTweetConnector(bearerToken string) *TweetConnector {
	return &TweetConnector{
		BearerToken: bearerToken,
		Client:      &http.Client{Timeout: DefaultHTTPTimeout},
		baseURL:     twitterAPIBase,
	}
}

func (c *TweetConnector) Connect(ctx context.Context, value string) error {
	return postAuthorizedJSON(ctx, c.Client, http.MethodPost, c.baseURL+"/tweets", c.BearerToken,
		map[string]string{"text": value})
}
