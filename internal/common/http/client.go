// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

const DefaultUserAgent = "activity-signup"

// Client is the shared outbound HTTP client. It satisfies the AWS SDK
// HTTPClient interface and its Transport can back other SDKs.
type Client struct {
	httpClient *http.Client
	transport  http.RoundTripper
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	transport := NewTransport(timeout, userAgent)
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		transport: transport,
	}
}

// NewTransport clones the default transport, bounds the wait for response
// headers and stamps every request with userAgent.
func NewTransport(responseTimeout time.Duration, userAgent string) http.RoundTripper {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = responseTimeout
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &userAgentTransport{base: base, userAgent: userAgent}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// Transport returns the round tripper behind the client.
func (c *Client) Transport() http.RoundTripper {
	return c.transport
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
