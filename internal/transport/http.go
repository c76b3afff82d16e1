// Package transport builds the outbound HTTP client used to reach the trivia API.
package transport

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

const defaultUserAgent = "trivia-quiz/1.0"

// NewHTTPClient returns a client whose transport negotiates HTTP/2 over TLS
// and falls back to HTTP/1.1 when the server does not offer it.
func NewHTTPClient(timeout time.Duration, userAgent string) (*http.Client, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected default transport %T", http.DefaultTransport)
	}
	t := base.Clone()
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, fmt.Errorf("configure http2 transport: %w", err)
	}

	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &http.Client{
		Transport: &userAgentTransport{next: t, userAgent: userAgent},
		Timeout:   timeout,
	}, nil
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(r)
	}
	clone := r.Clone(r.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}
