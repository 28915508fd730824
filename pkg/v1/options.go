package v1

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	timeout    time.Duration
}

// WithBaseURL points the client at a server other than localhost:5000.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithSession resumes an existing conversation.
func WithSession(id string) Option {
	return func(c *clientConfig) {
		c.sessionID = id
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}
