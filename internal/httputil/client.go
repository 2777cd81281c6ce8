package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every provider request. There is no
// cancellation beyond this: a call completes, times out, or fails.
const DefaultTimeout = 10 * time.Second

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
