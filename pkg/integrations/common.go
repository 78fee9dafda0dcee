package integrations

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds registry requests when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// userAgent identifies the bundler to registry mirrors.
const userAgent = "starelements-bundler"

// NewHTTPClient creates an HTTP client for registry requests. Timeouts are
// applied per request through the context, so the client itself has none.
func NewHTTPClient() *http.Client {
	return &http.Client{}
}
