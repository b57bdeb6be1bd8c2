package config

import (
	"net/http"
)

// NewHTTPClient builds the client used for all upstream REST calls. The
// timeout bounds every request; retry policy lives in the adapter.
func NewHTTPClient(cfg *AppConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}
}
