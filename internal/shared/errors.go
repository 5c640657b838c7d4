package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for pipeline outcomes. ErrLibraryUnavailable aborts the
// whole run; ErrInconsistentTaxonomy is per-track and is converted to a
// Decision at the orchestrator boundary.
var (
	ErrLibraryUnavailable   = errors.New("library API unavailable")
	ErrInconsistentTaxonomy = errors.New("playlist taxonomy is inconsistent")
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
}

// IsRetryableHTTPError checks if an HTTP error should be retried
func IsRetryableHTTPError(err error) bool {
	for err != nil {
		if httpErr, ok := err.(*HTTPError); ok {
			switch httpErr.StatusCode {
			case http.StatusServiceUnavailable, // 503
				http.StatusTooManyRequests, // 429
				http.StatusBadGateway,      // 502
				http.StatusGatewayTimeout:  // 504
				return true
			}
		}
		if unwrapped, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapped.Unwrap()
		} else {
			break
		}
	}
	return false
}
