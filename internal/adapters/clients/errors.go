// Package clients is the outbound HTTP client for the characters backend:
// retries with backoff, a circuit breaker, tracing, metrics and request id
// propagation.
package clients

import "errors"

// Transport-level failures. The acl package turns them into domain errors.
var (
	// ErrCircuitOpen means the call was refused without reaching the backend.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once every
	// attempt has failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
