package scraper

import (
	"errors"
	"fmt"
)

// ErrTimeout marks a request that exceeded the fixed per-request timeout.
// It wraps the underlying transport error so callers can match with
// errors.Is.
var ErrTimeout = errors.New("request timed out")

// UpstreamError means the platform API responded but signaled an
// application-level error in its payload. Distinguished from transport
// failures so an external scheduler can decide whether a retry makes sense.
type UpstreamError struct {
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("upstream error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream error: %s", e.Message)
}

// MalformedResponseError means the response body was not valid JSON.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
