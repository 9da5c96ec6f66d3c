package ipfs

import (
	"errors"
	"fmt"
)

// Common client errors
var (
	// ErrRemote matches any structured error reported by the daemon itself.
	// Use errors.Is(err, ErrRemote) to separate daemon rejections from
	// transport and decode failures.
	ErrRemote = errors.New("daemon error")

	// ErrDecode indicates a response body that matched neither the expected
	// shape nor the daemon error shape.
	ErrDecode = errors.New("undecodable response")

	// ErrSubscriptionClosed indicates the subscription was cancelled or the
	// daemon closed the stream.
	ErrSubscriptionClosed = errors.New("subscription closed")

	// ErrInvalidConfig indicates the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)

// APIError is the structured error payload the daemon returns in place of a
// result. The daemon answers errors with HTTP 500 and this JSON body, so the
// body shape, not the status code, is what classifies a response.
type APIError struct {
	Message string `json:"Message"`
	Code    int64  `json:"Code"`
	Type    string `json:"Type"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon error: %s (code %d, type %s)", e.Message, e.Code, e.Type)
}

// Is reports ErrRemote so callers classify daemon errors without naming the
// concrete type.
func (e *APIError) Is(target error) bool {
	return target == ErrRemote
}
