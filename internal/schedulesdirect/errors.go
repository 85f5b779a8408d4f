// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedulesdirect

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrAuth          = errors.New("schedulesdirect: authentication failed")
	ErrUnavailable   = errors.New("schedulesdirect: host unreachable or transport failure")
	ErrUpstreamError = errors.New("schedulesdirect: upstream returned an error")
	ErrBadResponse   = errors.New("schedulesdirect: invalid response format or malformed data")
	ErrTimeout       = errors.New("schedulesdirect: request timed out")
	ErrNoToken       = errors.New("schedulesdirect: not authenticated")
)

// APIError is a rich error type that wraps the sentinel errors with context.
type APIError struct {
	Sentinel error
	Op       string
	Status   int    // HTTP status, 0 when no response was received
	Code     int    // Schedules Direct response code, 0 when absent
	Message  string // upstream message or a short body excerpt
	Err      error  // Nested lower-level error (e.g. net.Error)
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Sentinel
}
