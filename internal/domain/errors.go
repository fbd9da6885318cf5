package domain

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by every facade operation invoked before
// Connect (or after Disconnect). Callers must connect explicitly; there is
// no implicit reconnect.
var ErrNotConnected = errors.New("not connected to capability host")

// ErrNoValidCategories is returned when every requested trail category is
// unknown.
var ErrNoValidCategories = errors.New("no valid trail types specified (use: hiking, biking, or walking)")

// ConnectionError reports a failure to establish the capability session.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("connect: %v", e.Err) }
func (e *ConnectionError) Unwrap() error { return e.Err }

// ListingError reports a manifest fetch failure. Stage names which of the
// three listings failed; a partial fetch is surfaced as one ListingError and
// leaves no manifest behind.
type ListingError struct {
	Stage string // "tools" | "resources" | "prompts"
	Err   error
}

func (e *ListingError) Error() string { return fmt.Sprintf("list %s: %v", e.Stage, e.Err) }
func (e *ListingError) Unwrap() error { return e.Err }

// FilterReason is the machine-readable reason code carried by InvalidFilterError.
type FilterReason string

const (
	ReasonLatitudeRange  FilterReason = "latitude-range"
	ReasonLongitudeRange FilterReason = "longitude-range"
	ReasonLatitudeOrder  FilterReason = "latitude-order"
	ReasonLongitudeOrder FilterReason = "longitude-order"
	ReasonEmptyAreaName  FilterReason = "empty-area-name"
)

// InvalidFilterError reports bad geographic bounds or an empty area name.
// Always recovered into a user-facing string at the tool boundary.
type InvalidFilterError struct {
	Reason  FilterReason
	Message string
}

func (e *InvalidFilterError) Error() string { return e.Message }

// ToolNotFoundError reports a tool name absent from the current manifest.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string { return fmt.Sprintf("unknown tool: %q", e.Name) }

// RemoteExecutionError wraps any transport or backend failure, including
// timeouts and malformed responses.
type RemoteExecutionError struct {
	Op  string // e.g. "overpass query", "read resource"
	Err error
}

func (e *RemoteExecutionError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RemoteExecutionError) Unwrap() error { return e.Err }

// RoundLimitExceededError reports an orchestration loop that kept requesting
// tools past the configured round cap.
type RoundLimitExceededError struct {
	Rounds int
}

func (e *RoundLimitExceededError) Error() string {
	return fmt.Sprintf("reasoning loop exceeded %d rounds without a final answer", e.Rounds)
}
