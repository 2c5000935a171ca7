package sous

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrEmptyMessage indicates a submitted message was blank after trimming.
	ErrEmptyMessage = errors.New("empty message")

	// ErrTurnInProgress indicates a message was submitted while a turn was
	// still sending or streaming.
	ErrTurnInProgress = errors.New("turn in progress")

	// ErrValidation indicates a configuration value failed validation.
	ErrValidation = errors.New("validation error")
)

// User-facing failure messages.
const (
	// FailureMessage replaces the reply when a turn fails for any reason
	// other than an error record.
	FailureMessage = "Sorry, I encountered an error. Please try again."

	// UpstreamTimeoutMessage is relayed when the generation backend times out.
	UpstreamTimeoutMessage = "The request timed out. Please try again."

	// UpstreamUnavailableMessage is relayed when the generation backend
	// cannot be reached or fails mid-stream.
	UpstreamUnavailableMessage = "Sorry, I'm having trouble connecting to the AI service. Please try again."
)

// StatusError is returned by a Client when the endpoint refuses the turn with
// a non-success HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error: status %d", e.Code)
	}
	return fmt.Sprintf("HTTP error: status %d: %s", e.Code, e.Body)
}

// ProtocolError is the error of a turn that ended with an error record.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Message
}
