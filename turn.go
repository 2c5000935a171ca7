package sous

import "time"

// TurnState is the state of a chat turn.
type TurnState int

const (
	TurnIdle      TurnState = iota // No turn in progress.
	TurnSending                    // Request issued, awaiting the response body.
	TurnStreaming                  // Response body readable, reply accumulating.
	TurnCompleted                  // Done record seen or stream ended cleanly.
	TurnFailed                     // Admission, transfer or protocol failure.
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnSending:
		return "sending"
	case TurnStreaming:
		return "streaming"
	case TurnCompleted:
		return "completed"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further records are processed in this state.
func (s TurnState) Terminal() bool {
	return s == TurnCompleted || s == TurnFailed
}

// Turn is the outcome of one user-message-to-reply exchange.
type Turn struct {
	ID      string
	Message string
	State   TurnState

	// Reply is the concatenation of every delta received. It is not
	// modified once the turn is terminal.
	Reply string
	// Display is the text the user sees for this turn: Reply when
	// completed, the failure message when failed.
	Display string
	// Err is the cause of a failed turn.
	Err error

	Model    string
	Usage    Usage
	Started  time.Time
	Finished time.Time
}

// Elapsed returns the wall-clock duration of the turn.
func (t *Turn) Elapsed() time.Duration {
	if t.Finished.IsZero() {
		return 0
	}
	return t.Finished.Sub(t.Started)
}
