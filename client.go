package sous

import (
	"context"
	"io"
)

// ChatRequest is the body sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// Client issues a chat request and returns the streaming response body.
// A non-success status is reported as a *StatusError before any of the body
// is returned. The caller closes the body.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (io.ReadCloser, error)
}

// Decoder turns raw response bytes into records, holding back any partial
// record until the bytes that complete it arrive.
type Decoder interface {
	Feed(chunk []byte) []Record
	Finish() []Record
}

// Renderer presents a turn as it streams. OnDelta always receives the full
// reply so far, never just the increment.
type Renderer interface {
	OnTurnStart()
	OnDelta(fullText string)
	OnFailure(message string)
	OnComplete()
}
