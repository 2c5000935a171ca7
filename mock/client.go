// Package mock provides test doubles for sous interfaces using function fields.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/sous"
)

// Interface compliance checks.
var (
	_ sous.Client   = (*Client)(nil)
	_ sous.Renderer = (*Renderer)(nil)
)

// Client is a test double for sous.Client.
// Set ChatFn before calling Chat.
type Client struct {
	ChatFn func(ctx context.Context, req sous.ChatRequest) (io.ReadCloser, error)
}

// Chat delegates to ChatFn.
func (c *Client) Chat(ctx context.Context, req sous.ChatRequest) (io.ReadCloser, error) {
	return c.ChatFn(ctx, req)
}

// Renderer is a test double for sous.Renderer.
// All function fields are nil-safe: an unset callback is a no-op, since most
// tests only care about one or two of them.
type Renderer struct {
	OnTurnStartFn func()
	OnDeltaFn     func(fullText string)
	OnFailureFn   func(message string)
	OnCompleteFn  func()
}

// OnTurnStart delegates to OnTurnStartFn.
func (r *Renderer) OnTurnStart() {
	if r.OnTurnStartFn != nil {
		r.OnTurnStartFn()
	}
}

// OnDelta delegates to OnDeltaFn.
func (r *Renderer) OnDelta(fullText string) {
	if r.OnDeltaFn != nil {
		r.OnDeltaFn(fullText)
	}
}

// OnFailure delegates to OnFailureFn.
func (r *Renderer) OnFailure(message string) {
	if r.OnFailureFn != nil {
		r.OnFailureFn(message)
	}
}

// OnComplete delegates to OnCompleteFn.
func (r *Renderer) OnComplete() {
	if r.OnCompleteFn != nil {
		r.OnCompleteFn()
	}
}
