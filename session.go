package sous

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultReadSize = 32 * 1024

// Session drives chat turns against a Client, one at a time, reporting each
// turn's progress to a Renderer.
type Session struct {
	client     Client
	renderer   Renderer
	newDecoder func() Decoder
	logger     *zap.Logger
	now        func() time.Time
	readSize   int

	mu    sync.Mutex
	state TurnState
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source used to stamp turns.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithReadSize sets the buffer size used to read the response body.
func WithReadSize(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.readSize = n
		}
	}
}

// NewSession creates an idle Session. newDecoder is called once per turn so
// no decoding state leaks between turns.
func NewSession(client Client, renderer Renderer, newDecoder func() Decoder, opts ...SessionOption) *Session {
	s := &Session{
		client:     client,
		renderer:   renderer,
		newDecoder: newDecoder,
		logger:     zap.NewNop(),
		now:        time.Now,
		readSize:   defaultReadSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current turn state. Safe for concurrent use.
func (s *Session) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st TurnState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// begin moves the session from Idle to Sending. It reports false when another
// turn holds the session.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TurnIdle {
		return false
	}
	s.state = TurnSending
	return true
}

// Submit runs one turn for text and blocks until it completes or fails.
//
// It returns ErrEmptyMessage for blank text and ErrTurnInProgress when a turn
// is already running; in both cases nothing is sent and the state is
// unchanged. Failures inside the turn are not returned as errors: they are
// reported to the Renderer and recorded on the returned Turn. The session is
// Idle again when Submit returns.
func (s *Session) Submit(ctx context.Context, text string) (*Turn, error) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	if !s.begin() {
		return nil, ErrTurnInProgress
	}
	defer s.setState(TurnIdle)

	turn := &Turn{
		ID:      uuid.NewString(),
		Message: msg,
		State:   TurnSending,
		Started: s.now(),
	}
	log := s.logger.With(zap.String("turn", turn.ID))
	log.Debug("turn sending", zap.Int("message_len", len(msg)))

	body, err := s.client.Chat(ctx, ChatRequest{Message: msg})
	if err != nil {
		s.fail(log, turn, "", err, FailureMessage)
		return turn, nil
	}
	defer body.Close()

	s.transition(turn, TurnStreaming)
	log.Debug("turn streaming")
	s.renderer.OnTurnStart()

	s.consume(log, turn, body, s.newDecoder())
	return turn, nil
}

// consume reads body until a terminal state is reached. Records decoded
// after the terminal record, and any bytes still unread, are dropped.
func (s *Session) consume(log *zap.Logger, turn *Turn, body io.Reader, dec Decoder) {
	var reply strings.Builder
	buf := make([]byte, s.readSize)
	for {
		n, err := body.Read(buf)
		if n > 0 && s.apply(log, turn, &reply, dec.Feed(buf[:n])) {
			return
		}
		if errors.Is(err, io.EOF) {
			if s.apply(log, turn, &reply, dec.Finish()) {
				return
			}
			s.complete(log, turn, reply.String())
			return
		}
		if err != nil {
			s.fail(log, turn, reply.String(), fmt.Errorf("read response: %w", err), FailureMessage)
			return
		}
	}
}

// apply processes records in order and reports whether the turn reached a
// terminal state.
func (s *Session) apply(log *zap.Logger, turn *Turn, reply *strings.Builder, recs []Record) bool {
	for _, rec := range recs {
		if rec.Model != "" {
			turn.Model = rec.Model
		}
		if rec.IsError() {
			s.fail(log, turn, reply.String(), &ProtocolError{Message: rec.Error}, rec.Error)
			return true
		}
		if delta, ok := rec.Delta(); ok {
			reply.WriteString(delta)
			s.renderer.OnDelta(reply.String())
		}
		if rec.Done {
			turn.Usage = rec.Usage()
			s.complete(log, turn, reply.String())
			return true
		}
	}
	return false
}

func (s *Session) complete(log *zap.Logger, turn *Turn, reply string) {
	turn.Reply = reply
	turn.Display = reply
	turn.Finished = s.now()
	s.transition(turn, TurnCompleted)
	log.Debug("turn completed",
		zap.Int("reply_len", len(reply)),
		zap.Int("completion_tokens", turn.Usage.CompletionTokens),
		zap.Duration("elapsed", turn.Elapsed()))
	s.renderer.OnComplete()
}

func (s *Session) fail(log *zap.Logger, turn *Turn, reply string, err error, display string) {
	turn.Reply = reply
	turn.Display = display
	turn.Err = err
	turn.Finished = s.now()
	s.transition(turn, TurnFailed)
	log.Warn("turn failed", zap.Error(err))
	s.renderer.OnFailure(display)
}

func (s *Session) transition(turn *Turn, st TurnState) {
	turn.State = st
	s.setState(st)
}
