package anthropic

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sous"
)

// stream implements [sous.RecordStream] by parsing SSE events from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	model   string
	usage   sseUsage
	stop    string
	done    bool
	err     error // terminal error, if any
}

// Interface compliance check.
var _ sous.RecordStream = (*stream)(nil)

func newStream(body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
	}
}

// Next returns the next record. Returns io.EOF after the done or error
// record.
func (s *stream) Next() (sous.Record, error) {
	if s.err != nil {
		return sous.Record{}, s.err
	}
	if s.done {
		return sous.Record{}, io.EOF
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if errors.Is(err, io.EOF) {
			// message_stop ends a healthy stream before the body does.
			s.err = errors.New("anthropic: unexpected end of stream")
			return sous.Record{}, s.err
		}
		if err != nil {
			s.err = err
			return sous.Record{}, s.err
		}

		rec, ok, err := s.processEvent(eventType, data)
		if err != nil {
			s.err = err
			return sous.Record{}, s.err
		}
		if ok {
			if rec.Done || rec.IsError() {
				s.done = true
			}
			return rec, nil
		}
		// Non-text event (ping, message_start, etc.), keep reading.
	}
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	return s.body.Close()
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if v, ok := strings.CutPrefix(line, "event:"); ok {
			eventType = strings.TrimSpace(v)
		} else if v, ok := strings.CutPrefix(line, "data:"); ok {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(v, " "))
		}
		// Comments (lines starting with ':') and unknown fields are ignored.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps an SSE event to a record. ok is false for events that
// carry nothing for the reader.
func (s *stream) processEvent(eventType, data string) (sous.Record, bool, error) {
	switch eventType {
	case "message_start":
		var evt sseMessageStart
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return sous.Record{}, false, fmt.Errorf("anthropic: failed to parse message_start: %w", err)
		}
		s.model = evt.Message.Model
		s.usage.InputTokens = evt.Message.Usage.InputTokens
		return sous.Record{}, false, nil
	case "content_block_delta":
		var evt sseContentBlockDelta
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return sous.Record{}, false, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
		}
		if evt.Delta.Type != "text_delta" || evt.Delta.Text == "" {
			return sous.Record{}, false, nil
		}
		rec := sous.TextRecord(evt.Delta.Text)
		rec.Model = s.model
		return rec, true, nil
	case "message_delta":
		var evt sseMessageDelta
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return sous.Record{}, false, fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
		}
		s.usage.OutputTokens = evt.Usage.OutputTokens
		if evt.Delta.StopReason != nil {
			s.stop = *evt.Delta.StopReason
		}
		return sous.Record{}, false, nil
	case "message_stop":
		rec := sous.DoneRecord()
		rec.Model = s.model
		rec.DoneReason = s.stop
		rec.PromptEvalCount = s.usage.InputTokens
		rec.EvalCount = s.usage.OutputTokens
		return rec, true, nil
	case "error":
		var evt sseError
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return sous.Record{}, false, fmt.Errorf("anthropic: failed to parse error event: %w", err)
		}
		msg := evt.Error.Message
		if msg == "" {
			msg = "anthropic: " + evt.Error.Type
		}
		return sous.ErrorRecord(msg), true, nil
	default:
		// ping, content_block_start/stop and unknown types.
		return sous.Record{}, false, nil
	}
}
