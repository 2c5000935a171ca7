package sous

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one newline-delimited JSON object of a chat response stream.
//
// Exactly one case applies per record, checked in this order: a non-empty
// Error makes it an error record, otherwise a non-nil Response carries a text
// delta, and Done marks the end of the reply. Done may accompany a final
// Response. A record with none of these set is ignored.
//
// The remaining fields are the generation statistics an Ollama-compatible
// upstream attaches to its records; they are zero when absent.
type Record struct {
	Response *string `json:"response,omitempty"`
	Done     bool    `json:"done,omitempty"`
	Error    string  `json:"error,omitempty"`

	Model           string `json:"model,omitempty"`
	DoneReason      string `json:"done_reason,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	EvalDuration    int64  `json:"eval_duration,omitempty"`  // nanoseconds
	TotalDuration   int64  `json:"total_duration,omitempty"` // nanoseconds
}

// UnmarshalJSON decodes a record object. Keys match exactly; unknown keys and
// keys that differ only in case are ignored.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var rec Record
	for key, dst := range map[string]any{
		"response":          &rec.Response,
		"done":              &rec.Done,
		"error":             &rec.Error,
		"model":             &rec.Model,
		"done_reason":       &rec.DoneReason,
		"prompt_eval_count": &rec.PromptEvalCount,
		"eval_count":        &rec.EvalCount,
		"eval_duration":     &rec.EvalDuration,
		"total_duration":    &rec.TotalDuration,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("record key %q: %w", key, err)
		}
	}
	*r = rec
	return nil
}

// TextRecord returns a record carrying a text delta.
func TextRecord(delta string) Record {
	return Record{Response: &delta}
}

// DoneRecord returns the terminal success marker.
func DoneRecord() Record {
	return Record{Done: true}
}

// ErrorRecord returns a terminal failure record with a user-facing message.
func ErrorRecord(msg string) Record {
	return Record{Error: msg}
}

// IsError reports whether the record is a terminal failure.
func (r Record) IsError() bool {
	return r.Error != ""
}

// Delta returns the text delta carried by the record, if any.
// An empty string is still a delta when the key was present.
func (r Record) Delta() (string, bool) {
	if r.Response == nil {
		return "", false
	}
	return *r.Response, true
}

// Usage returns the token statistics carried by the record.
func (r Record) Usage() Usage {
	return Usage{
		PromptTokens:     r.PromptEvalCount,
		CompletionTokens: r.EvalCount,
		EvalDuration:     time.Duration(r.EvalDuration),
		TotalDuration:    time.Duration(r.TotalDuration),
	}
}

// Usage tracks token consumption reported by the generation endpoint.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	EvalDuration     time.Duration
	TotalDuration    time.Duration
}

// TokensPerSecond returns the generation rate, or 0 when unknown.
func (u Usage) TokensPerSecond() float64 {
	if u.EvalDuration <= 0 {
		return 0
	}
	return float64(u.CompletionTokens) / u.EvalDuration.Seconds()
}
