package gemini

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/fwojciec/sous"
	"google.golang.org/genai"
)

// stream implements [sous.RecordStream] over the SDK's streaming iterator.
// Each response chunk becomes a text record; a done record carrying the
// final usage is appended when the iterator ends.
type stream struct {
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	model   string
	started time.Time
	usage   *genai.GenerateContentResponseUsageMetadata
	done    bool
	err     error
}

// Interface compliance check.
var _ sous.RecordStream = (*stream)(nil)

func newStream(seq iter.Seq2[*genai.GenerateContentResponse, error], model string) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		pull:    next,
		stop:    stop,
		model:   model,
		started: time.Now(),
	}
}

func (s *stream) Next() (sous.Record, error) {
	if s.err != nil {
		return sous.Record{}, s.err
	}
	if s.done {
		return sous.Record{}, io.EOF
	}
	for {
		resp, err, ok := s.pull()
		if !ok {
			s.done = true
			return s.doneRecord(), nil
		}
		if err != nil {
			s.err = fmt.Errorf("gemini: %w", err)
			return sous.Record{}, s.err
		}
		if resp == nil {
			continue
		}
		if resp.ModelVersion != "" {
			s.model = resp.ModelVersion
		}
		if resp.UsageMetadata != nil {
			s.usage = resp.UsageMetadata
		}
		if text := responseText(resp); text != "" {
			rec := sous.TextRecord(text)
			rec.Model = s.model
			return rec, nil
		}
	}
}

func (s *stream) doneRecord() sous.Record {
	rec := sous.DoneRecord()
	rec.Model = s.model
	rec.DoneReason = "stop"
	elapsed := time.Since(s.started).Nanoseconds()
	rec.EvalDuration = elapsed
	rec.TotalDuration = elapsed
	if s.usage != nil {
		rec.PromptEvalCount = int(s.usage.PromptTokenCount)
		rec.EvalCount = int(s.usage.CandidatesTokenCount)
	}
	return rec
}

func (s *stream) Close() error {
	s.stop()
	return nil
}

// responseText concatenates the non-thought text parts of the first
// candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
