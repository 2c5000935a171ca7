package gemini

import (
	"iter"

	"github.com/fwojciec/sous"
	"google.golang.org/genai"
)

// NewStreamFromIter exposes the stream constructor to tests.
func NewStreamFromIter(seq iter.Seq2[*genai.GenerateContentResponse, error], model string) sous.RecordStream {
	return newStream(seq, model)
}
