package ndjson

import (
	"encoding/json"
	"io"

	"github.com/fwojciec/sous"
)

// Encoder writes records as newline-delimited JSON.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Encode writes rec followed by a newline.
func (e *Encoder) Encode(rec sous.Record) error {
	return e.enc.Encode(rec)
}
