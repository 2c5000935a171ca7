// Package ndjson decodes newline-delimited JSON chat records from a byte
// stream that arrives in chunks of arbitrary size.
//
// Chunks need not align with records or even with characters: a record
// split across chunks is held until its newline arrives, and a multi-byte
// UTF-8 sequence split across chunks is held until it is complete.
package ndjson

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/fwojciec/sous"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Interface compliance check.
var _ sous.Decoder = (*Decoder)(nil)

// Decoder is a push-based record decoder for a single response stream.
// It is not safe for concurrent use and cannot be reused after Finish.
type Decoder struct {
	text   transform.Transformer
	held   []byte // incomplete UTF-8 sequence from the previous chunk
	buf    []byte // decoded text after the last newline
	logger *zap.Logger
	spent  bool
}

// Option configures a [Decoder] or [Reader].
type Option func(*Decoder)

// WithLogger sets the logger that receives malformed-record diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates a Decoder for one response stream.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		// UTF8BOM strips a leading byte order mark and replaces invalid
		// bytes with U+FFFD, matching a browser TextDecoder.
		text:   unicode.UTF8BOM.NewDecoder(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Feed decodes chunk and returns the records completed by it, in stream
// order. Text after the last newline is kept for the next call.
func (d *Decoder) Feed(chunk []byte) []sous.Record {
	if d.spent || len(chunk) == 0 {
		return nil
	}
	d.buf = append(d.buf, d.decode(chunk, false)...)
	return d.drain()
}

// Finish flushes the stream at end of input. Remaining text is parsed as a
// final record when it is not blank. The Decoder is spent afterwards.
func (d *Decoder) Finish() []sous.Record {
	if d.spent {
		return nil
	}
	d.spent = true
	d.buf = append(d.buf, d.decode(nil, true)...)
	recs := d.drain()
	if rec, ok := d.parse(d.buf); ok {
		recs = append(recs, rec)
	}
	d.buf, d.held = nil, nil
	return recs
}

// decode converts src to UTF-8 text, holding back a trailing incomplete
// sequence unless atEOF.
func (d *Decoder) decode(chunk []byte, atEOF bool) []byte {
	src := append(d.held, chunk...)
	d.held = nil
	if len(src) == 0 {
		return nil
	}
	// Each invalid byte expands to the 3-byte replacement character.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	var out []byte
	for {
		nDst, nSrc, err := d.text.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]
		switch err {
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			d.held = append([]byte(nil), src...)
		}
		return out
	}
}

// drain splits complete lines off the buffer and parses them.
func (d *Decoder) drain() []sous.Record {
	var recs []sous.Record
	rest := d.buf
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		if rec, ok := d.parse(rest[:i]); ok {
			recs = append(recs, rec)
		}
		rest = rest[i+1:]
	}
	if len(rest) != len(d.buf) {
		d.buf = append([]byte(nil), rest...)
	}
	return recs
}

// parse decodes one line. Blank lines are skipped silently; lines that are
// not a JSON object are logged and skipped.
func (d *Decoder) parse(line []byte) (sous.Record, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return sous.Record{}, false
	}
	var rec sous.Record
	if err := json.Unmarshal(line, &rec); err != nil {
		d.logger.Warn("discarding malformed record",
			zap.ByteString("line", line),
			zap.Error(err))
		return sous.Record{}, false
	}
	return rec, true
}
