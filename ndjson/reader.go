package ndjson

import (
	"errors"
	"io"

	"github.com/fwojciec/sous"
)

const readSize = 32 * 1024

// Reader pulls records from an io.Reader one at a time.
type Reader struct {
	r       io.Reader
	dec     *Decoder
	buf     []byte
	pending []sous.Record
	err     error
}

// NewReader returns a Reader decoding records from r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{
		r:   r,
		dec: NewDecoder(opts...),
		buf: make([]byte, readSize),
	}
}

// Next returns the next record. It returns io.EOF after the last record of
// a stream that ended cleanly, or the read error of one that did not.
// Records decoded before a read error are returned first.
func (r *Reader) Next() (sous.Record, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return sous.Record{}, r.err
		}
		n, err := r.r.Read(r.buf)
		if n > 0 {
			r.pending = r.dec.Feed(r.buf[:n])
		}
		switch {
		case errors.Is(err, io.EOF):
			r.pending = append(r.pending, r.dec.Finish()...)
			r.err = io.EOF
		case err != nil:
			r.err = err
		}
	}
	rec := r.pending[0]
	r.pending = r.pending[1:]
	return rec, nil
}
