package mock

import (
	"io"
	"sync"

	"github.com/fwojciec/sous"
)

// Records returns a RecordStream that yields recs in order and then io.EOF.
func Records(recs ...sous.Record) *RecordStream {
	var mu sync.Mutex
	i := 0
	return &RecordStream{
		NextFn: func() (sous.Record, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(recs) {
				return sous.Record{}, io.EOF
			}
			rec := recs[i]
			i++
			return rec, nil
		},
	}
}
