package broute

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

// lazyBody reads the underlying stream at most once. Callers arriving while the read is in
// progress wait for the same result.
type lazyBody struct {
	src  io.Reader
	once sync.Once
	done chan struct{}
	val  *string
	err  error
}

func newLazyBody(src io.Reader) *lazyBody {
	return &lazyBody{src: src, done: make(chan struct{})}
}

func (b *lazyBody) get(ctx context.Context) (*string, error) {
	b.once.Do(func() { go b.read() })

	select {
	case <-b.done:
		return b.val, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *lazyBody) read() {
	defer close(b.done)
	if b.src == nil {
		return
	}

	data, err := io.ReadAll(b.src)
	if err != nil {
		b.err = errors.Wrap(err, "read request body")
		return
	}

	if len(data) == 0 {
		return
	}

	s := string(data)
	b.val = &s
}
