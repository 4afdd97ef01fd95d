package session

import "sync/atomic"

// CancelToken is the cooperative cancellation flag shared between the
// streaming loop and the inbound event handling. The loop checks it once per
// chunk; cancellation never preempts a chunk already being written.
type CancelToken struct {
	flag atomic.Bool
}

func (t *CancelToken) Cancel() {
	t.flag.Store(true)
}

func (t *CancelToken) Cancelled() bool {
	return t.flag.Load()
}
