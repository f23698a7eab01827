// Package cancel provides the cancellation token shared between the shutdown
// coordinator and the streaming client.
package cancel

import (
	"sync"
	"sync/atomic"
)

// Token is a set-once cancellation flag. The zero value is not usable; use New.
type Token struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
	reason    atomic.Value
}

// New creates an unset token
func New() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel sets the token. It reports true only for the call that set it.
func (t *Token) Cancel(reason string) bool {
	set := false
	t.once.Do(func() {
		t.reason.Store(reason)
		t.cancelled.Store(true)
		close(t.done)
		set = true
	})
	return set
}

// Cancelled reports whether the token has been set
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Done returns a channel closed when the token is set
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Reason returns the reason passed to the first Cancel call
func (t *Token) Reason() string {
	if r, ok := t.reason.Load().(string); ok {
		return r
	}
	return ""
}
