// Package signals turns process interrupt and termination signals into a
// single cancellation of the active stream.
package signals

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"aigrants.co/cli/internal/core/cancel"
)

// ShutdownNotice is printed once, on the first signal
const ShutdownNotice = "Shutdown signal received. Closing connection gracefully..."

// Coordinator sets the cancellation token when a shutdown signal arrives
type Coordinator struct {
	token   *cancel.Token
	logger  zerolog.Logger
	watched []os.Signal

	outMu sync.Mutex
	out   io.Writer

	signals  chan os.Signal
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithOutput sets where the shutdown notice is written
func WithOutput(w io.Writer) Option {
	return func(c *Coordinator) {
		if w != nil {
			c.out = w
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithSignals replaces the watched signal set
func WithSignals(sigs ...os.Signal) Option {
	return func(c *Coordinator) {
		if len(sigs) > 0 {
			c.watched = sigs
		}
	}
}

// New creates a coordinator without registering any handler
func New(token *cancel.Token, opts ...Option) *Coordinator {
	c := &Coordinator{
		token:   token,
		out:     os.Stderr,
		logger:  zerolog.Nop(),
		watched: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Install creates a coordinator and registers it for SIGINT and SIGTERM
func Install(token *cancel.Token, opts ...Option) *Coordinator {
	c := New(token, opts...)
	c.Start()
	return c
}

// Start registers the signal handlers. Call Stop to release them.
func (c *Coordinator) Start() {
	signal.Notify(c.signals, c.watched...)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case sig := <-c.signals:
				c.Trigger(sig)
			case <-c.done:
				return
			}
		}
	}()
}

// Trigger handles one shutdown request. Only the first call sets the token
// and prints the notice; it reports whether this call was that one.
func (c *Coordinator) Trigger(sig os.Signal) bool {
	reason := "shutdown requested"
	if sig != nil {
		reason = "signal: " + sig.String()
	}
	if !c.token.Cancel(reason) {
		c.logger.Debug().Str("reason", reason).Msg("shutdown already in progress")
		return false
	}

	c.outMu.Lock()
	fmt.Fprintln(c.out, ShutdownNotice)
	c.outMu.Unlock()
	c.logger.Info().Str("reason", reason).Msg("shutdown requested")
	return true
}

// Mute discards the shutdown notice until the returned function is called.
// Used while a full-screen view owns the terminal.
func (c *Coordinator) Mute() (restore func()) {
	c.outMu.Lock()
	prev := c.out
	c.out = io.Discard
	c.outMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.outMu.Lock()
			c.out = prev
			c.outMu.Unlock()
		})
	}
}

// Token returns the token this coordinator sets
func (c *Coordinator) Token() *cancel.Token {
	return c.token
}

// Stop deregisters the handlers and waits for the watcher to exit
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		signal.Stop(c.signals)
		close(c.done)
	})
	c.wg.Wait()
}
