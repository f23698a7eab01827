package streaming

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"aigrants.co/cli/internal/core/cancel"
	"aigrants.co/cli/internal/core/domain"
	httpinfra "aigrants.co/cli/internal/infrastructure/http"
)

const (
	defaultHandshakeTimeout = 15 * time.Second
	defaultCloseTimeout     = 2 * time.Second

	// maxFrameSize matches the HTTP response body cap
	maxFrameSize = 4 << 20
)

// Client follows one generation stream until it terminates
type Client struct {
	dialer       *websocket.Dialer
	headers      http.Header
	pollInterval time.Duration
	closeTimeout time.Duration
	handler      FrameHandler
	logger       zerolog.Logger

	mu    sync.RWMutex
	state domain.StreamState
}

// Option configures a Client
type Option func(*Client)

// WithHandler sets the frame and lifecycle observer
func WithHandler(h FrameHandler) Option {
	return func(c *Client) {
		if h != nil {
			c.handler = h
		}
	}
}

// WithPollInterval overrides the bounded receive wait
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithCloseTimeout bounds how long a client-initiated close waits for the peer
func WithCloseTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.closeTimeout = d
		}
	}
}

// NewClient creates a streaming client sending the config's identification
// headers on the handshake.
func NewClient(cfg domain.ConnectionConfig, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		headers:      httpinfra.IdentificationHeader(cfg, nil),
		pollInterval: cfg.PollInterval,
		closeTimeout: defaultCloseTimeout,
		handler:      NopHandler{},
		logger:       logger,
		state:        domain.StreamStateConnecting,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = domain.DefaultPollInterval
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current loop state
func (c *Client) State() domain.StreamState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s domain.StreamState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Stream connects to addr and runs the receive loop until the terminate
// marker arrives, the remote side closes, or token (or ctx) is cancelled.
// Only a failed handshake is returned as an error; every other ending is
// reported through the result's Outcome. The connection is closed on every path.
func (c *Client) Stream(ctx context.Context, addr domain.StreamAddress, token *cancel.Token) (domain.StreamResult, error) {
	if token == nil {
		token = cancel.New()
	}
	c.setState(domain.StreamStateConnecting)
	c.logger.Info().Str("address", addr.String()).Msg("connecting to stream")

	conn, resp, err := c.dialer.DialContext(ctx, addr.String(), c.headers)
	if err != nil {
		c.setState(domain.StreamStateClosed)
		connectErr := &domain.ConnectError{Address: addr, Err: err}
		if resp != nil {
			connectErr.StatusCode = resp.StatusCode
		}
		c.handler.HandleStreamEvent(newEvent(StreamEventError, connectErr.Error(), connectErr))
		return domain.StreamResult{}, connectErr
	}

	conn.SetReadLimit(maxFrameSize)
	c.setState(domain.StreamStateOpen)
	c.handler.HandleStreamEvent(newEvent(StreamEventConnected, "connected to stream", addr))
	c.logger.Info().Msg("connected, waiting for messages")

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- data:
			case <-done:
				return
			}
		}
	}()

	result := c.receive(ctx, token, frames, readErr)
	c.setState(result.Outcome.State())

	if result.Outcome != domain.OutcomeRemoteClosed {
		c.closePolitely(conn, frames, readErr)
	}
	close(done)
	conn.Close()
	wg.Wait()

	c.handler.HandleStreamEvent(newEvent(StreamEventDisconnected, string(result.Outcome), result))
	c.logger.Info().
		Str("outcome", string(result.Outcome)).
		Int("frames", result.FramesReceived).
		Int("malformed", result.MalformedFrames).
		Msg("stream finished")

	return result, nil
}

// receive is the Open state. Each iteration polls the token, then waits at
// most one poll interval for a frame.
func (c *Client) receive(ctx context.Context, token *cancel.Token, frames <-chan []byte, readErr <-chan error) domain.StreamResult {
	var result domain.StreamResult

	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for {
		if token.Cancelled() {
			result.Outcome = domain.OutcomeCancelled
			return result
		}
		timer.Reset(c.pollInterval)

		select {
		case data := <-frames:
			result.FramesReceived++
			msg := domain.DecodeMessage(data)
			if !msg.Valid {
				result.MalformedFrames++
				c.logger.Debug().Int("bytes", len(data)).Msg("ignoring malformed frame")
			}
			c.handler.HandleFrame(msg)
			c.handler.HandleStreamEvent(newEvent(StreamEventDataReceived, msg.Type, msg))

			if msg.IsTerminate() {
				result.Outcome = domain.OutcomeCompleted
				return result
			}

		case err := <-readErr:
			result.Outcome = domain.OutcomeRemoteClosed
			result.Cause = err
			if !isNormalClose(err) {
				c.logger.Warn().Err(err).Msg("stream connection lost")
			}
			return result

		case <-timer.C:

		case <-token.Done():

		case <-ctx.Done():
			token.Cancel(ctx.Err().Error())
		}
	}
}

// closePolitely sends a normal closure and waits briefly for the peer to
// acknowledge it. The wait never exceeds one poll interval. Frames still in
// flight are discarded.
func (c *Client) closePolitely(conn *websocket.Conn, frames <-chan []byte, readErr <-chan error) {
	wait := min(c.closeTimeout, c.pollInterval)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait)); err != nil {
		c.logger.Debug().Err(err).Msg("failed to send close frame")
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-frames:
		case <-readErr:
			return
		case <-timer.C:
			return
		}
	}
}

func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
