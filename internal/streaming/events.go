package streaming

import (
	"time"

	"aigrants.co/cli/internal/core/domain"
)

// StreamEvent represents events in the stream lifecycle
type StreamEvent struct {
	Type      StreamEventType
	Message   string
	Timestamp int64
	Data      interface{}
}

// StreamEventType represents different types of stream events
type StreamEventType string

const (
	StreamEventConnected    StreamEventType = "connected"
	StreamEventDisconnected StreamEventType = "disconnected"
	StreamEventError        StreamEventType = "error"
	StreamEventDataReceived StreamEventType = "data_received"
)

func newEvent(typ StreamEventType, message string, data interface{}) StreamEvent {
	return StreamEvent{Type: typ, Message: message, Timestamp: time.Now().UnixMilli(), Data: data}
}

// FrameHandler observes the stream. Handlers run on the receive loop, so they
// must not block.
type FrameHandler interface {
	// HandleFrame is called for every frame, malformed ones included
	HandleFrame(msg domain.InboundMessage)

	// HandleStreamEvent processes stream lifecycle events
	HandleStreamEvent(event StreamEvent)
}

// NopHandler discards everything
type NopHandler struct{}

func (NopHandler) HandleFrame(domain.InboundMessage) {}
func (NopHandler) HandleStreamEvent(StreamEvent)     {}

// HandlerFuncs adapts plain functions to FrameHandler. Nil fields are skipped.
type HandlerFuncs struct {
	OnFrame func(msg domain.InboundMessage)
	OnEvent func(event StreamEvent)
}

func (h HandlerFuncs) HandleFrame(msg domain.InboundMessage) {
	if h.OnFrame != nil {
		h.OnFrame(msg)
	}
}

func (h HandlerFuncs) HandleStreamEvent(event StreamEvent) {
	if h.OnEvent != nil {
		h.OnEvent(event)
	}
}
