package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StreamAddress identifies the websocket endpoint returned by a session start
type StreamAddress string

// NewStreamAddress validates a raw address returned by the API
func NewStreamAddress(value string) (StreamAddress, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptyAddress
	}
	return StreamAddress(value), nil
}

func (a StreamAddress) String() string {
	return string(a)
}

// MessageTypeTerminate marks the natural end of a stream
const MessageTypeTerminate = "terminate"

// InboundMessage is a single frame received from the stream
type InboundMessage struct {
	Raw []byte
	// Type is empty for frames that are not JSON objects or carry no type field.
	Type string
	// Valid reports whether the frame decoded as a JSON object.
	Valid bool
}

// DecodeMessage decodes a frame. It never fails: frames that are not JSON
// objects are returned with Valid set to false.
func DecodeMessage(raw []byte) InboundMessage {
	msg := InboundMessage{Raw: raw}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return msg
	}

	var envelope struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return msg
	}
	msg.Valid = true

	var typ string
	if len(envelope.Type) > 0 && json.Unmarshal(envelope.Type, &typ) == nil {
		msg.Type = typ
	}
	return msg
}

// IsTerminate reports whether the message is the terminate marker
func (m InboundMessage) IsTerminate() bool {
	return m.Valid && m.Type == MessageTypeTerminate
}

// Text returns the frame as text
func (m InboundMessage) Text() string {
	return string(m.Raw)
}

// StreamState is the receive loop state
type StreamState string

const (
	StreamStateConnecting StreamState = "connecting"
	StreamStateOpen       StreamState = "open"
	StreamStateCompleted  StreamState = "completed"
	StreamStateClosed     StreamState = "closed"
	StreamStateCancelled  StreamState = "cancelled"
)

// Outcome is the terminal result of a stream
type Outcome string

const (
	OutcomeCompleted    Outcome = "natural completion"
	OutcomeRemoteClosed Outcome = "remote closed"
	OutcomeCancelled    Outcome = "cancelled by caller"
)

// Successful reports whether the outcome counts as a clean run
func (o Outcome) Successful() bool {
	return o == OutcomeCompleted || o == OutcomeCancelled
}

// State maps the outcome to the terminal loop state
func (o Outcome) State() StreamState {
	switch o {
	case OutcomeCompleted:
		return StreamStateCompleted
	case OutcomeCancelled:
		return StreamStateCancelled
	default:
		return StreamStateClosed
	}
}

// StreamResult summarizes a finished stream
type StreamResult struct {
	Outcome         Outcome
	FramesReceived  int
	MalformedFrames int
	// Cause holds the transport error behind OutcomeRemoteClosed.
	Cause error
}
