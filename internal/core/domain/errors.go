package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingStoryID = errors.New("story ID cannot be empty")
	ErrEmptyAddress   = errors.New("response did not contain a socket address")
)

// ConfigError reports a missing or malformed configuration value
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// NewConfigError creates a ConfigError for the given field
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SessionError reports a failed request against the story API. StatusCode is
// zero when the request never produced a response.
type SessionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SessionError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("session request failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("session request failed with status %d: %v: %s", e.StatusCode, e.Err, e.Body)
	default:
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
	}
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// ConnectError reports a failed websocket handshake
type ConnectError struct {
	Address    StreamAddress
	StatusCode int
	Err        error
}

func (e *ConnectError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to connect to %s (status %d): %v", e.Address, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
