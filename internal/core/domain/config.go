package domain

import (
	"fmt"
	"time"
)

// AuthScheme selects how the API key is presented to the remote service
type AuthScheme string

const (
	AuthSchemeAPIKey AuthScheme = "api-key"
	AuthSchemeBearer AuthScheme = "bearer"
)

// ParseAuthScheme converts a configuration string into an AuthScheme
func ParseAuthScheme(value string) (AuthScheme, error) {
	switch AuthScheme(value) {
	case "", AuthSchemeAPIKey:
		return AuthSchemeAPIKey, nil
	case AuthSchemeBearer:
		return AuthSchemeBearer, nil
	default:
		return "", fmt.Errorf("unsupported auth scheme: %s (must be %s or %s)", value, AuthSchemeAPIKey, AuthSchemeBearer)
	}
}

const (
	DefaultDomain       = "https://aigrants.co/"
	DefaultUserID       = "1"
	DefaultSessionPath  = "/chat/async"
	DefaultPollInterval = time.Second
)

// ConnectionConfig is the validated connection configuration for one run.
// It is built once by the config resolver and never mutated afterwards.
type ConnectionConfig struct {
	BaseURL      string
	APIKey       string
	Domain       string
	UserID       string
	AuthScheme   AuthScheme
	SessionPath  string
	PollInterval time.Duration

	// StoryAuthScheme applies to the story endpoints. Empty means bearer.
	StoryAuthScheme AuthScheme
}

// ForStories returns a copy of the config presenting the key the way the
// story endpoints expect it.
func (c ConnectionConfig) ForStories() ConnectionConfig {
	scheme := c.StoryAuthScheme
	if scheme == "" {
		scheme = AuthSchemeBearer
	}
	c.AuthScheme = scheme
	return c
}

// IdentificationHeaders returns the connection-level headers sent with the
// session request and the websocket handshake.
func (c ConnectionConfig) IdentificationHeaders() map[string]string {
	headers := map[string]string{
		"X-Domain":     c.Domain,
		"X-User-ID":    c.UserID,
		"Content-Type": "application/json",
	}
	if c.AuthScheme == AuthSchemeBearer {
		headers["Authorization"] = "Bearer " + c.APIKey
	} else {
		headers["X-API-Key"] = c.APIKey
	}
	return headers
}

// Endpoint joins the base URL with an absolute API path
func (c ConnectionConfig) Endpoint(path string) string {
	if path == "" {
		return c.BaseURL
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return c.BaseURL + path
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
