package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"aigrants.co/cli/internal/core/domain"
)

const (
	minAPIKeyLength = 32
	maxAPIKeyLength = 256

	minPollInterval = 10 * time.Millisecond
	maxPollInterval = time.Minute
)

// ConfigValidator validates and normalizes configuration values
type ConfigValidator struct {
	allowedKeyChars string
	placeholders    []string
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		// Base64 and the usual token punctuation
		allowedKeyChars: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._/+=",
		placeholders: []string{
			"your-api-key-here",
			"xxxx-xxxx-xxxx-xxxx",
			"<api-key>",
			"[api-key]",
			"${API_KEY}",
			"$API_KEY",
			"REPLACE_ME",
			"CHANGE_ME",
		},
	}
}

// NormalizeBaseURL validates an API base URL and strips trailing slashes
func (v *ConfigValidator) NormalizeBaseURL(raw string) (string, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return "", domain.NewConfigError("api_url", "API URL cannot be empty")
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return "", domain.NewConfigError("api_url", "invalid API URL format: %s (must start with http:// or https://)", endpoint)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", domain.NewConfigError("api_url", "invalid URL format: %v", err)
	}
	if u.Host == "" {
		return "", domain.NewConfigError("api_url", "URL must include host")
	}

	return strings.TrimRight(endpoint, "/"), nil
}

// NormalizeAPIKey trims the key, drops a leading Bearer prefix, and checks its
// length and character set.
func (v *ConfigValidator) NormalizeAPIKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if len(key) >= 7 && strings.EqualFold(key[:7], "bearer ") {
		key = strings.TrimSpace(key[7:])
	}

	if key == "" {
		return "", domain.NewConfigError("api_key", "API key cannot be empty")
	}

	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return "", domain.NewConfigError("api_key", "API key contains whitespace characters")
	}

	if len(key) < minAPIKeyLength {
		return "", domain.NewConfigError("api_key", "API key seems too short: %d chars (minimum %d)", len(key), minAPIKeyLength)
	}
	if len(key) > maxAPIKeyLength {
		return "", domain.NewConfigError("api_key", "API key too long (maximum %d characters)", maxAPIKeyLength)
	}

	var invalid []string
	for _, c := range key {
		if !strings.ContainsRune(v.allowedKeyChars, c) {
			invalid = append(invalid, fmt.Sprintf("%q", c))
		}
	}
	if len(invalid) > 0 {
		return "", domain.NewConfigError("api_key", "API key contains invalid characters: [%s]", strings.Join(invalid, ", "))
	}

	lowerKey := strings.ToLower(key)
	for _, placeholder := range v.placeholders {
		if strings.Contains(lowerKey, strings.ToLower(placeholder)) {
			return "", domain.NewConfigError("api_key", "API key appears to be a placeholder value")
		}
	}

	return key, nil
}

// ValidateDomain validates the X-Domain header value
func (v *ConfigValidator) ValidateDomain(value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewConfigError("domain", "domain must be an http or https URL: %s", value)
	}
	return nil
}

// ValidateUserID validates the X-User-ID header value
func (v *ConfigValidator) ValidateUserID(value string) error {
	if value == "" {
		return domain.NewConfigError("user_id", "user ID cannot be empty")
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return domain.NewConfigError("user_id", "user ID cannot contain whitespace")
	}
	return nil
}

// ParsePollInterval parses and range checks the receive poll interval
func (v *ConfigValidator) ParsePollInterval(value string) (time.Duration, error) {
	if value == "" {
		return domain.DefaultPollInterval, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, domain.NewConfigError("poll_interval", "invalid poll interval format: %v", err)
	}
	if err := v.ValidatePollInterval(d); err != nil {
		return 0, err
	}
	return d, nil
}

// ValidatePollInterval checks that a poll interval is within range
func (v *ConfigValidator) ValidatePollInterval(d time.Duration) error {
	if d < minPollInterval {
		return domain.NewConfigError("poll_interval", "poll interval too short (minimum %s)", minPollInterval)
	}
	if d > maxPollInterval {
		return domain.NewConfigError("poll_interval", "poll interval too long (maximum %s)", maxPollInterval)
	}
	return nil
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error"}

	normalizedLevel := strings.ToLower(strings.TrimSpace(level))
	for _, valid := range validLevels {
		if normalizedLevel == valid {
			return nil
		}
	}

	return domain.NewConfigError("log_level", "invalid log level: %s (valid levels: %s)", level, strings.Join(validLevels, ", "))
}
