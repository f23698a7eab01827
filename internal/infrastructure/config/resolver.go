package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"aigrants.co/cli/internal/core/domain"
)

// Environment variables read by the resolver. Earlier names win.
var (
	BaseURLVars       = []string{"CAPITOL_API_URL", "VITE_CAPITOL_API_URL", "API_URL"}
	APIKeyVars        = []string{"CAPITOL_API_KEY", "VITE_CAPITOL_API_KEY"}
	DomainVar         = "CAPITOL_DOMAIN"
	UserIDVar         = "CAPITOL_USER_ID"
	AuthSchemeVar     = "CAPITOL_AUTH_SCHEME"
	SessionPathVar    = "CAPITOL_SESSION_PATH"
	StoryAuthVar      = "CAPITOL_STORY_AUTH_SCHEME"
	PollIntervalVar   = "CAPITOL_POLL_INTERVAL"
	LogLevelVar       = "GRANTGEN_LOG_LEVEL"
	DefaultDotEnvFile = ".env"
)

// Overrides carries values set explicitly on the command line
type Overrides struct {
	BaseURL string
	APIKey  string
}

// Resolver builds a ConnectionConfig from the process environment
type Resolver struct {
	lookup    func(string) string
	validator *ConfigValidator
	overrides Overrides
}

// NewResolver creates a resolver reading from os.Getenv
func NewResolver() *Resolver {
	return NewResolverWithLookup(os.Getenv)
}

// NewResolverWithLookup creates a resolver reading from the given lookup
func NewResolverWithLookup(lookup func(string) string) *Resolver {
	return &Resolver{lookup: lookup, validator: NewConfigValidator()}
}

// WithOverrides returns a copy of the resolver applying command line overrides
func (r *Resolver) WithOverrides(o Overrides) *Resolver {
	clone := *r
	clone.overrides = o
	return &clone
}

// Resolve reads and validates the connection configuration. It performs no
// network I/O and fails with *domain.ConfigError.
func (r *Resolver) Resolve() (domain.ConnectionConfig, error) {
	rawURL := r.overrides.BaseURL
	if rawURL == "" {
		rawURL = r.first(BaseURLVars)
	}
	if rawURL == "" {
		return domain.ConnectionConfig{}, domain.NewConfigError("api_url", "missing required environment variable %s", strings.Join(BaseURLVars, " or "))
	}
	baseURL, err := r.validator.NormalizeBaseURL(rawURL)
	if err != nil {
		return domain.ConnectionConfig{}, err
	}

	rawKey := r.overrides.APIKey
	if rawKey == "" {
		rawKey = r.first(APIKeyVars)
	}
	if rawKey == "" {
		return domain.ConnectionConfig{}, domain.NewConfigError("api_key", "missing required environment variable %s", strings.Join(APIKeyVars, " or "))
	}
	apiKey, err := r.validator.NormalizeAPIKey(rawKey)
	if err != nil {
		return domain.ConnectionConfig{}, err
	}

	cfg := domain.ConnectionConfig{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Domain:      r.withDefault(DomainVar, domain.DefaultDomain),
		UserID:      r.withDefault(UserIDVar, domain.DefaultUserID),
		SessionPath: r.withDefault(SessionPathVar, domain.DefaultSessionPath),
	}

	if err := r.validator.ValidateDomain(cfg.Domain); err != nil {
		return domain.ConnectionConfig{}, err
	}
	if err := r.validator.ValidateUserID(cfg.UserID); err != nil {
		return domain.ConnectionConfig{}, err
	}
	if !strings.HasPrefix(cfg.SessionPath, "/") {
		cfg.SessionPath = "/" + cfg.SessionPath
	}

	scheme, err := domain.ParseAuthScheme(strings.ToLower(r.value(AuthSchemeVar)))
	if err != nil {
		return domain.ConnectionConfig{}, domain.NewConfigError("auth_scheme", "%v", err)
	}
	cfg.AuthScheme = scheme

	cfg.StoryAuthScheme = domain.AuthSchemeBearer
	if v := strings.ToLower(r.value(StoryAuthVar)); v != "" {
		if cfg.StoryAuthScheme, err = domain.ParseAuthScheme(v); err != nil {
			return domain.ConnectionConfig{}, domain.NewConfigError("story_auth_scheme", "%v", err)
		}
	}

	cfg.PollInterval, err = r.validator.ParsePollInterval(r.value(PollIntervalVar))
	if err != nil {
		return domain.ConnectionConfig{}, err
	}

	return cfg, nil
}

// LogLevel returns the configured log level, defaulting to info
func (r *Resolver) LogLevel() string {
	return r.withDefault(LogLevelVar, "info")
}

func (r *Resolver) value(key string) string {
	return strings.TrimSpace(r.lookup(key))
}

func (r *Resolver) first(keys []string) string {
	for _, key := range keys {
		if v := r.value(key); v != "" {
			return v
		}
	}
	return ""
}

func (r *Resolver) withDefault(key, fallback string) string {
	if v := r.value(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already present in the process. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return domain.NewConfigError("dotenv", "failed to load %s: %v", path, err)
	}
	return nil
}
