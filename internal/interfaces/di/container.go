package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"aigrants.co/cli/internal/core/cancel"
	"aigrants.co/cli/internal/infrastructure/config"
	httpinfra "aigrants.co/cli/internal/infrastructure/http"
	"aigrants.co/cli/internal/infrastructure/logging"
	"aigrants.co/cli/internal/infrastructure/signals"
	"aigrants.co/cli/internal/interfaces/cli"
)

const defaultRequestTimeout = 60 * time.Second

// Options controls how the container is wired
type Options struct {
	DotEnvPath     string
	RequestTimeout time.Duration
	Lookup         func(string) string
	Out            io.Writer
	ErrOut         io.Writer
	// InstallSignals registers SIGINT and SIGTERM handlers.
	InstallSignals bool
}

// DefaultOptions wires the process environment and standard streams
func DefaultOptions() Options {
	return Options{
		DotEnvPath:     config.DefaultDotEnvFile,
		RequestTimeout: defaultRequestTimeout,
		Lookup:         os.Getenv,
		Out:            os.Stdout,
		ErrOut:         os.Stderr,
		InstallSignals: true,
	}
}

// Container holds all application dependencies
type Container struct {
	Resolver    *config.Resolver
	Requester   *httpinfra.StdHttpRequester
	Coordinator *signals.Coordinator
	Logger      zerolog.Logger

	// CLI
	CLIContainer *cli.CLIContainer
}

// NewContainer creates the container from the process environment
func NewContainer() (*Container, error) {
	return NewContainerWithOptions(DefaultOptions())
}

// NewContainerWithOptions creates and configures the dependency injection container
func NewContainerWithOptions(opts Options) (*Container, error) {
	if opts.Lookup == nil {
		opts.Lookup = os.Getenv
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	if opts.DotEnvPath != "" {
		if err := config.LoadDotEnv(opts.DotEnvPath); err != nil {
			return nil, fmt.Errorf("failed to initialize components: %w", err)
		}
	}

	c := &Container{
		Resolver:  config.NewResolverWithLookup(opts.Lookup),
		Requester: httpinfra.NewStdHttpRequester(opts.RequestTimeout),
	}
	c.Logger = logging.New(c.Resolver.LogLevel(), opts.ErrOut)

	coordinatorOpts := []signals.Option{signals.WithOutput(opts.ErrOut), signals.WithLogger(c.Logger)}
	if opts.InstallSignals {
		c.Coordinator = signals.Install(cancel.New(), coordinatorOpts...)
	} else {
		c.Coordinator = signals.New(cancel.New(), coordinatorOpts...)
	}

	c.CLIContainer = &cli.CLIContainer{
		Resolver:    c.Resolver,
		Requester:   c.Requester,
		Coordinator: c.Coordinator,
		Logger:      c.Logger,
		Out:         opts.Out,
		ErrOut:      opts.ErrOut,
	}

	c.Logger.Debug().Msg("dependency injection container initialized")
	return c, nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Shutdown releases the signal handlers
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Coordinator != nil {
		c.Coordinator.Stop()
	}
	return ctx.Err()
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}
