package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"aigrants.co/cli/internal/application/ports"
	"aigrants.co/cli/internal/core/cancel"
	"aigrants.co/cli/internal/infrastructure/config"
	httpinfra "aigrants.co/cli/internal/infrastructure/http"
	"aigrants.co/cli/internal/infrastructure/logging"
	"aigrants.co/cli/internal/infrastructure/signals"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	Resolver    *config.Resolver
	Requester   *httpinfra.StdHttpRequester
	Coordinator *signals.Coordinator
	Logger      zerolog.Logger
	Out         io.Writer
	ErrOut      io.Writer

	overrides config.Overrides
	token     *cancel.Token
}

// ConfigSource returns the resolver with command line overrides applied
func (c *CLIContainer) ConfigSource() ports.ConfigSource {
	return c.Resolver.WithOverrides(c.overrides)
}

func (c *CLIContainer) SessionGateway() *httpinfra.SessionInitiator {
	return httpinfra.NewSessionInitiator(c.Requester, c.Logger)
}

func (c *CLIContainer) StoryGateway() *httpinfra.StoryClient {
	return httpinfra.NewStoryClient(c.Requester, c.Logger)
}

// Token returns the cancellation token shared with the shutdown coordinator
func (c *CLIContainer) Token() *cancel.Token {
	if c.Coordinator != nil {
		return c.Coordinator.Token()
	}
	if c.token == nil {
		c.token = cancel.New()
	}
	return c.token
}

// Interrupt requests a graceful shutdown as if a signal had arrived
func (c *CLIContainer) Interrupt() {
	if c.Coordinator != nil {
		c.Coordinator.Trigger(os.Interrupt)
		return
	}
	c.Token().Cancel("operator quit")
}

// muteShutdownNotice keeps the coordinator off the terminal while a
// full-screen view is running.
func (c *CLIContainer) muteShutdownNotice() func() {
	if c.Coordinator == nil {
		return func() {}
	}
	return c.Coordinator.Mute()
}

// NewRootCommand RootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "grantgen",
		Short: "grantgen - grant proposal generation client",
		Long: `grantgen drives the story generation API to produce grant proposal text.

It starts a generation session, follows the session's stream until it
completes, and creates, reads and updates stories through the same API.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfigurationOverrides(cmd, container); err != nil {
				return fmt.Errorf("failed to apply configuration overrides: %w", err)
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))
	rootCmd.SetOut(container.Out)
	rootCmd.SetErr(container.ErrOut)

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("api-key", "", "API key for the story API (overrides CAPITOL_API_KEY)")
	rootCmd.PersistentFlags().String("api-url", "", "Story API base URL (overrides CAPITOL_API_URL)")

	rootCmd.AddCommand(NewStreamCommand(container))
	rootCmd.AddCommand(NewGenerateCommand(container))
	rootCmd.AddCommand(NewStoryCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// applyConfigurationOverrides applies configuration overrides from command line flags
func applyConfigurationOverrides(cmd *cobra.Command, container *CLIContainer) error {
	flags := cmd.Flags()

	if flags.Changed("api-url") {
		apiURL, _ := flags.GetString("api-url")
		container.overrides.BaseURL = apiURL
	}
	if flags.Changed("api-key") {
		apiKey, _ := flags.GetString("api-key")
		container.overrides.APIKey = apiKey
	}

	level := container.Resolver.LogLevel()
	if flags.Changed("log-level") {
		level, _ = flags.GetString("log-level")
	}
	if debugMode, _ := flags.GetBool("debug"); debugMode {
		level = "debug"
	}
	if err := config.NewConfigValidator().ValidateLogLevel(level); err != nil {
		return err
	}
	container.Logger = logging.New(level, container.ErrOut)

	return nil
}

// contextWithToken derives a context that is cancelled once token is set
func contextWithToken(parent context.Context, token *cancel.Token) (context.Context, context.CancelFunc) {
	ctx, cancelCtx := context.WithCancel(parent)
	go func() {
		select {
		case <-token.Done():
			cancelCtx()
		case <-ctx.Done():
		}
	}()
	return ctx, cancelCtx
}

// Execute runs the root command and returns the process exit code
func Execute(container *CLIContainer) int {
	return ExecuteArgs(container, os.Args[1:])
}

// ExecuteArgs runs the root command with explicit arguments
func ExecuteArgs(container *CLIContainer, args []string) int {
	rootCmd := NewRootCommand(container)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(container.ErrOut, errorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
