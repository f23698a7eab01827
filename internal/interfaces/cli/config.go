package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"aigrants.co/cli/internal/core/domain"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect the connection configuration grantgen resolves from the
environment, the .env file and command line flags.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigSource().Resolve()
			if err != nil {
				return fmt.Errorf("failed to resolve configuration: %w", err)
			}

			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(out io.Writer, cfg domain.ConnectionConfig) {
	fmt.Fprintln(out, titleStyle.Render("Current Configuration:"))
	printField(out, "API URL", cfg.BaseURL)
	printField(out, "API Key", domain.MaskAPIKey(cfg.APIKey))
	printField(out, "Auth scheme", string(cfg.AuthScheme))
	printField(out, "Story auth", string(cfg.ForStories().AuthScheme))
	printField(out, "Domain", cfg.Domain)
	printField(out, "User ID", cfg.UserID)
	printField(out, "Session path", cfg.SessionPath)
	printField(out, "Poll interval", cfg.PollInterval.String())
}
