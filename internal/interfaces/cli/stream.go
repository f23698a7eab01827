package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"aigrants.co/cli/internal/application/ports"
	"aigrants.co/cli/internal/application/services"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
	"aigrants.co/cli/internal/infrastructure/config"
	"aigrants.co/cli/internal/streaming"
)

// StreamFlags holds command-line flags for the stream command
type StreamFlags struct {
	StoryID      string
	PlanName     string
	PlanFile     string
	PollInterval time.Duration
	TUI          bool
}

// NewStreamCommand creates the stream command
func NewStreamCommand(container *CLIContainer) *cobra.Command {
	flags := &StreamFlags{}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Start a generation session and follow its stream",
		Long: `Start a generation session for a story and print every frame the stream
sends until the terminate marker arrives, the server closes the connection,
or the process is interrupted.

Examples:
  grantgen stream
  grantgen stream --story-id 5d9c6076-f2fd-44a8-9ca1-de4014ff6299 --plan abstract
  grantgen stream --plan-file plan.yaml --poll-interval 250ms
  grantgen stream --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd, container, flags)
		},
	}

	cmd.Flags().StringVar(&flags.StoryID, "story-id", "", "Story ID to generate (a new one is created when empty)")
	cmd.Flags().StringVar(&flags.PlanName, "plan", "technical", fmt.Sprintf("Plan preset %v", story.PresetNames()))
	cmd.Flags().StringVar(&flags.PlanFile, "plan-file", "", "YAML or JSON plan file layered over the preset")
	cmd.Flags().DurationVar(&flags.PollInterval, "poll-interval", 0, "Receive wait between cancellation checks (default from CAPITOL_POLL_INTERVAL or 1s)")
	cmd.Flags().BoolVar(&flags.TUI, "tui", false, "Show the stream in an interactive terminal view")

	return cmd
}

func runStream(cmd *cobra.Command, container *CLIContainer, flags *StreamFlags) error {
	plan, err := config.ResolvePlan(flags.PlanName, flags.PlanFile)
	if err != nil {
		return err
	}

	var opts []streaming.Option
	if flags.PollInterval != 0 {
		if err := config.NewConfigValidator().ValidatePollInterval(flags.PollInterval); err != nil {
			return err
		}
		opts = append(opts, streaming.WithPollInterval(flags.PollInterval))
	}

	req := services.StreamRequest{
		StoryID: story.ID(flags.StoryID),
		Plan:    plan,
		Token:   container.Token(),
	}

	if flags.TUI {
		return runStreamDashboard(cmd.Context(), container, req, opts)
	}

	ctx, stop := contextWithToken(cmd.Context(), req.Token)
	defer stop()

	out := cmd.OutOrStdout()
	printer := newStreamPrinter(out)
	factory := func(cfg domain.ConnectionConfig) ports.Streamer {
		return streaming.NewClient(cfg, container.Logger, append(opts, streaming.WithHandler(printer))...)
	}
	service := services.NewStreamService(container.ConfigSource(), container.SessionGateway(), factory, container.Logger)

	fmt.Fprintln(out, titleStyle.Render("Requesting stream address from API..."))
	report, err := service.Run(ctx, req)
	if err != nil {
		return err
	}
	return reportOutcome(out, report)
}
