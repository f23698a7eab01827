package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aigrants.co/cli/internal/application/services"
	"aigrants.co/cli/internal/core/story"
)

// GenerateFlags holds command-line flags for the generate command
type GenerateFlags struct {
	Plans    []string
	Interval time.Duration
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand(container *CLIContainer) *cobra.Command {
	flags := &GenerateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create one story per plan preset",
		Long: `Create a story for each requested plan preset, one after the other.
A failed plan is reported and the remaining plans are still attempted.

Examples:
  grantgen generate
  grantgen generate --plan technical --interval 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, container, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.Plans, "plan", []string{"abstract", "technical"}, "Plan presets to generate, in order")
	cmd.Flags().DurationVar(&flags.Interval, "interval", services.DefaultGenerationInterval, "Minimum gap between story creations")

	return cmd
}

func runGenerate(cmd *cobra.Command, container *CLIContainer, flags *GenerateFlags) error {
	plans := make([]services.NamedPlan, 0, len(flags.Plans))
	for _, name := range flags.Plans {
		plan, err := story.PlanByName(name)
		if err != nil {
			return err
		}
		plans = append(plans, services.NamedPlan{Name: strings.ToLower(strings.TrimSpace(name)), Plan: plan})
	}

	cfg, err := container.ConfigSource().Resolve()
	if err != nil {
		return err
	}

	ctx, stop := contextWithToken(cmd.Context(), container.Token())
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Generating %d stories...", len(plans))))

	service := services.NewGenerationService(container.StoryGateway(), container.Logger, flags.Interval)
	results := service.GenerateAll(ctx, cfg, plans)

	failed := 0
	for _, r := range results {
		if r.Succeeded() {
			printField(out, r.Name, successStyle.Render(r.Story.ID))
			continue
		}
		failed++
		printField(out, r.Name, errorStyle.Render("failed: "+r.Err.Error()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d stories failed", failed, len(results))
	}
	return nil
}
