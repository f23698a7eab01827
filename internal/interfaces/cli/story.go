package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aigrants.co/cli/internal/core/story"
)

// NewStoryCommand creates the story command
func NewStoryCommand(container *CLIContainer) *cobra.Command {
	storyCmd := &cobra.Command{
		Use:   "story",
		Short: "Read and edit stories",
	}

	storyCmd.AddCommand(NewStoryGetCommand(container))
	storyCmd.AddCommand(NewStoryUpdateCommand(container))

	return storyCmd
}

// NewStoryGetCommand creates the get subcommand
func NewStoryGetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "get STORY_ID",
		Short: "Print a story's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigSource().Resolve()
			if err != nil {
				return err
			}

			got, err := container.StoryGateway().GetStory(cmd.Context(), cfg, story.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to get story: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), got.Content)
			return nil
		},
	}
}

// NewStoryUpdateCommand creates the update subcommand
func NewStoryUpdateCommand(container *CLIContainer) *cobra.Command {
	var content, contentFile string

	cmd := &cobra.Command{
		Use:   "update STORY_ID",
		Short: "Replace a story's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				content = string(data)
			}
			if content == "" {
				return fmt.Errorf("one of --content or --content-file is required")
			}

			cfg, err := container.ConfigSource().Resolve()
			if err != nil {
				return err
			}

			updated, err := container.StoryGateway().UpdateStory(cmd.Context(), cfg, story.ID(args[0]), content)
			if err != nil {
				return fmt.Errorf("failed to update story: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Updated story "+updated.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "New story content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read the new content from a file")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")

	return cmd
}
