package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/videocollect/internal/factory"
)

// DefaultPruneAge keeps files young enough to still be staged in a session
const DefaultPruneAge = 24 * time.Hour

func (c *cli) newVideosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Manage stored video files",
	}
	cmd.AddCommand(c.newVideosPruneCmd())
	return cmd
}

func (c *cli) newVideosPruneCmd() *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove uploaded files that were never saved",
		Long: `Deletes upload files in the video directory that no saved video references
and that were last modified before the grace period.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return c.withApp(cmd, func(app *factory.App) error {
				report, err := app.CaptureService.Prune(cmd.Context(), olderThan, dryRun)
				if err != nil {
					return err
				}
				c.output(cmd).Print(report)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", DefaultPruneAge, "Grace period for unsaved uploads")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List files without removing them")

	return cmd
}
