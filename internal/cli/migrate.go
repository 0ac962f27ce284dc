package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mcoot/videocollect/internal/factory"
)

// migrator is implemented by storage backends with a schema
type migrator interface {
	Migrate(ctx context.Context) error
}

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Creates the users, participants and videos tables if they do not exist.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(app *factory.App) error {
				m, ok := app.Storage.(migrator)
				if !ok {
					c.output(cmd).Print(MigrateResult{Migrated: false})
					return nil
				}
				if err := m.Migrate(cmd.Context()); err != nil {
					return err
				}
				c.output(cmd).Print(MigrateResult{Migrated: true})
				return nil
			})
		},
	}
}
