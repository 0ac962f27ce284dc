package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/videocollect/internal/factory"
	"github.com/mcoot/videocollect/internal/services/auth"
)

func (c *cli) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(c.newUserCreateCmd())
	return cmd
}

func (c *cli) newUserCreateCmd() *cobra.Command {
	var name, username, password string
	var ifMissing bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		Example: `  vcadmin user create --name "Alice Smith" --username alice --password s3cret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(app *factory.App) error {
				user, err := app.AuthService.CreateUser(cmd.Context(), name, username, password)
				existing := false
				if errors.Is(err, auth.ErrUsernameExists) && ifMissing {
					user, err = app.Storage.GetUserByUsername(cmd.Context(), username)
					existing = true
				}
				if err != nil {
					return err
				}

				c.output(cmd).Print(User{
					ID:       int64(user.ID),
					Name:     user.Name,
					Username: user.Username,
					Existing: existing,
				})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&ifMissing, "if-missing", false, "Succeed without changes when the username exists")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
