package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/videocollect/internal/config"
	"github.com/mcoot/videocollect/internal/factory"
)

// AppOpener builds the application for commands that work on storage
// directly. Callers own the returned App and must Close it.
type AppOpener func(ctx context.Context, cfg *Config, logger *slog.Logger) (*factory.App, error)

// ErrEphemeralStorage is returned when the env file selects in-process
// memory storage, which the server never sees and which vanishes on exit
var ErrEphemeralStorage = errors.New("STORAGE_TYPE is memory: changes would not reach the server, set STORAGE_TYPE=postgres")

// OpenApp loads the server configuration from the env file and wires
// the application the same way the server does, minus auto-migration.
// Only postgres storage is accepted.
func OpenApp(ctx context.Context, cfg *Config, logger *slog.Logger) (*factory.App, error) {
	appCfg, err := config.Load(cfg.EnvFile)
	if err != nil {
		return nil, err
	}
	if appCfg.StorageType != factory.StorageTypePostgres {
		return nil, ErrEphemeralStorage
	}
	fc := appCfg.Factory(logger)
	fc.AutoMigrate = false
	return factory.New(ctx, fc)
}

// cli carries the state shared by every subcommand
type cli struct {
	cfg    *Config
	open   AppOpener
	client *Client
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(OpenApp)
}

// NewRootCmdWith creates the root command using open to build the application
func NewRootCmdWith(open AppOpener) *cobra.Command {
	c := &cli{cfg: DefaultConfig(), open: open}

	rootCmd := &cobra.Command{
		Use:   "vcadmin",
		Short: "Administration tool for the video collection server",
		Long: `vcadmin manages a video collection deployment.

It creates staff accounts, applies the database schema, removes video files
that were uploaded but never saved, and checks a running server's health.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch c.cfg.Output {
			case "text", "json":
			default:
				return fmt.Errorf("invalid output format %q: must be text or json", c.cfg.Output)
			}
			c.client = NewClient(c.cfg.ServerURL)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&c.cfg.EnvFile, "env-file", c.cfg.EnvFile, "Server env file (env: VCADMIN_ENV_FILE)")
	rootCmd.PersistentFlags().StringVar(&c.cfg.ServerURL, "server", c.cfg.ServerURL, "Server URL (env: VCADMIN_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&c.cfg.Output, "output", "o", c.cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&c.cfg.Verbose, "verbose", "v", c.cfg.Verbose, "Log to stderr")

	rootCmd.AddCommand(c.newUserCmd())
	rootCmd.AddCommand(c.newMigrateCmd())
	rootCmd.AddCommand(c.newVideosCmd())
	rootCmd.AddCommand(c.newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		format, _ := cmd.PersistentFlags().GetString("output")
		NewOutput(format, cmd.OutOrStdout(), cmd.ErrOrStderr()).PrintError(err)
		os.Exit(1)
	}
}

func (c *cli) logger(cmd *cobra.Command) *slog.Logger {
	if !c.cfg.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (c *cli) output(cmd *cobra.Command) *Output {
	return NewOutput(c.cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// withApp opens the application, runs fn and closes it again
func (c *cli) withApp(cmd *cobra.Command, fn func(app *factory.App) error) (err error) {
	app, err := c.open(cmd.Context(), c.cfg, c.logger(cmd))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(app)
}
