package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"stillreel/config"
	"stillreel/logger"
	"stillreel/routes"

	"github.com/spf13/cobra"
)

// commandContext loads configuration once per invocation and shares it between commands.
type commandContext struct {
	configFlag *string

	once sync.Once
	cfg  config.Config
	err  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) config() (config.Config, error) {
	c.once.Do(func() {
		c.cfg, c.err = config.Load(*c.configFlag)
	})
	return c.cfg, c.err
}

// setupLogging applies the configured level. Commands whose stdout is their
// result send log lines to stderr instead.
func setupLogging(cfg config.Config, stderr io.Writer, server bool) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if server {
		if err := logger.Init(cfg.LogFile, true); err != nil {
			return err
		}
	} else {
		logger.SetOutput(stderr)
	}
	logger.SetLevel(level)
	return nil
}

// NewRootCommand builds the stillreel command tree.
func NewRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "stillreel",
		Short:         "Turn a still image and a sound file into an MP4 clip",
		Version:       routes.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (TOML)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newCreateCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	return rootCmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
