package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ngpayroll/internal/app"
	"ngpayroll/internal/platform/config"
	"ngpayroll/internal/platform/logger"
)

type rootOptions struct {
	actor    string
	jsonOut  bool
	logLevel string
}

type cli struct {
	opts   rootOptions
	cfg    config.Config
	logger *zap.Logger
}

// NewRootCommand builds the payrollctl command tree. Configuration is read
// from the environment (and .env) before any subcommand runs.
func NewRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Prepare, review and pay monthly Nigerian payroll",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.opts.logLevel != "" {
				cfg.LogLevel = c.opts.logLevel
			}
			log, err := logger.New(cfg.LogLevel, cfg.Environment)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg = cfg
			c.logger = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.actor, "actor", "", "user performing the action")
	flags.BoolVar(&c.opts.jsonOut, "json", false, "print JSON instead of tables")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		c.calcCommand(),
		c.createCommand(),
		c.seedCommand(),
		c.editCommand(),
		c.submitCommand(),
		c.approveCommand(),
		c.rejectCommand(),
		c.payCommand(),
		c.deleteCommand(),
		c.listCommand(),
		c.showCommand(),
		c.payslipCommand(),
		c.exportCommand(),
		c.historyCommand(),
	)
	return root
}

// open wires the payroll service for commands that touch stored submissions.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, c.logger)
}
