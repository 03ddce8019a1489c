package main

import (
	"context"
	"fmt"
	"log/slog"

	"crpt-hq/ismp/pkg/cli"
	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/telemetry/logging"

	"github.com/spf13/cobra"
)

// rootOptions holds the global flags and what PersistentPreRunE builds
// from them.
type rootOptions struct {
	cfgFile  string
	verbose  bool
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ismp",
		Short: "ISMP document submission client",
		Long: `ismp submits signed goods introduction documents (LP_INTRODUCE_GOODS)
to the ISMP registry API at ismp.crpt.ru.

Every submission passes through a shared client-side rate limiter, so
concurrent workers, batches and the spool processor never exceed the
configured number of requests per window. Each document is POSTed exactly
once; failures are reported, never retried.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "config.yaml", "config file path (defaults are used when it does not exist)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSubmitCmd(opts),
		newValidateCmd(opts),
		newSpoolCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
		newCompletionCmd(),
	)
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

// init loads configuration and installs the logger.
func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(o.cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	switch {
	case o.logLevel != "":
		cfg.Telemetry.Logging.Level = o.logLevel
	case o.verbose:
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:           cfg.Telemetry.Logging.Level,
		Format:          cfg.Telemetry.Logging.Format,
		AddSource:       cfg.Telemetry.Logging.AddSource,
		RedactSignature: cfg.Telemetry.Logging.ShouldRedactSignature(),
		Writer:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	o.logger = logger
	return nil
}

// Execute runs the root command under a context canceled by SIGINT or
// SIGTERM and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}
