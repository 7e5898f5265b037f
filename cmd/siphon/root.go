package main

import (
	"fmt"

	"github.com/spf13/cobra"

	// Drivers for every scheme ParseLocation accepts.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/veldin/siphon/internal/config"
	"github.com/veldin/siphon/internal/logging"
)

// app carries the resolved configuration from the root command's setup
// into the subcommands.
type app struct {
	cfg config.Config

	cfgFile  string
	logLevel string
	quiet    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "siphon",
		Short: "Bulk-download objects under a bucket prefix",
		Long: `siphon mirrors every object under a remote bucket prefix into a local
directory. Objects are packed into size-bounded groups and the groups are
downloaded by a fixed pool of parallel workers; a failing group never stops
the others.

Configuration precedence: built-in defaults, then --config YAML file, then
SIPHON_* environment variables (a .env file is honored), then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Only log errors")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return exitErr(ExitInvalidArgs, err)
	})

	root.AddCommand(a.newDownloadCmd())
	root.AddCommand(a.newPlanCmd())
	root.AddCommand(a.newCheckCmd())

	return root
}

// setup resolves the effective configuration and configures logging.
// Flag overrides for per-command knobs are applied by the commands
// themselves, since the flags live there.
func (a *app) setup() error {
	a.cfg = config.Default()

	if a.cfgFile != "" {
		cfg, err := config.LoadFromFile(a.cfgFile)
		if err != nil {
			return exitErr(ExitInvalidArgs, err)
		}
		a.cfg = cfg
	}
	if err := a.cfg.LoadFromEnv(); err != nil {
		return exitErr(ExitInvalidArgs, err)
	}

	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	logging.SetLevel(a.cfg.LogLevel)
	if a.quiet {
		logging.SetLevel("error")
	}
	return nil
}

// validate runs after the command applied its flag overrides.
func (a *app) validate() error {
	if err := a.cfg.Validate(); err != nil {
		return exitErr(ExitInvalidArgs, err)
	}
	return nil
}

// exactArgs is cobra.ExactArgs with the invalid-arguments exit code
// attached.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return exitErr(ExitInvalidArgs,
				fmt.Errorf("%s requires exactly %d argument(s), got %d", cmd.Name(), n, len(args)))
		}
		return nil
	}
}
