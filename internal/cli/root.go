// Package cli provides the ecogrid command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ecogrid/internal/config"
	"ecogrid/internal/logging"
)

// state is shared by the commands of one invocation.
type state struct {
	envFile string
	log     *logging.Logger
}

// NewRootCommand builds the ecogrid command tree.
func NewRootCommand() *cobra.Command {
	st := &state{log: logging.Discard()}

	root := &cobra.Command{
		Use:   "ecogrid",
		Short: "Simulate a predator-prey-plant food chain on a 10x10 grid.",
		Long: `ecogrid evolves plants, herbivores and predators cell by cell on a fixed ` +
			`10x10 map of water and ground. Every option can also be set with an ` +
			`ECOGRID_* environment variable or in a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(st.envFile); err != nil {
				return err
			}
			cfg, err := config.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			st.log = logging.NewWithWriter(cfg.LogLevel, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "load environment variables from this file when it exists")
	config.Bind(root.PersistentFlags(), "log-level")

	root.AddCommand(
		newRunCommand(st),
		newServeCommand(st),
		newSweepCommand(st),
		newParamsCommand(st),
		newLayoutsCommand(st),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the command tree with explicit arguments and streams.
func ExecuteArgs(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

// resolve reads the command's flags on top of the environment.
func resolve(cmd *cobra.Command) (config.RunConfig, error) {
	return config.Resolve(cmd.Flags())
}
