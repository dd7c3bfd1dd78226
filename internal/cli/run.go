package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ecogrid/internal/config"
	"ecogrid/internal/record"
	"ecogrid/internal/runner"
	"ecogrid/internal/sims/world"
)

var rateFlags = []string{
	"plant-growth-rate",
	"herbivore-eating-rate",
	"herbivore-death-rate",
	"predator-eating-rate",
	"predator-death-rate",
}

func withRates(names ...string) []string {
	return append(names, rateFlags...)
}

func worldConfig(cfg config.RunConfig) world.Config {
	return world.Config{Layout: cfg.Layout, Seed: cfg.Seed, Evolution: cfg.Evolution}
}

func newRunCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a layout for a number of generations and print every generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			return runWorld(cmd, st, cfg)
		},
	}
	config.Bind(cmd.Flags(), withRates("generations", "layout", "seed", "format", "output", "record", "workers")...)
	return cmd
}

func runWorld(cmd *cobra.Command, st *state, cfg config.RunConfig) error {
	w, err := world.New(worldConfig(cfg))
	if err != nil {
		return err
	}
	st.log.Infof("layout %s: %d units issued", cfg.Layout, w.UnitsIssued())

	out := cmd.OutOrStdout()
	if cfg.Output != "-" && cfg.Format != config.FormatNone {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	var observers []runner.Observer
	var closers []io.Closer
	switch cfg.Format {
	case config.FormatSummary:
		observers = append(observers, runner.SummaryObserver(out))
	case config.FormatMap:
		observers = append(observers, runner.MapObserver(out))
	case config.FormatUnits:
		observers = append(observers, runner.UnitsObserver(out))
	case config.FormatJSON:
		evo := runner.NewEvolutionObserver(out)
		observers = append(observers, evo)
		closers = append(closers, evo)
	case config.FormatJSONLegacy:
		evo := runner.NewLegacyEvolutionObserver(out)
		observers = append(observers, evo)
		closers = append(closers, evo)
	}

	if cfg.Record != "" {
		rec, err := record.Open(cfg.Record, record.WithLogger(st.log))
		if err != nil {
			return err
		}
		if err := rec.RecordRun(cfg.Layout, w.Seed(), cfg.Evolution); err != nil {
			rec.Close()
			return err
		}
		observers = append(observers, rec)
		closers = append(closers, rec)
	}

	r := runner.New(w.Grid(),
		runner.WithObservers(observers...),
		runner.WithWorkers(cfg.Workers),
		runner.WithLogger(st.log),
	)
	runErr := r.Run(cmd.Context(), cfg.Generations)

	for _, c := range closers {
		if err := c.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}
