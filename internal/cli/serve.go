package cli

import (
	"github.com/spf13/cobra"

	"ecogrid/internal/config"
	"ecogrid/internal/monitor"
	"ecogrid/internal/record"
	"ecogrid/internal/sims/world"
)

func newServeCommand(st *state) *cobra.Command {
	var paused bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Evolve a layout continuously behind an HTTP monitor",
		Long: `serve advances the world at --tps generations per second and exposes it over ` +
			`HTTP: /api/generation, /api/cells, /api/stats, /api/step, /api/pause, ` +
			`/api/continue and a websocket stream at /ws. The loop pauses once ` +
			`--generations is reached; 0 runs forever.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			w, err := world.New(worldConfig(cfg))
			if err != nil {
				return err
			}

			opts := []monitor.Option{
				monitor.WithLogger(st.log),
				monitor.WithTPS(cfg.TPS),
				monitor.WithLimit(cfg.Generations),
				monitor.WithBrowser(cfg.Open),
				monitor.WithPaused(paused),
			}
			if cfg.Record != "" {
				rec, err := record.Open(cfg.Record, record.WithLogger(st.log))
				if err != nil {
					return err
				}
				defer rec.Close()
				if err := rec.RecordRun(cfg.Layout, w.Seed(), cfg.Evolution); err != nil {
					return err
				}
				if err := rec.Observe(cmd.Context(), w.Grid().Snapshot()); err != nil {
					return err
				}
				opts = append(opts, monitor.WithObservers(rec))
			}

			return monitor.New(w, opts...).Serve(cmd.Context(), cfg.Addr)
		},
	}
	cmd.Flags().BoolVar(&paused, "paused", false, "start with the loop paused")
	config.Bind(cmd.Flags(), withRates("generations", "layout", "seed", "addr", "tps", "open", "record")...)
	return cmd
}
