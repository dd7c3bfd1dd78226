package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"ecogrid/internal/config"
	"ecogrid/internal/scenario"
	"ecogrid/internal/sweep"
)

func newSweepCommand(st *state) *cobra.Command {
	var (
		axes []string
		top  int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Rank rate combinations by how long every kind survives",
		Example: `  ecogrid sweep --generations 300 \
    --axis plant_growth_rate=60,80,100 \
    --axis predator_death_rate=1.8,2.2,2.6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			layout, err := scenario.Resolve(cfg.Layout)
			if err != nil {
				return err
			}

			parsed := make([]sweep.Axis, 0, len(axes))
			for _, a := range axes {
				axis, err := sweep.ParseAxis(a)
				if err != nil {
					return err
				}
				parsed = append(parsed, axis)
			}
			candidates, err := sweep.Candidates(cfg.Evolution, parsed...)
			if err != nil {
				return err
			}

			workers := cfg.Workers
			if workers < 1 {
				workers = runtime.NumCPU()
			}
			st.log.Infof("sweeping %d parameter sets (%d workers, %d generations)", len(candidates), workers, cfg.Generations)

			results, err := sweep.Run(cmd.Context(), sweep.Options{
				Layout:      layout,
				Seed:        cfg.Seed,
				Generations: cfg.Generations,
				Workers:     workers,
				Progress: func(done, total int, r sweep.Result) {
					st.log.Debugf("%d/%d %s", done, total, r)
				},
			}, candidates)
			if err != nil {
				return err
			}

			if top > 0 && top < len(results) {
				results = results[:top]
			}
			out := cmd.OutOrStdout()
			for i, r := range results {
				fmt.Fprintf(out, "%3d. %s\n", i+1, r)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&axes, "axis", nil, "rate=v1,v2,... to sweep, repeatable")
	cmd.Flags().IntVar(&top, "top", 10, "print only the best N results, 0 for all")
	config.Bind(cmd.Flags(), withRates("generations", "layout", "seed", "workers")...)
	return cmd
}
