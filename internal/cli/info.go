package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ecogrid/internal/config"
	"ecogrid/internal/core"
	"ecogrid/internal/render"
	"ecogrid/internal/sims/world"
)

func newParamsCommand(_ *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the resolved layout and rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			w, err := world.New(worldConfig(cfg))
			if err != nil {
				return err
			}
			snap := w.Parameters()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			for _, g := range snap.Groups {
				fmt.Fprintf(out, "%s\n", g.Name)
				for _, p := range g.Params {
					fmt.Fprintf(out, "  %-22s %s\n", p.Key, p.Value)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	config.Bind(cmd.Flags(), withRates("layout", "seed")...)
	return cmd
}

func newLayoutsCommand(_ *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List the built-in layouts with their maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range core.SimNames() {
				sim := core.Sims()[name](map[string]string{
					"seed": strconv.FormatInt(cfg.Seed, 10),
				})
				w, ok := sim.(*world.World)
				if !ok {
					continue
				}
				cells := w.Grid().Cells()
				fmt.Fprintf(out, "%s (%d units)\n%s\n\n", name, w.UnitsIssued(), render.Map(&cells))
			}
			return nil
		},
	}
	config.Bind(cmd.Flags(), "seed")
	return cmd
}
