//go:build ebiten

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"ecogrid/internal/app"
	"ecogrid/internal/config"
	"ecogrid/internal/logging"
	"ecogrid/internal/sims/world"
)

func main() {
	fs := pflag.NewFlagSet("viewer", pflag.ExitOnError)
	scale := fs.Int("scale", 48, "pixel scale multiplier")
	envFile := fs.String("env-file", ".env", "load environment variables from this file when it exists")
	config.Bind(fs, "layout", "seed", "tps", "log-level",
		"plant-growth-rate", "herbivore-eating-rate", "herbivore-death-rate",
		"predator-eating-rate", "predator-death-rate")
	fs.Parse(os.Args[1:])

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Resolve(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	w, err := world.New(world.Config{Layout: cfg.Layout, Seed: cfg.Seed, Evolution: cfg.Evolution})
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	log.Infof("viewing %s: %d units issued", w.Name(), w.UnitsIssued())

	game := app.New(w, *scale, cfg.TPS)
	size := w.Size()

	ebiten.SetWindowTitle("ecogrid " + w.Name())
	ebiten.SetWindowSize(size.W**scale+app.HUDWidth, size.H**scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
