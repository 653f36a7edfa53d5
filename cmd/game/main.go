package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/Garsondee/battlescape/internal/config"
	"github.com/Garsondee/battlescape/internal/game"
	"github.com/Garsondee/battlescape/internal/savestate"
	"github.com/Garsondee/battlescape/internal/scenario"
)

func main() {
	scenarioRef := flag.String("scenario", "skirmish", "built-in scenario name or path to a .yaml file")
	configPath := flag.String("config", "configs/battle.yaml", "battle settings file")
	seed := flag.Int64("seed", 0, "RNG seed; 0 keeps the scenario's own")
	loadID := flag.String("load", "", "save id to resume from")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := zap.NewDevelopment()
	if !(*debug || cfg.Log.Debug) {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	sc, err := scenario.Resolve(*scenarioRef)
	if err != nil {
		logger.Fatal("scenario", zap.Error(err))
	}
	var extra []scenario.Option
	if *seed != 0 {
		extra = append(extra, scenario.WithSeed(*seed))
	}
	b, err := sc.Build(extra...)
	if err != nil {
		logger.Fatal("build scenario", zap.String("scenario", sc.Name), zap.Error(err))
	}
	r := scenario.NewRunner(b, cfg, logger)

	store, err := savestate.Open(cfg.Save.DSN, logger)
	if err != nil {
		logger.Fatal("open save store", zap.String("dsn", cfg.Save.DSN), zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	if *loadID != "" {
		if err := store.Load(context.Background(), *loadID, b, r.AI); err != nil {
			logger.Fatal("load save", zap.String("id", *loadID), zap.Error(err))
		}
		r.Refresh()
	}

	g := game.New(r, logger, game.WithStore(store, sc.Name))
	ebiten.SetWindowTitle("Battlescape - " + sc.Name)
	ebiten.SetWindowSize(g.WindowSize())
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("viewer", zap.Error(err))
	}
}
