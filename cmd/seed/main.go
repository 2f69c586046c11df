package main

import (
	"context"
	"flag"

	"rsvp-households/internal/backend"
	"rsvp-households/internal/config"
	"rsvp-households/internal/logger"
	"rsvp-households/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	root := logger.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component(root, "seed")

	ctx := context.Background()
	svc, _, closeStore, err := backend.OpenService(ctx, cfg, root)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("open store")
	}
	defer closeStore()

	if err := seed.Apply(ctx, svc); err != nil {
		log.Fatal().Err(err).Msg("seed apply")
	}
	log.Info().Str("household_id", seed.DemoHouseholdID).Msg("seed applied")
}
