package main

import (
	"context"
	"flag"

	"rsvp-households/internal/backend"
	"rsvp-households/internal/config"
	"rsvp-households/internal/logger"
	"rsvp-households/internal/migrate"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML config file")
	down := flag.Bool("down", false, "Revert the most recent migration instead of applying all")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.Component(logger.New(cfg.Log.Level, cfg.Log.Format), "migrate")

	ctx := context.Background()
	pool, err := backend.ConnectPostgres(ctx, cfg.DB.DSN, cfg.DB.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if *down {
		if err := migrate.Rollback(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("rollback migration")
		}
		log.Info().Msg("migration rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}
	log.Info().Msg("migrations applied")
}
