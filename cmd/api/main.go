package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"rsvp-households/internal/backend"
	"rsvp-households/internal/config"
	"rsvp-households/internal/httpserver"
	"rsvp-households/internal/logger"
	householdrepo "rsvp-households/internal/repository/household"
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
	log := logger.Component(root, "api")
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	svc, store, closeStore, err := backend.OpenService(ctx, cfg, logger.Component(root, "store"))
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("open store")
	}
	defer closeStore()

	pinger, _ := store.(householdrepo.Pinger)
	srv, err := httpserver.New(cfg.HTTP.Addr, logger.Component(root, "http"), httpserver.Deps{
		Households:     svc,
		Store:          pinger,
		AllowOrigins:   cfg.CORS.AllowOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("server stopped")
	}
}
