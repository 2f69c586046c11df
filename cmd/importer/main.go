package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"rsvp-households/internal/backend"
	"rsvp-households/internal/config"
	"rsvp-households/internal/importer"
	"rsvp-households/internal/logger"
)

func main() {
	var (
		configPath  string
		filePath    string
		concurrency int
	)
	flag.StringVar(&configPath, "config", "", "Path to an optional YAML config file")
	flag.StringVar(&filePath, "file", "", "Path to the guest list CSV")
	flag.IntVar(&concurrency, "concurrency", importer.DefaultConcurrency, "Households created in parallel")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	root := logger.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component(root, "importer")

	ctx := context.Background()
	svc, _, closeStore, err := backend.OpenService(ctx, cfg, root)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("open store")
	}
	defer closeStore()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, svc, concurrency, root)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Int("households_imported", res.Households).Msg("import failed")
	}

	fmt.Printf("Imported %d households (%d guests) in %s\n", res.Households, res.People, time.Since(start).Truncate(time.Millisecond))
}
