package main

import (
	"fmt"
	"os"

	"github.com/myshop-dev/myshop/internal/config"
	"github.com/myshop-dev/myshop/internal/logger"
	"github.com/myshop-dev/myshop/internal/server"
)

var version = "dev" // Set with -ldflags "-X main.version=..."

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "myshop-server: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	log.Info().
		Str("version", version).
		Str("port", cfg.Server.Port).
		Str("database", cfg.Database.URL).
		Str("uploads", cfg.Storage.UploadDir).
		Str("moderation_schedule", cfg.Moderation.Schedule).
		Msg("Starting MyShop API")

	// Opens the database, migrates and applies the seed before listening
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize API")
	}

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("API server stopped with error")
	}
}
