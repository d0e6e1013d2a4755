package main

import (
	"log"

	"officine/internal/config"
	"officine/internal/infra/db"
	httpinfra "officine/internal/infra/http"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	store, err := db.NewStore(cfg)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}

	srv := httpinfra.NewServer(cfg, store, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
