package main

import (
	"os"

	"flipper-backend/internal/config"
	"flipper-backend/pkg/container"
	"flipper-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// ========================================
	// LOAD ENVIRONMENT VARIABLES
	// ========================================
	// .env is for local development; production uses the real environment
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(os.Getenv("APP_ENV"), "info")
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	if envErr != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	// ========================================
	// SET GIN MODE
	// ========================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().Str("env", cfg.App.Environment).Str("store", cfg.Store.Driver).Msg("starting")

	appContainer, err := container.Build(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}

	Serve(appContainer)
}
