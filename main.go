package main

import (
	"os"
	"storefront/config"
	"storefront/connection"
	"storefront/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{ServiceName: "storefront"})
		bootLog.Fatal().Err(err).Msg("loading config")
	}

	log := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Output:      os.Stdout,
	})

	if !cfg.App.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := connection.StartServer(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
