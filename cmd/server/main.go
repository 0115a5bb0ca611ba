package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/internal/logger"
	"github.com/arnavshah/duty-scheduler-go/internal/metrics"
	"github.com/arnavshah/duty-scheduler-go/pkg/auth"
	"github.com/arnavshah/duty-scheduler-go/pkg/database"
	"github.com/arnavshah/duty-scheduler-go/pkg/handlers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("DUTY_CONFIG")
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stderr); err != nil {
		return err
	}
	log := logger.New("server")
	gin.SetMode(cfg.Server.GinMode)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := auth.EnsureAdminExists(db, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, log); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	rec, err := metrics.NewPromRecorder(nil)
	if err != nil {
		return err
	}

	r, err := handlers.NewRouter(handlers.New(db, cfg, rec, logger.New("handlers")), nil)
	if err != nil {
		return err
	}
	log.Infof("Server starting on port %s", cfg.Server.Port)
	return r.Run(":" + cfg.Server.Port)
}
