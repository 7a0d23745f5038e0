package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samhans17/delivery-tracker/internal/auth"
	"github.com/samhans17/delivery-tracker/internal/config"
	"github.com/samhans17/delivery-tracker/internal/database"
	"github.com/samhans17/delivery-tracker/internal/logging"
	"github.com/samhans17/delivery-tracker/internal/router"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	database.Init(cfg)

	store := auth.NewRevocationStore(context.Background(), cfg.RedisAddr)
	app := router.New(cfg, store)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logging.Log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logging.WithField("error", err.Error()).Error("shutdown failed")
		}
	}()

	logging.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logging.Log.Fatal(err)
	}
}
