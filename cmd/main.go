package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"beautyfood-backend/cmd/config"
	migration "beautyfood-backend/cmd/database/migrate"
	"beautyfood-backend/internal/utils"
	"beautyfood-backend/internal/utils/logger"
)

func main() {
	utils.LoadConfig()
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	app, cleanup, err := config.NewApp(ctx, db, log)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}
	defer cleanup()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		port := utils.GetConfigDefault("APP_PORT", "8080")
		log.Infof("starting beautyfood backend on :%s", port)
		errCh <- app.Listen(":" + port)
	}()

	select {
	case <-sigCh:
		log.Info("received shutdown signal")
	case err := <-errCh:
		log.Errorf("server error: %v", err)
	}

	log.Info("shutting down...")
	cancel()
	if err := app.Shutdown(); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
