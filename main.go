package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-kitchen/cmd/config"
	migration "smart-kitchen/cmd/database/migrate"
	"smart-kitchen/internal/utils"

	"github.com/gofiber/fiber/v2/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("error connecting database: %v", err)
	}

	if *migrate || cfg.DBMigrate {
		if err := migration.Migrate(db); err != nil {
			log.Fatalf("error migrating database: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := config.NewApp(ctx, cfg, db)
	if err != nil {
		log.Fatalf("error creating app: %v", err)
	}
	go app.Janitor.Run(ctx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Fiber.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorf("server stopped: %v", err)
		}
		stop()
	case <-ctx.Done():
		log.Info("shutting down")
	}

	if err := app.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorf("error during shutdown: %v", err)
	}

	enriched := make(chan struct{})
	go func() {
		app.Pantry.Wait()
		close(enriched)
	}()
	select {
	case <-enriched:
	case <-time.After(shutdownTimeout):
		log.Warn("background enrichment still running at exit")
	}
	<-app.Janitor.Done()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
