package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-versioning-be/internal/bootstrap"
	"notes-versioning-be/internal/config"
	"notes-versioning-be/internal/server"
	"notes-versioning-be/internal/tracer"
	"notes-versioning-be/pkg/database"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	// 2. Initialize Database
	dbOpts := database.DefaultOptions()
	dbOpts.Verbose = !cfg.IsProduction()
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, dbOpts)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go container.FeedHub.Run(ctx)

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
