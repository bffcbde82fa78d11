package main

import (
	"context"
	"log"

	"pdfchat-be/internal/bootstrap"
	"pdfchat-be/internal/config"
	"pdfchat-be/internal/server"
	"pdfchat-be/internal/tracer"
	"pdfchat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start background services
	if err := container.AuditService.Start(context.Background()); err != nil {
		log.Printf("Background: Audit consumer failed to start: %v", err)
	}
	go container.Sweeper.Start(context.Background())
	defer container.Sweeper.Stop()

	// 5. Initialize and run server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
