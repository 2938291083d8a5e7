package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-onboarding-wizard/internal/db"
	"github.com/ad/go-onboarding-wizard/internal/handlers"
	"github.com/ad/go-onboarding-wizard/internal/services"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "onboarding.db"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	stepRepo := db.NewStepRepository(dbQueue)
	progressRepo := db.NewProgressRepository(dbQueue)

	defs, err := stepRepo.GetAll()
	if err != nil {
		log.Fatalf("Failed to load step definitions: %v", err)
	}
	registry, err := services.NewStepRegistry(defs)
	if err != nil {
		log.Fatalf("Invalid step definitions: %v", err)
	}
	for _, role := range registry.Roles() {
		log.Printf("Registered role %s with %d steps", role, registry.StepCount(role))
	}

	tracker := services.NewProgressTracker(registry, progressRepo)
	handler := handlers.NewHTTPHandler(tracker, registry)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server := &http.Server{
		Addr:         listenAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Onboarding service listening on %s, DB: %s", listenAddr, dbPath)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
