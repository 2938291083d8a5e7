package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"

	"github.com/ad/go-onboarding-wizard/internal/db"
	"github.com/ad/go-onboarding-wizard/internal/models"
	"github.com/ad/go-onboarding-wizard/internal/services"
)

// Replaces the stored step definitions from a JSON file. The file is
// validated by building a registry from it before anything is
// written; running servers pick the change up on restart.
func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./onboarding.db"
	}

	stepsFile := os.Getenv("STEPS_FILE")
	if stepsFile == "" {
		log.Fatal("STEPS_FILE environment variable is required")
	}

	raw, err := os.ReadFile(stepsFile)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", stepsFile, err)
	}

	var defs []models.StepDefinition
	if err := json.Unmarshal(raw, &defs); err != nil {
		log.Fatalf("Failed to parse %s: %v", stepsFile, err)
	}

	registry, err := services.NewStepRegistry(defs)
	if err != nil {
		log.Fatalf("Invalid step definitions: %v", err)
	}

	database, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(database)
	defer dbQueue.Close()

	stepRepo := db.NewStepRepository(dbQueue)

	log.Println("Updating step definitions...")
	if err := stepRepo.ReplaceAll(defs); err != nil {
		log.Fatalf("Failed to replace step definitions: %v", err)
	}

	for _, role := range registry.Roles() {
		log.Printf("Role %s: %d steps", role, registry.StepCount(role))
	}
	log.Println("Step definitions updated successfully!")
}
