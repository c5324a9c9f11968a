package main

import (
	"context"
	"log"

	"labflow/adapters/postgres"
	"labflow/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Migrate] No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Migrate] Configuration error: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[Migrate] Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatalf("[Migrate] Migration failed: %v", err)
	}
	log.Println("[Migrate] Schema is up to date")
}
