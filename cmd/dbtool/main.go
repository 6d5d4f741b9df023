package main

import (
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/hbsurial/logistics-coordination-agent/internal/adapters/repositories"
	"github.com/hbsurial/logistics-coordination-agent/internal/config"
	"github.com/hbsurial/logistics-coordination-agent/internal/platform/db"
)

// dbtool initializes the postgres schema and seeds warehouse reference
// data for local runs.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL())
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	seedPath := strings.TrimSpace(os.Getenv("SEED_PATH"))
	if seedPath == "" {
		seedPath = "data/seeds/warehouses.json"
	}

	if err := initAndSeed(sqlDB, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(db *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding warehouses...")
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
