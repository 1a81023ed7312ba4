package main

import (
	"flag"
	"os"

	"notes-versioning-be/internal/model"
	"notes-versioning-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	verbose := flag.Bool("verbose", false, "log every SQL statement")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect
	opts := database.DefaultOptions()
	opts.Verbose = *verbose
	db, err := database.NewGormDBFromDSN(dsn, opts)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting note versioning migration...")

	// 3. Extensions
	color.Yellow("Step 1: Setting up extensions")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Red("Warn: Failed to create pgcrypto: %v. Continuing...", err)
	}

	// 4. Tables. Order matters: notes reference users, versions reference both.
	color.Yellow("Step 2: Running AutoMigrate")
	models := []interface{}{
		&model.User{},
		&model.Note{},
		&model.NoteVersion{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			color.Red("Error: AutoMigrate failed for %T: %v", m, err)
			os.Exit(1)
		}
		color.Green("  migrated %T", m)
	}

	// 5. Indexes AutoMigrate does not derive from tags
	color.Yellow("Step 3: Creating secondary indexes")
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_notes_owner_updated ON notes (owner_id, updated_at DESC);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("Success: Database migration completed.")
}
