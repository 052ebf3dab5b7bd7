//cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/unclebandit/postcampaign-backend/internal/config"
	"github.com/unclebandit/postcampaign-backend/internal/db"
)

func main() {
	migrationsDir := flag.String("migrations", "migrations", "directory of schema migrations")
	seedDir := flag.String("seed", "seed", "directory of seed data")
	skipSeed := flag.Bool("migrate-only", false, "apply migrations without loading seed data")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db.Init(cfg.Database)
	defer db.DB.Close()

	dirs := []string{*migrationsDir}
	if !*skipSeed {
		dirs = append(dirs, *seedDir)
	}

	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
		if err != nil {
			log.Fatalf("failed to list %s: %v", dir, err)
		}
		sort.Strings(files)

		for _, file := range files {
			content, err := os.ReadFile(file)
			if err != nil {
				log.Fatalf("failed to read %s: %v", file, err)
			}

			if _, err := db.DB.Exec(string(content)); err != nil {
				log.Fatalf("failed to execute %s: %v", file, err)
			}
			fmt.Printf("Applied: %s\n", file)
		}
	}

	fmt.Println("Database setup completed successfully!")
}
