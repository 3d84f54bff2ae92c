// Package main provides CLI for database schema management.
// Usage: migrate up
//        migrate down
//        migrate status
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"

	"stockbook/pkg/config"
)

// Subcommands passed through to goose. Anything else is rejected so a
// typo cannot become "goose reset" against a live database.
var allowedCommands = map[string]bool{
	"up":        true,
	"up-by-one": true,
	"down":      true,
	"status":    true,
	"version":   true,
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		if !allowedCommands[command] {
			fmt.Printf("Unknown command: %s\n", command)
			printUsage()
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "db/migrations"
	}

	fmt.Printf("Running goose %s (dir %s)...\n", command, dir)

	cmd := exec.Command("goose", "-dir", dir, "postgres", cfg.DB.ConnectionString(), command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("Migration command failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Stockbook Schema Migration CLI

Wraps the goose binary, which must be on PATH
(go install github.com/pressly/goose/v3/cmd/goose@latest).

Usage:
  migrate <command>

Commands:
  up         Apply all pending migrations
  up-by-one  Apply the next pending migration only
  down       Roll back the most recent migration
  status     Show applied and pending migrations
  version    Print the current schema version
  help       Show this help

Environment Variables:
  DATABASE_URL     Full connection string (preferred)
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE
                   Individual connection settings when DATABASE_URL is unset
  MIGRATIONS_DIR   Migration directory (default db/migrations)`)
}
