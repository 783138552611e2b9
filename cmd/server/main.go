package main // Entry point package

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus" // Structured logging

	"github.com/iliyamo/game-rental/internal/config"   // Environment config loader
	"github.com/iliyamo/game-rental/internal/database" // Migrations
)

func main() {
	if err := config.LoadDotEnv(); err != nil { // Optional .env, real env wins
		log.WithError(err).Fatal("load .env")
	}
	cfg := config.Load()         // Load environment config
	config.ConfigureLogging(cfg) // JSON logs in prod, text otherwise

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	if len(os.Args) > 1 && os.Args[1] == "migrate" { // server migrate up|down [n]|status
		if err := migrateCommand(dsn, os.Args[2:]); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, dsn); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func migrateCommand(dsn string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: server migrate [up|down|status] [steps]")
	}
	switch args[0] {
	case "up":
		return database.MigrateUp(dsn)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(dsn, steps)
	case "status":
		return database.MigrateStatus(dsn)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
