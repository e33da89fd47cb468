package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"carrental-backend/internal/config"
	"carrental-backend/internal/logger"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	source := flag.String("path", "file://migrations", "Migration source URL")
	direction := flag.String("direction", "up", "'up' or 'down'")
	steps := flag.Int("steps", 0, "Apply only N migrations (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format, "migrate")

	m, err := migrate.New(*source, cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to open migrations: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	switch {
	case *steps != 0 && *direction == "down":
		err = m.Steps(-*steps)
	case *steps != 0:
		err = m.Steps(*steps)
	case *direction == "down":
		err = m.Down()
	case *direction == "up":
		err = m.Up()
	default:
		log.Fatalf("Unknown direction %q", *direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("Schema already up to date")
		return
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migration finished", "direction", *direction, "version", version, "dirty", dirty)
}
