package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/classhub/assistant-bot/config"
	"github.com/classhub/assistant-bot/internal/infrastructure/persistence/postgres"
	"github.com/classhub/assistant-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATE
// Applies, rolls back, or reports the classroom schema migrations.
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	rollback := flag.Bool("rollback", false, "roll back the most recent migration")
	status := flag.Bool("status", false, "print migration status and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatal("failed to load config", logger.Err(err))
	}

	log := logger.New(logger.Options{Level: logger.ParseLevel(cfg.Observability.LogLevel)})

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := postgres.NewConnection(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		log.Fatal("failed to connect to database", logger.Err(err))
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)

	switch {
	case *status:
		statuses, err := migrator.Status(ctx)
		if err != nil {
			log.Fatal("failed to read migration status", logger.Err(err))
		}
		for _, s := range statuses {
			log.Info("migration",
				logger.Int("version", s.Version),
				logger.String("name", s.Name),
				logger.Bool("applied", s.IsApplied),
			)
		}
	case *rollback:
		if err := migrator.Rollback(ctx); err != nil {
			log.Fatal("rollback failed", logger.Err(err))
		}
		log.Info("rollback complete")
	default:
		if err := migrator.Migrate(ctx); err != nil {
			log.Fatal("migration failed", logger.Err(err))
		}
		log.Info("migrations complete")
	}

	os.Exit(0)
}
