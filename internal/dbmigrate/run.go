package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/fdg312/fuel-planner/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Commands accepted by Run.
var Commands = []string{"up", "status", "down"}

// Run applies a goose command using the embedded migrations.
func Run(ctx context.Context, command string, dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if !IsCommand(command) {
		return fmt.Errorf("unsupported command %q (allowed: up, status, down)", command)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

func IsCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}
