package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/fuel-planner/internal/config"
	"github.com/fdg312/fuel-planner/internal/dbmigrate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: go run ./cmd/migrate [%s]", strings.Join(dbmigrate.Commands, "|"))
	}

	command := os.Args[1]
	if !dbmigrate.IsCommand(command) {
		log.Fatalf("unsupported command %q (allowed: %s)", command, strings.Join(dbmigrate.Commands, ", "))
	}

	cfg := config.Load()
	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		log.Fatal(err)
	}
	if warning != "" {
		log.Printf("WARN migrate: %s", warning)
	}
	log.Printf("INFO migrate: command=%s using=%s", command, source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dbmigrate.Run(ctx, command, dbURL); err != nil {
		log.Fatal(err)
	}
	log.Printf("INFO migrate: %s completed", command)
}
