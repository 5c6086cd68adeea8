package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/fuel-planner/internal/config"
	"github.com/fdg312/fuel-planner/internal/dbmigrate"
	"github.com/fdg312/fuel-planner/internal/httpserver"
)

const insecureJWTSecret = "change_me"

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}

		log.Printf("INFO startup migrations: command=up using=%s", source)
		if err := dbmigrate.Run(ctx, "up", dbURL); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("INFO startup migrations: completed")
	}

	validateProductionConfig(cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("FATAL http: %v", err)
		}
	case <-ctx.Done():
		log.Println("INFO http: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARN http: shutdown: %v", err)
		}
	}
}

// printStartupBanner logs the resolved configuration once. Secrets are only
// reported as set or not set.
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Fuel Planner API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)
	log.Printf("  log_level        = %s", cfg.LogLevel)

	log.Println("---- storage ----")
	log.Printf("  backend          = %s", cfg.StorageBackend())
	log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
	log.Printf("  pooled           = %s", setOrNot(cfg.DatabaseURLPooled))
	log.Printf("  direct           = %s", setOrNot(cfg.DatabaseURLDirect))
	log.Printf("  mongodb_uri      = %s", setOrNot(cfg.MongoURI))
	log.Printf("  mongodb_database = %s", nonEmptyOrDash(cfg.MongoDatabase))
	log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	if cfg.RunMigrationsOnStartup && cfg.DatabaseURLDirect == "" {
		log.Printf("  migrations_via   = (will fail, DATABASE_URL_DIRECT not set)")
	}

	log.Println("---- auth ----")
	log.Printf("  auth_mode        = %s", cfg.AuthMode)
	log.Printf("  auth_required    = %t", cfg.AuthRequired)
	log.Printf("  jwt_secret       = %s", secretStatus(cfg.JWTSecret, insecureJWTSecret))
	log.Printf("  jwt_issuer       = %s", nonEmptyOrDash(cfg.JWTIssuer))

	log.Println("---- exports ----")
	log.Printf("  blob_mode        = %s", cfg.Blob.Mode)
	log.Printf("  exports_mode     = %s (effective=%s)", displayExportsMode(cfg), cfg.Blob.EffectiveExportsMode())
	log.Printf("  max_per_list     = %d", cfg.ExportsMaxPerList)
	if cfg.Blob.EffectiveExportsMode() != config.BlobModeLocal {
		log.Printf("  s3: %s", cfg.Blob.S3.DiagnosticsSummary())
	}

	log.Println("---- planning ----")
	log.Printf("  default_owner    = %s", cfg.PlanDefaultOwner)
	log.Printf("  default_weight_kg = %.1f", cfg.PlanDefaultWeightKg)
	log.Printf("  rate_limit       = %d rps (burst %d)", cfg.RateLimitRPS, cfg.RateLimitBurst)

	log.Println("======================================")
}

// validateProductionConfig performs fatal checks that only matter outside local.
func validateProductionConfig(cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"

	if cfg.Blob.EffectiveExportsMode() == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL blob: exports mode is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.AuthMode != config.AuthModeNone && strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("FATAL auth: AUTH_MODE=%s requires JWT_SECRET", cfg.AuthMode)
	}

	if isProd && cfg.AuthRequired && cfg.JWTSecret == insecureJWTSecret {
		log.Fatalf("FATAL auth: JWT_SECRET must not be '%s' in %s with AUTH_REQUIRED=1", insecureJWTSecret, cfg.Env)
	}

	if isProd && cfg.StorageBackend() == "memory" {
		log.Fatalf("FATAL storage: no DATABASE_URL or MONGODB_URI configured in %s", cfg.Env)
	}
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func displayExportsMode(cfg *config.Config) string {
	if cfg.Blob.ExportsModeSet {
		return cfg.Blob.ExportsMode
	}
	return fmt.Sprintf("(inherits BLOB_MODE=%s)", cfg.Blob.Mode)
}
