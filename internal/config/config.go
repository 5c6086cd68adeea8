package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"
)

// Config holds the service configuration resolved from the environment.
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// MongoDB plan document store, used when DATABASE_URL is not set
	MongoURI      string
	MongoDatabase string

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	Blob BlobConfig

	// Exports
	ExportsMaxPerList int

	// Planning defaults
	PlanDefaultWeightKg float64
	PlanDefaultOwner    string

	// Authentication
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// Migrations
	RunMigrationsOnStartup bool
}

// Load reads the configuration from environment variables. Invalid values
// log a warning and fall back to their defaults.
func Load() *Config {
	env := firstEnv("local", "APP_ENV", "ENV")

	// Runtime connections prefer the pooler; migrations pick their own URL.
	dbPooled := envString("DATABASE_URL_POOLED", "")
	dbURL := envString("DATABASE_URL", "")
	dbDirect := envString("DATABASE_URL_DIRECT", "")

	cfg := &Config{
		Env:      env,
		Port:     envInt("PORT", 8080),
		LogLevel: envString("LOG_LEVEL", "debug"),

		DatabaseURL:       firstNonEmpty(dbPooled, dbURL, dbDirect),
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		MongoURI:      envString("MONGODB_URI", ""),
		MongoDatabase: envString("MONGODB_DATABASE", "fuelplanner"),

		CORSAllowedOrigins:   parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env),
		CORSAllowCredentials: parseBoolEnv("CORS_ALLOW_CREDENTIALS"),

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob: BlobConfig{
			Mode:           parseBlobMode("BLOB_MODE", BlobModeLocal),
			ExportsMode:    parseBlobMode("EXPORTS_MODE", BlobModeLocal),
			ExportsModeSet: envString("EXPORTS_MODE", "") != "",
			S3: S3Config{
				Endpoint:          envString("S3_ENDPOINT", ""),
				Region:            envString("S3_REGION", ""),
				Bucket:            envString("S3_BUCKET", ""),
				AccessKeyID:       envString("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey:   envString("S3_SECRET_ACCESS_KEY", ""),
				PublicBaseURL:     envString("S3_PUBLIC_BASE_URL", ""),
				PresignTTLSeconds: envPositiveInt("S3_PRESIGN_TTL_SECONDS", 900),
				PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
			},
		},

		ExportsMaxPerList: envPositiveInt("EXPORTS_MAX_PER_LIST", 50),

		PlanDefaultWeightKg: envFloat("PLAN_DEFAULT_WEIGHT_KG", 56.5),
		PlanDefaultOwner:    envString("PLAN_DEFAULT_OWNER", "default"),

		JWTSecret:     envString("JWT_SECRET", "change_me"),
		JWTIssuer:     envString("JWT_ISSUER", "fuel-planner"),
		JWTTTLMinutes: envPositiveInt("JWT_TTL_MINUTES", 7*24*60),

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
	}

	if cfg.PlanDefaultWeightKg <= 0 {
		log.Printf("WARNING: PLAN_DEFAULT_WEIGHT_KG=%v must be > 0, fallback to 56.5", cfg.PlanDefaultWeightKg)
		cfg.PlanDefaultWeightKg = 56.5
	}

	cfg.AuthMode = strings.ToLower(envString("AUTH_MODE", AuthModeNone))
	if cfg.AuthMode != AuthModeNone && cfg.AuthMode != AuthModeDev {
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", cfg.AuthMode)
		cfg.AuthMode = AuthModeNone
	}
	cfg.AuthRequired = cfg.AuthMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")

	if cfg.JWTSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	return cfg
}

// StorageBackend names the plan store Load's settings select.
func (c *Config) StorageBackend() string {
	switch {
	case c.DatabaseURL != "":
		return "postgres"
	case c.MongoURI != "":
		return "mongo"
	default:
		return "memory"
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(envString(key, defaultVal))
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(defaultVal string, keys ...string) string {
	for _, key := range keys {
		if v := envString(key, ""); v != "" {
			return v
		}
	}
	return defaultVal
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(envString(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

// envPositiveInt is envInt with non-positive values replaced by the default.
func envPositiveInt(key string, defaultVal int) int {
	if v := envInt(key, defaultVal); v > 0 {
		return v
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	v, err := strconv.ParseFloat(envString(key, ""), 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(envString(key, "")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
