package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"go-inventory-ledger/pkg/database"
)

type Config struct {
	Port     string
	Database database.Config

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	IdempotencyTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	StoreTimeout      time.Duration
	StockPolicy       string
	Location          *time.Location
	LowStockThreshold int

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults for
// unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	cfg := &Config{
		Port: r.str("PORT", "3000"),
		Database: database.Config{
			Driver:       r.str("DB_DRIVER", "postgres"),
			DSN:          r.str("DATABASE_URL", ""),
			Host:         r.str("DB_HOST", "localhost"),
			Port:         r.str("DB_PORT", "5432"),
			User:         r.str("DB_USER", "postgres"),
			Password:     r.str("DB_PASSWORD", ""),
			Name:         r.str("DB_NAME", "inventory"),
			LogLevel:     r.str("DB_LOG_LEVEL", "warn"),
			MaxOpenConns: r.integer("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns: r.integer("DB_MAX_IDLE_CONNS", 10),
		},
		RedisAddr:         r.str("REDIS_ADDR", ""),
		RedisPassword:     r.str("REDIS_PASSWORD", ""),
		RedisDB:           r.integer("REDIS_DB", 0),
		IdempotencyTTL:    r.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		JWTSecret:         r.str("JWT_SECRET", "change-me-in-production"),
		JWTTTL:            r.duration("JWT_TTL", 24*time.Hour),
		StoreTimeout:      r.duration("STORE_TIMEOUT", 5*time.Second),
		StockPolicy:       r.str("STOCK_POLICY", "on_create"),
		LowStockThreshold: r.integer("LOW_STOCK_THRESHOLD", 10),
		AdminEmail:        r.str("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:     r.str("ADMIN_PASSWORD", "admin123"),
	}

	tz := r.str("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		r.fail("TIMEZONE", tz, err)
	}
	cfg.Location = loc
	cfg.Database.TimeZone = tz

	switch cfg.Database.Driver {
	case "postgres", "mysql":
	default:
		r.fail("DB_DRIVER", cfg.Database.Driver, fmt.Errorf("want postgres or mysql"))
	}
	switch cfg.StockPolicy {
	case "on_create", "on_complete":
	default:
		r.fail("STOCK_POLICY", cfg.StockPolicy, fmt.Errorf("want on_create or on_complete"))
	}
	if cfg.StoreTimeout <= 0 {
		r.fail("STORE_TIMEOUT", cfg.StoreTimeout.String(), fmt.Errorf("must be positive"))
	}

	if r.err != nil {
		return nil, r.err
	}
	return cfg, nil
}

// reader keeps the first parse failure so Load reports one clear error.
type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("config %s=%q: %w", key, value, err)
	}
}

func (r *reader) str(key, def string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}
