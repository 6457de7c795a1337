package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIURL         string        `env:"STUDENTS_API_URL" envDefault:"http://localhost:5000/students"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	AvailabilityMode string        `env:"AVAILABILITY_MODE" envDefault:"probe"`
	ProbeTimeout     time.Duration `env:"PROBE_TIMEOUT" envDefault:"2s"`
	ProbeTTL         time.Duration `env:"PROBE_TTL" envDefault:"15s"`

	// CacheDriver is sqlite, postgres or memory.
	CacheDriver string `env:"CACHE_DRIVER" envDefault:"sqlite"`
	CacheDSN    string `env:"CACHE_DSN" envDefault:"students_cache.db"`

	// Postgres connection, used when CacheDriver is postgres.
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"studentdb"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	ImportWorkers  int      `env:"IMPORT_WORKERS" envDefault:"4"`
}

// Load reads an optional .env file then parses the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// PostgresDSN builds a connection string from the DB_* settings.
func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword + " dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable"
}
