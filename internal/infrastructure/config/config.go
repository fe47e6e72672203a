package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// TokenTTL bounds bearer token validity.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=1h"`

	// UploadDir is where raw and cleaned dataset files are stored.
	UploadDir string `env:"UPLOAD_DIR, default=uploads"`

	// IngestWorkers sizes the background ingestion worker pool.
	IngestWorkers int `env:"INGEST_WORKERS, default=2"`

	Postgres PostgresConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	URL            string `env:"DATABASE_URL,    default=postgres://localhost:5432/medidatabase?sslmode=disable"`
	MaxConns       int32  `env:"DATABASE_MAX_CONNS, default=10"`
	MigrationsPath string `env:"MIGRATIONS_PATH, default=migrations"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
