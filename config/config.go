package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the game server.
type Config struct {
	Addr         string        `env:"WORDGUESS_ADDR" envDefault:":8080"`
	DBPath       string        `env:"WORDGUESS_DB_PATH" envDefault:"./wordguess.db"`
	SessionTTL   time.Duration `env:"WORDGUESS_SESSION_TTL" envDefault:"72h"`
	Logging      bool          `env:"WORDGUESS_LOG" envDefault:"true"`
	OTelEndpoint string        `env:"WORDGUESS_OTEL_ENDPOINT"`
	Terminal     bool          `env:"WORDGUESS_TERMINAL" envDefault:"false"`
}

// LoadDotEnv reads variables from path into the environment. A missing file
// is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load builds the config from .env, the environment and then command-line
// flags, each layer overriding the previous one.
func Load(dotenv string, args []string) (*Config, error) {
	if err := LoadDotEnv(dotenv); err != nil {
		return nil, err
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	fset := flag.NewFlagSet("wordguess", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fset.BoolVar(&cfg.Terminal, "terminal", cfg.Terminal, "play in the terminal instead of serving HTTP")
	if args == nil {
		args = []string{}
	}
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return &cfg, nil
}
