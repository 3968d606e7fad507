package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/dialect"
)

// Config represents the calyx.yaml configuration file.
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	Dialect     string `yaml:"dialect"`
	PlanFile    string `yaml:"plan_file"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig() (*Config, error) {
	cfg := &Config{
		PlanFile: "calyx.plan.yaml",
	}

	// Load config file if it exists
	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		// Handle env var interpolation in database_url
		cfg.DatabaseURL = os.Expand(cfg.DatabaseURL, os.Getenv)
	}

	// Override with env vars
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" && databaseURL == "" {
		cfg.DatabaseURL = envURL
	}
	if envPlan := os.Getenv("CALYX_PLAN_FILE"); envPlan != "" && planPath == "" {
		cfg.PlanFile = envPlan
	}

	// Override with CLI flags (highest priority)
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if planPath != "" {
		cfg.PlanFile = planPath
	}

	if cfg.Dialect == "" {
		cfg.Dialect = dialectFromURL(cfg.DatabaseURL)
	}

	return cfg, nil
}

// dialectFromURL guesses the dialect from a connection URL. Anything
// that is not a postgres URL is treated as a SQLite file path.
func dialectFromURL(url string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// openDatabase opens the configured database and returns its dialect.
func openDatabase(cfg *Config) (*sql.DB, dialect.Dialect, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, cerr.New(cerr.ErrSQLConnection, "no database URL configured").
			With("help", "set database_url in calyx.yaml, DATABASE_URL, or --database-url")
	}

	d, err := dialect.Get(cfg.Dialect)
	if err != nil {
		return nil, nil, err
	}

	driver := "sqlite"
	dsn := cfg.DatabaseURL
	if d.Name() == "postgres" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, cerr.Wrap(cerr.ErrSQLConnection, err, "failed to open database").
			With("dialect", d.Name())
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, cerr.Wrap(cerr.ErrSQLConnection, err, "failed to connect to database").
			With("dialect", d.Name())
	}
	return db, d, nil
}
