package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/studio-pricing-service/pkg/db"
)

type Config struct {
	Addr         string            `yaml:"addr"`
	TaxRate      decimal.Decimal   `yaml:"taxRate"`
	CatalogFile  string            `yaml:"catalogFile"`
	CacheTTL     time.Duration     `yaml:"cacheTTL"`
	LogLevel     string            `yaml:"logLevel"`
	BatchWorkers int               `yaml:"batchWorkers"`
	Postgres     db.PostgresConfig `yaml:"postgres"`
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		TaxRate:      decimal.RequireFromString("0.10"),
		CacheTTL:     30 * time.Second,
		LogLevel:     "info",
		BatchWorkers: 4,
		Postgres:     db.DefaultPostgresConfig(),
	}
}

// Load builds the config from defaults, then the optional YAML file at path, then
// the environment (including a .env file in the working directory).
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "parse config")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if cfg.TaxRate.IsNegative() {
		return Config{}, errors.Errorf("tax rate must not be negative, got %s", cfg.TaxRate)
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}
	return cfg, nil
}

// UseDatabase reports whether the service should run against Postgres rather than
// the in-memory catalog.
func (c Config) UseDatabase() bool {
	return c.Postgres.Host != ""
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PRICING_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("PRICING_TAX_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return errors.Wrap(err, "PRICING_TAX_RATE")
		}
		c.TaxRate = rate
	}
	if v := os.Getenv("PRICING_CATALOG_FILE"); v != "" {
		c.CatalogFile = v
	}
	if v := os.Getenv("PRICING_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PRICING_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "PRICING_CACHE_TTL")
		}
		c.CacheTTL = ttl
	}
	if v := os.Getenv("PRICING_BATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "PRICING_BATCH_WORKERS")
		}
		c.BatchWorkers = n
	}

	pg, err := db.LoadPostgresConfig(c.Postgres)
	if err != nil {
		return err
	}
	c.Postgres = pg
	return nil
}
