package db

import (
	"os"
	"strconv"

	"github.com/go-faster/errors"
)

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Port:    5432,
		User:    "postgres",
		DBName:  "pricing",
		SSLMode: "disable",
	}
}

// LoadPostgresConfig overrides base with any DB_* variables that are set.
func LoadPostgresConfig(base PostgresConfig) (PostgresConfig, error) {
	cfg := base
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return PostgresConfig{}, errors.Wrap(err, "DB_PORT")
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.SSLMode = v
	}
	return cfg, nil
}

func (c PostgresConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}
