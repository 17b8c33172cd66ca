package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPostgresConfig_EnvOverridesBase(t *testing.T) {
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadPostgresConfig(DefaultPostgresConfig())

	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:secret@pg:6543/pricing?sslmode=disable", cfg.DSN())
}

func TestLoadPostgresConfig_BadPort(t *testing.T) {
	t.Setenv("DB_PORT", "five")

	_, err := LoadPostgresConfig(DefaultPostgresConfig())

	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), conn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS discounts").WillReturnError(errors.New("permission denied"))

	err = Migrate(context.Background(), conn)
	assert.ErrorContains(t, err, "permission denied")
}
