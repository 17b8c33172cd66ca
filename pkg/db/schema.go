package db

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS discounts (
		id            TEXT PRIMARY KEY,
		org_id        TEXT NOT NULL,
		name          TEXT NOT NULL,
		code          TEXT,
		discount_type TEXT NOT NULL,
		value         NUMERIC(12, 2) NOT NULL,
		mode          TEXT NOT NULL DEFAULT 'discount',
		products      TEXT[] NOT NULL DEFAULT '{}',
		categories    TEXT[] NOT NULL DEFAULT '{}',
		bogo          JSONB,
		limits        JSONB,
		starts_at     TIMESTAMPTZ,
		expires_at    TIMESTAMPTZ,
		auto_assign   BOOLEAN NOT NULL DEFAULT FALSE,
		max_amount    NUMERIC(12, 2),
		archived_at   TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS discounts_org_active_idx ON discounts (org_id) WHERE archived_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS discounts_org_code_idx ON discounts (org_id, lower(code))`,
	`CREATE TABLE IF NOT EXISTS discount_redemptions (
		id          TEXT PRIMARY KEY,
		discount_id TEXT NOT NULL REFERENCES discounts (id),
		customer_id TEXT,
		order_ref   TEXT,
		amount      NUMERIC(12, 2) NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS discount_redemptions_customer_idx
		ON discount_redemptions (discount_id, customer_id, created_at)`,
}

// Migrate creates the discount tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate")
		}
	}
	return nil
}
