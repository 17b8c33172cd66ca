package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

// querier is the part of *sql.DB and *sql.Tx the usage queries need.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

func (r *UsageRepo) CountRedemptions(ctx context.Context, discountID string) (int, error) {
	return countRedemptions(ctx, r.db, discountID)
}

func (r *UsageRepo) CountCustomerRedemptions(ctx context.Context, discountID, customerID string, since *time.Time) (int, error) {
	return countCustomerRedemptions(ctx, r.db, discountID, customerID, since)
}

// WithDiscountLock runs fn in a serializable transaction holding a row lock on the
// discount, so concurrent redemptions of the same discount queue up behind it.
func (r *UsageRepo) WithDiscountLock(ctx context.Context, discountID string, fn func(ctx context.Context, tx interfaces.RedemptionTx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM discounts WHERE id = $1 FOR UPDATE`, discountID).Scan(&locked)
	if err != nil {
		return errors.Wrap(err, "lock discount")
	}

	if err := fn(ctx, &usageTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit redemption")
	}
	return nil
}

type usageTx struct {
	q querier
}

func (t *usageTx) CountRedemptions(ctx context.Context, discountID string) (int, error) {
	return countRedemptions(ctx, t.q, discountID)
}

func (t *usageTx) CountCustomerRedemptions(ctx context.Context, discountID, customerID string, since *time.Time) (int, error) {
	return countCustomerRedemptions(ctx, t.q, discountID, customerID, since)
}

func (t *usageTx) InsertRedemption(ctx context.Context, r models.Redemption) error {
	query := `
		INSERT INTO discount_redemptions (id, discount_id, customer_id, order_ref, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.q.ExecContext(ctx, query,
		r.ID,
		r.DiscountID,
		sql.NullString{String: r.CustomerID, Valid: r.CustomerID != ""},
		sql.NullString{String: r.OrderRef, Valid: r.OrderRef != ""},
		r.Amount,
		r.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert redemption")
	}
	return nil
}

func countRedemptions(ctx context.Context, q querier, discountID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM discount_redemptions WHERE discount_id = $1`, discountID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count redemptions")
	}
	return n, nil
}

func countCustomerRedemptions(ctx context.Context, q querier, discountID, customerID string, since *time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM discount_redemptions
		WHERE discount_id = $1 AND customer_id = $2
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
	`

	var n int
	err := q.QueryRowContext(ctx, query, discountID, customerID, nullTime(since)).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "count customer redemptions")
	}
	return n, nil
}
