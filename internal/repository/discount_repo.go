package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

const discountColumns = `id, org_id, name, code, discount_type, value, mode, products, categories,
	bogo, limits, starts_at, expires_at, auto_assign, max_amount, archived_at, created_at`

type DiscountRepo struct {
	db *sql.DB
}

func NewDiscountRepo(db *sql.DB) *DiscountRepo {
	return &DiscountRepo{db: db}
}

func (r *DiscountRepo) LookupDiscount(ctx context.Context, orgID, id string) (*models.Discount, error) {
	query := `SELECT ` + discountColumns + `
		FROM discounts
		WHERE id = $1 AND org_id = $2`

	d, err := scanDiscount(r.db.QueryRowContext(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "select discount")
	}
	return &d, nil
}

func (r *DiscountRepo) LookupDiscountByCode(ctx context.Context, orgID, code string) (*models.Discount, error) {
	query := `SELECT ` + discountColumns + `
		FROM discounts
		WHERE org_id = $1 AND lower(code) = lower($2)
		ORDER BY created_at DESC
		LIMIT 1`

	d, err := scanDiscount(r.db.QueryRowContext(ctx, query, orgID, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "select discount by code")
	}
	return &d, nil
}

func (r *DiscountRepo) LookupActiveDiscounts(ctx context.Context, orgID string) ([]models.Discount, error) {
	query := `SELECT ` + discountColumns + `
		FROM discounts
		WHERE org_id = $1 AND archived_at IS NULL
		ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "select active discounts")
	}
	defer rows.Close()

	discounts := make([]models.Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan discount")
		}
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate discounts")
	}
	return discounts, nil
}

func (r *DiscountRepo) CreateDiscount(ctx context.Context, d models.Discount) (models.Discount, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Mode == "" {
		d.Mode = models.ModeDiscount
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	bogo, err := jsonb(d.Bogo)
	if err != nil {
		return models.Discount{}, errors.Wrap(err, "encode bogo")
	}
	limits, err := jsonb(d.Limits)
	if err != nil {
		return models.Discount{}, errors.Wrap(err, "encode limits")
	}

	query := `INSERT INTO discounts (` + discountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.OrgID,
		d.Name,
		sql.NullString{String: d.Code, Valid: d.Code != ""},
		string(d.Type),
		d.Value,
		string(d.Mode),
		pq.Array(nonNilStrings(d.Products)),
		pq.Array(nonNilStrings(d.Categories)),
		bogo,
		limits,
		nullTime(d.Start),
		nullTime(d.Expiry),
		d.AutoAssign,
		d.MaxAmount,
		nullTime(d.ArchivedAt),
		d.CreatedAt,
	)
	if err != nil {
		return models.Discount{}, errors.Wrap(err, "insert discount")
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiscount(row rowScanner) (models.Discount, error) {
	var (
		d                         models.Discount
		code                      sql.NullString
		discountType, mode        string
		bogo, limits              []byte
		start, expiry, archivedAt sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.OrgID,
		&d.Name,
		&code,
		&discountType,
		&d.Value,
		&mode,
		pq.Array(&d.Products),
		pq.Array(&d.Categories),
		&bogo,
		&limits,
		&start,
		&expiry,
		&d.AutoAssign,
		&d.MaxAmount,
		&archivedAt,
		&d.CreatedAt,
	)
	if err != nil {
		return models.Discount{}, err
	}

	d.Code = code.String
	d.Type = models.DiscountType(discountType)
	d.Mode = models.AdjustmentMode(mode)
	d.Start = timePtr(start)
	d.Expiry = timePtr(expiry)
	d.ArchivedAt = timePtr(archivedAt)

	if len(bogo) > 0 {
		if err := json.Unmarshal(bogo, &d.Bogo); err != nil {
			return models.Discount{}, errors.Wrap(err, "decode bogo")
		}
	}
	if len(limits) > 0 {
		if err := json.Unmarshal(limits, &d.Limits); err != nil {
			return models.Discount{}, errors.Wrap(err, "decode limits")
		}
	}
	return d, nil
}

// jsonb encodes v for a JSONB column; nil pointers become SQL NULL.
func jsonb[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
