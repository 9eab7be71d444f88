package promo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/lib/pq"
)

var ErrCodeNotFound = errors.New("promo code not found")

// Repository looks up promo codes and records usage. IncrementUsage is only
// called by order creation after a successful order, never by the pricing
// engine itself.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	IncrementUsage(ctx context.Context, id int64) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NormalizeCode upper-cases and trims a promo code for case-insensitive lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `SELECT id, code, discount_type, discount_value, minimum_order_amount,
	                 maximum_discount_amount, usage_limit, usage_count,
	                 usage_limit_per_customer, starts_at, expires_at, active,
	                 applies_to_products, applies_to_categories
	          FROM promo_codes WHERE code = $1`

	var p domain.PromoCode
	err := r.db.QueryRowContext(ctx, query, NormalizeCode(code)).Scan(
		&p.ID,
		&p.Code,
		&p.DiscountType,
		&p.DiscountValue,
		&p.MinimumOrderAmount,
		&p.MaximumDiscountAmount,
		&p.UsageLimit,
		&p.UsageCount,
		&p.UsageLimitPerCustomer,
		&p.StartsAt,
		&p.ExpiresAt,
		&p.Active,
		pq.Array(&p.AppliesToProducts),
		pq.Array(&p.AppliesToCategories),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query promo code: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) IncrementUsage(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE promo_codes SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment promo usage: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment promo usage: %w", err)
	}
	if rows == 0 {
		return ErrCodeNotFound
	}
	return nil
}
