package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `SELECT user_id, items, created_at, updated_at FROM carts WHERE user_id = $1`

	var cart domain.Cart
	var itemsJSON []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cart.UserID,
		&itemsJSON,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	return &cart, nil
}

func (r *PostgresRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	query := `INSERT INTO carts (user_id, items, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id) DO UPDATE SET items = $2, updated_at = $4`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, cart.UserID, itemsJSON, now, now); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteCart(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
