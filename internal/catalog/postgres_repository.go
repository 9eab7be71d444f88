package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_shop/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, sku, name, description, category_id, price, thumbnail,
	                 stock_quantity, allow_backorder, active, created_at, updated_at
	          FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.CategoryID,
		&p.Price,
		&p.Thumbnail,
		&p.StockQuantity,
		&p.AllowBackorder,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error) {
	query := `SELECT id, product_id, sku, name, options, price, stock_quantity, active
	          FROM product_variants WHERE id = $1`

	var v domain.ProductVariant
	var optionsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.ProductID,
		&v.SKU,
		&v.Name,
		&optionsJSON,
		&v.Price,
		&v.StockQuantity,
		&v.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query variant by id: %w", err)
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &v.Options); err != nil {
			return nil, fmt.Errorf("unmarshal variant options: %w", err)
		}
	}
	return &v, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT id, sku, name, description, category_id, price, thumbnail,
	                 stock_quantity, allow_backorder, active, created_at, updated_at
	          FROM products ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(
			&p.ID,
			&p.SKU,
			&p.Name,
			&p.Description,
			&p.CategoryID,
			&p.Price,
			&p.Thumbnail,
			&p.StockQuantity,
			&p.AllowBackorder,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}
