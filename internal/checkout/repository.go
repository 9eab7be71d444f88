package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/google/uuid"
)

// OutboxEvent is one unpublished row of the order_events table.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

type RepoInterface interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	CancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	CreateQuotation(ctx context.Context, q *domain.Quotation) error
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder runs the whole order write as one transaction: lock and
// decrement stock for every line, consume the promo usage, insert the order
// with its frozen totals and queue the outbox event. Concurrent checkouts
// for the same scarce stock or usage-limited promo serialize on the row
// locks instead of overshooting.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range order.Items {
		if err := decrementStock(ctx, tx, item); err != nil {
			return err
		}
	}

	if order.Totals.PromoCodeID != nil {
		if err := consumePromoUsage(ctx, tx, *order.Totals.PromoCodeID); err != nil {
			return err
		}
	}

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}

	if err := insertOutboxEvent(ctx, tx, order.ID.String(), EventOrderCreated, order); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

func decrementStock(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error {
	var stock int
	var allowBackorder bool

	if item.VariantID != nil {
		err := tx.QueryRowContext(ctx,
			`SELECT v.stock_quantity, p.allow_backorder
			 FROM product_variants v JOIN products p ON p.id = v.product_id
			 WHERE v.id = $1 FOR UPDATE OF v`, *item.VariantID,
		).Scan(&stock, &allowBackorder)
		if err != nil {
			return fmt.Errorf("lock variant %d: %w", *item.VariantID, err)
		}
		if stock < item.Quantity && !allowBackorder {
			return fmt.Errorf("%w: %s", ErrStockConflict, item.ProductName)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE product_variants SET stock_quantity = stock_quantity - $1 WHERE id = $2`,
			item.Quantity, *item.VariantID); err != nil {
			return fmt.Errorf("decrement variant stock: %w", err)
		}
		return nil
	}

	err := tx.QueryRowContext(ctx,
		`SELECT stock_quantity, allow_backorder FROM products WHERE id = $1 FOR UPDATE`,
		item.ProductID,
	).Scan(&stock, &allowBackorder)
	if err != nil {
		return fmt.Errorf("lock product %d: %w", item.ProductID, err)
	}
	if stock < item.Quantity && !allowBackorder {
		return fmt.Errorf("%w: %s", ErrStockConflict, item.ProductName)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $1 WHERE id = $2`,
		item.Quantity, item.ProductID); err != nil {
		return fmt.Errorf("decrement product stock: %w", err)
	}
	return nil
}

func consumePromoUsage(ctx context.Context, tx *sql.Tx, promoID int64) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE promo_codes SET usage_count = usage_count + 1
		 WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)`, promoID)
	if err != nil {
		return fmt.Errorf("consume promo usage: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume promo usage: %w", err)
	}
	if rows == 0 {
		return ErrPromoExhausted
	}
	return nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	totalsJSON, err := json.Marshal(order.Totals)
	if err != nil {
		return fmt.Errorf("marshal order totals: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, status, items, totals, currency, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Status,
		itemsJSON,
		totalsJSON,
		order.Currency,
		order.CreatedAt,
		order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, aggregateID, eventType string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_events (aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		aggregateID, eventType, payloadJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return scanOrder(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, status, items, totals, currency, created_at, updated_at
		 FROM orders WHERE id = $1`, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, totalsJSON []byte
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&itemsJSON,
		&totalsJSON,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(totalsJSON, &order.Totals); err != nil {
		return nil, fmt.Errorf("unmarshal order totals: %w", err)
	}
	return &order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, status, items, totals, currency, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus flips the status only when the row still holds the
// expected current status; a concurrent change surfaces as
// ErrIllegalTransition.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if rows == 0 {
		return ErrIllegalTransition
	}
	return nil
}

// CancelOrder flips the order to cancelled and restores each line's stock in
// the same transaction. The frozen totals snapshot is never touched.
func (r *Repository) CancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT id, user_id, status, items, totals, currency, created_at, updated_at
		 FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, domain.OrderStatusCancelled)
	}

	for _, item := range order.Items {
		if err := restoreStock(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		domain.OrderStatusCancelled, now, id); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = now
	if err := insertOutboxEvent(ctx, tx, order.ID.String(), EventOrderCancelled, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel tx: %w", err)
	}
	return order, nil
}

func restoreStock(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error {
	if item.VariantID != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE product_variants SET stock_quantity = stock_quantity + $1 WHERE id = $2`,
			item.Quantity, *item.VariantID); err != nil {
			return fmt.Errorf("restore variant stock: %w", err)
		}
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = $2`,
		item.Quantity, item.ProductID); err != nil {
		return fmt.Errorf("restore product stock: %w", err)
	}
	return nil
}

// CreateQuotation persists a priced quotation. No stock or promo usage is
// consumed; a quotation is an offer, not a sale.
func (r *Repository) CreateQuotation(ctx context.Context, q *domain.Quotation) error {
	itemsJSON, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("marshal quotation items: %w", err)
	}
	totalsJSON, err := json.Marshal(q.Totals)
	if err != nil {
		return fmt.Errorf("marshal quotation totals: %w", err)
	}

	query := `INSERT INTO quotations (id, user_id, items, totals, currency, valid_until, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		q.ID, q.UserID, itemsJSON, totalsJSON, q.Currency, q.ValidUntil, q.CreatedAt); err != nil {
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

func (r *Repository) GetUnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM order_events WHERE published_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unpublished events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		ev := &OutboxEvent{}
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventPublished(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET published_at = $1 WHERE id = $2`,
		time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}
