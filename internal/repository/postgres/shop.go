package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stomadent/clinic-api/internal/model"
	"github.com/stomadent/clinic-api/internal/repository"
)

type shopRepository struct {
	db *sqlx.DB
}

func NewShopRepository(db *sqlx.DB) repository.ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) ListProducts(ctx context.Context) ([]*model.Product, error) {
	query := `
		SELECT id, name, description, price_cents, currency, active, created_at, updated_at
		FROM products
		WHERE active = TRUE
		ORDER BY name ASC
	`
	var products []*model.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *shopRepository) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT id, name, description, price_cents, currency, active, created_at, updated_at
		FROM products
		WHERE id = $1 AND active = TRUE
	`
	var product model.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *shopRepository) CreateOrder(ctx context.Context, order *model.Order, items []*model.OrderItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	order.Status = model.OrderStatusPending

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, patient_email, total_cents, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		order.ID,
		order.PatientEmail,
		order.TotalCents,
		order.Currency,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		item.ID = uuid.New()
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)
		`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.PriceCents,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func (r *shopRepository) SetStripeSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	query := `
		UPDATE orders
		SET stripe_session_id = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, sessionID, orderID)
	if err != nil {
		return fmt.Errorf("failed to set stripe session: %w", err)
	}
	return nil
}

func (r *shopRepository) MarkOrderPaidBySession(ctx context.Context, sessionID string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE stripe_session_id = $2 AND status = $3
	`
	result, err := r.db.ExecContext(ctx, query,
		model.OrderStatusPaid, sessionID, model.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Unknown session or webhook replay. Stripe retries until it gets a
		// 2xx, so replays must not be errors.
		return nil
	}
	return nil
}
