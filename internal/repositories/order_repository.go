package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cremfish/storefront/internal/models"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/google/uuid"
)

// InsufficientStockError reports which product blocked a checkout. The whole
// transaction is rolled back when it is returned, so no partial decrements
// ever persist.
type InsufficientStockError struct {
	ProductID uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

type OrderRepository interface {
	PlaceOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.AdminOrder, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// PlaceOrder commits the order, its lines, every stock decrement and the cart
// clear in a single transaction. Each decrement is conditional on the row
// still holding enough stock, so two concurrent checkouts for the last units
// cannot both succeed.
func (r *orderRepository) PlaceOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	decrement := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	for _, line := range order.Lines {
		result, err := tx.ExecContext(dbCtx, decrement, line.Quantity, line.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get decremented rows: %w", err)
		}

		if affected == 0 {
			return &InsufficientStockError{ProductID: line.ProductID}
		}
	}

	insertOrder := `
		INSERT INTO orders (id, user_id, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := tx.ExecContext(dbCtx, insertOrder, order.ID, order.UserID, order.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	insertLine := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i := range order.Lines {
		line := &order.Lines[i]
		line.ID = uuid.New()
		line.OrderID = order.ID

		if _, err := tx.ExecContext(dbCtx, insertLine, line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(dbCtx, `UPDATE carts SET items = '{}', updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []*models.Order

	for rows.Next() {
		order := &models.Order{}

		if err := rows.Scan(&order.ID, &order.UserID, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		lines, err := r.orderLines(dbCtx, order.ID)
		if err != nil {
			return nil, err
		}

		order.Lines = lines
	}

	return orders, nil
}

func (r *orderRepository) ListAllOrders(ctx context.Context) ([]*models.AdminOrder, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT o.id, o.user_id, o.created_at, u.username
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all orders: %w", err)
	}

	defer rows.Close()

	var orders []*models.AdminOrder

	for rows.Next() {
		order := &models.AdminOrder{}

		if err := rows.Scan(&order.ID, &order.UserID, &order.CreatedAt, &order.Username); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		lines, err := r.orderLines(dbCtx, order.ID)
		if err != nil {
			return nil, err
		}

		order.Lines = lines
	}

	return orders, nil
}

func (r *orderRepository) orderLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {

	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	defer rows.Close()

	var lines []models.OrderLine

	for rows.Next() {
		var line models.OrderLine

		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		lines = append(lines, line)
	}

	return lines, rows.Err()
}
