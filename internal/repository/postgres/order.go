package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
	"github.com/NSBM-SE-Projects/atelier/pkg/database"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

const orderColumns = `id, order_number, customer_id, status, subtotal::text, discount::text, total::text, shipping_address, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its items atomically within a transaction and
// fills in the generated IDs.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (order_number, customer_id, status, subtotal, discount, total, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err = tx.QueryRow(ctx, orderQuery,
		o.OrderNumber,
		o.CustomerID,
		o.Status,
		o.Subtotal.String(),
		o.Discount.String(),
		o.Total.String(),
		o.ShippingAddress,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order", "order_number", o.OrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, image_url, size, color, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRow(ctx, itemQuery,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.UnitPrice.String(),
			item.ImageURL,
			item.Size,
			item.Color,
			item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, including items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetOrder", query)
	row := r.pool.QueryRow(ctx, query, id)
	o, err := scanOrder(row)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByNumber retrieves an order by its public order number, including items.
func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	ctx, end := database.TraceQuery(ctx, "GetOrderByNumber", query)
	row := r.pool.QueryRow(ctx, query, orderNumber)
	o, err := scanOrder(row)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", orderNumber)
		}
		return nil, fmt.Errorf("select order by number: %w", err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByCustomer returns all orders of a customer, newest first, including items.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListOrdersByCustomer", query)
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("select customer orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	end(err)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// List returns a page of all orders, newest first, with the total count.
// Items are not loaded; the admin list view only shows order headers.
func (r *OrderRepository) List(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	countQuery := `SELECT COUNT(*) FROM orders`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "ListOrders", query)
	rows, err := r.pool.Query(ctx, query, perPage, (page-1)*perPage)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	end(err)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus changes the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", query)
	tag, err := r.pool.Exec(ctx, query, status, id)
	end(err)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", fmt.Sprintf("%d", id))
	}

	return nil
}

// Count returns the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// TotalRevenue returns the sum of all order totals.
func (r *OrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total), 0)::text FROM orders WHERE status <> $1`

	var totalStr string
	if err := r.pool.QueryRow(ctx, query, domain.OrderStatusCancelled).Scan(&totalStr); err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}

	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse revenue: %w", err)
	}
	return total, nil
}

// DailyStats returns the order count and revenue for a single calendar day.
func (r *OrderRepository) DailyStats(ctx context.Context, day time.Time) (int, decimal.Decimal, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0)::text
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> $3`

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var (
		count      int
		revenueStr string
	)
	if err := r.pool.QueryRow(ctx, query, start, end, domain.OrderStatusCancelled).Scan(&count, &revenueStr); err != nil {
		return 0, decimal.Zero, fmt.Errorf("daily stats: %w", err)
	}

	revenue, err := decimal.NewFromString(revenueStr)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("parse daily revenue: %w", err)
	}
	return count, revenue, nil
}

// TopSpenders returns the customers with the highest lifetime spend.
func (r *OrderRepository) TopSpenders(ctx context.Context, limit int) ([]repository.TopSpender, error) {
	query := `
		SELECT o.customer_id, u.username, SUM(o.total)::text AS spent
		FROM orders o
		JOIN users u ON u.id = o.customer_id
		WHERE o.status <> $1
		GROUP BY o.customer_id, u.username
		ORDER BY SUM(o.total) DESC
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "TopSpenders", query)
	rows, err := r.pool.Query(ctx, query, domain.OrderStatusCancelled, limit)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("select top spenders: %w", err)
	}
	defer rows.Close()

	spenders := []repository.TopSpender{}
	for rows.Next() {
		var (
			s        repository.TopSpender
			spentStr string
		)
		if err := rows.Scan(&s.CustomerID, &s.CustomerName, &spentStr); err != nil {
			end(err)
			return nil, fmt.Errorf("scan top spender: %w", err)
		}
		s.TotalSpent, err = decimal.NewFromString(spentStr)
		if err != nil {
			end(err)
			return nil, fmt.Errorf("parse spend: %w", err)
		}
		spenders = append(spenders, s)
	}
	err = rows.Err()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("iterate top spenders: %w", err)
	}

	return spenders, nil
}

// SalesByCategory sums sold quantities per product category over orders
// created within [since, until]. Cancelled orders are excluded.
func (r *OrderRepository) SalesByCategory(ctx context.Context, since, until time.Time) ([]repository.CategorySales, error) {
	query := `
		SELECT p.category_id, COALESCE(SUM(oi.quantity), 0)::bigint AS sold
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= $1 AND o.created_at <= $2 AND o.status <> $3
		GROUP BY p.category_id
		ORDER BY p.category_id NULLS LAST`

	ctx, end := database.TraceQuery(ctx, "SalesByCategory", query)
	rows, err := r.pool.Query(ctx, query, since, until, domain.OrderStatusCancelled)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("select sales by category: %w", err)
	}
	defer rows.Close()

	sales := []repository.CategorySales{}
	for rows.Next() {
		var s repository.CategorySales
		if err := rows.Scan(&s.CategoryID, &s.SalesCount); err != nil {
			end(err)
			return nil, fmt.Errorf("scan category sales: %w", err)
		}
		sales = append(sales, s)
	}
	err = rows.Err()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("iterate category sales: %w", err)
	}

	return sales, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *domain.Order) error {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price::text, image_url, size, color, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var (
			item     domain.OrderItem
			priceStr string
		)
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&priceStr,
			&item.ImageURL,
			&item.Size,
			&item.Color,
			&item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.UnitPrice, err = decimal.NewFromString(priceStr)
		if err != nil {
			return fmt.Errorf("parse item price: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}

	o.Items = items
	return nil
}

func scanOrderRow(row rowScanner) (*domain.Order, error) {
	var (
		o           domain.Order
		subtotalStr string
		discountStr string
		totalStr    string
	)
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.Status,
		&subtotalStr,
		&discountStr,
		&totalStr,
		&o.ShippingAddress,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.Subtotal, err = decimal.NewFromString(subtotalStr); err != nil {
		return nil, fmt.Errorf("parse subtotal: %w", err)
	}
	if o.Discount, err = decimal.NewFromString(discountStr); err != nil {
		return nil, fmt.Errorf("parse discount: %w", err)
	}
	if o.Total, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	return &o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	return scanOrderRow(row)
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}
