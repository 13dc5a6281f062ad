// Package repository defines the persistence interfaces for the storefront.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
)

// CartRepository defines cart persistence keyed by session ID.
type CartRepository interface {
	// Get retrieves a cart by its session ID.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the session.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion persists the cart only if the stored version still matches
	// expectedVersion. Returns false when the cart was modified concurrently.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a cart by session ID.
	Delete(ctx context.Context, sessionID string) error
}

// ProductFilter defines filter criteria for listing products. A zero Limit
// returns all matching rows.
type ProductFilter struct {
	CategoryID *int64
	Gender     *string
	Featured   *bool
	Limit      int
	Offset     int
}

// ProductRepository defines catalog persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error

	// DecrementStock atomically reduces stock for a product. Returns
	// ErrInsufficientStock when the remaining stock cannot cover the quantity.
	DecrementStock(ctx context.Context, id int64, quantity int) error

	Count(ctx context.Context) (int, error)
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create inserts the order and its items atomically and fills in the
	// generated IDs.
	Create(ctx context.Context, order *domain.Order) error

	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	List(ctx context.Context, page, perPage int) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error

	Count(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	DailyStats(ctx context.Context, day time.Time) (orders int, revenue decimal.Decimal, err error)
	TopSpenders(ctx context.Context, limit int) ([]TopSpender, error)

	// SalesByCategory sums sold quantities per product category over orders
	// created within [since, until].
	SalesByCategory(ctx context.Context, since, until time.Time) ([]CategorySales, error)
}

// TopSpender is an aggregate row for the dashboard leaderboard.
type TopSpender struct {
	CustomerID   int64
	CustomerName string
	TotalSpent   decimal.Decimal
}

// CategorySales is an aggregate row of quantities sold per product category.
// CategoryID is nil for sales of uncategorized products.
type CategorySales struct {
	CategoryID *int64
	SalesCount int64
}

// UserRepository defines account persistence operations.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	ListCustomers(ctx context.Context, page, perPage int) ([]domain.User, int, error)
	CountCustomers(ctx context.Context) (int, error)
}

// ActivityRepository defines activity-feed persistence operations.
type ActivityRepository interface {
	Create(ctx context.Context, a *domain.Activity) error
	List(ctx context.Context, limit int) ([]domain.Activity, error)
	ListUnread(ctx context.Context, limit int) ([]domain.Activity, error)
	CountUnread(ctx context.Context) (int, error)
	MarkAllRead(ctx context.Context) error
}

// IdempotencyRepository tracks processed event IDs so that event consumers
// can skip redeliveries.
type IdempotencyRepository interface {
	// MarkProcessed records the event ID. Returns false if it was already recorded.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}
