package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/event"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	SessionID       string
	ShippingAddress string
}

// OrderService implements checkout and order management. Placing an order
// snapshots the cart lines, applies the storewide discount, decrements stock,
// and clears the cart.
type OrderService struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// CreateFromCart places an order for the customer from their session cart.
func (s *OrderService) CreateFromCart(ctx context.Context, customerID int64, input CreateOrderInput) (*domain.Order, error) {
	if input.SessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.carts.Get(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cannot place an order with an empty cart")
	}

	// Reserve stock before writing the order.
	for _, item := range cart.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("reserve stock for product %d: %w", item.ProductID, err)
		}
	}

	subtotal := cart.Subtotal()
	discount, total := domain.ComputeTotals(subtotal)

	now := time.Now().UTC()
	order := &domain.Order{
		OrderNumber:     newOrderNumber(now),
		CustomerID:      customerID,
		Status:          domain.OrderStatusPending,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           total,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			ImageURL:    item.ImageURL,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The cart is spent once the order exists.
	if err := s.carts.Delete(ctx, input.SessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", input.SessionID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_number", order.OrderNumber),
		slog.Int64("customer_id", customerID),
		slog.String("total", order.Total.String()),
	)

	return order, nil
}

// GetOrder retrieves an order by ID. Customers may only read their own
// orders; admins may read any.
func (s *OrderService) GetOrder(ctx context.Context, id, requesterID int64, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !isAdmin && order.CustomerID != requesterID {
		return nil, apperrors.Forbidden("order belongs to another customer")
	}
	return order, nil
}

// GetOrderByNumber retrieves an order by its public number with the same
// access rule as GetOrder.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string, requesterID int64, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("get order by number: %w", err)
	}
	if !isAdmin && order.CustomerID != requesterID {
		return nil, apperrors.Forbidden("order belongs to another customer")
	}
	return order, nil
}

// ListCustomerOrders returns all orders of a customer, newest first.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return orders, nil
}

// ListOrders returns a page of all orders for the admin view.
func (s *OrderService) ListOrders(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus changes an order's status.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !domain.IsValidOrderStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.Int64("order_id", id),
		slog.String("status", status),
	)

	return nil
}

// newOrderNumber builds a public order number: date plus a short random suffix.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
