package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NSBM-SE-Projects/atelier/internal/repository"
)

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalCustomers int             `json:"totalCustomers"`
	TotalOrders    int             `json:"totalOrders"`
	TotalProducts  int             `json:"totalProducts"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	DailySales     decimal.Decimal `json:"dailySales"`
	DailyOrders    int             `json:"dailyOrders"`
}

// TopSpenderEntry is a ranked row in the top-spenders leaderboard.
type TopSpenderEntry struct {
	Rank         int             `json:"rank"`
	CustomerID   int64           `json:"customerId"`
	CustomerName string          `json:"customerName"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
}

// topSpendersLimit is how many customers the leaderboard shows.
const topSpendersLimit = 3

// DashboardService aggregates storefront statistics for the admin dashboard.
type DashboardService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	users repository.UserRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
) *DashboardService {
	return &DashboardService{
		users:    users,
		orders:   orders,
		products: products,
	}
}

// Stats returns the dashboard summary for the current day.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	customers, err := s.users.CountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	orders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	revenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}

	dailyOrders, dailySales, err := s.orders.DailyStats(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}

	return &DashboardStats{
		TotalCustomers: customers,
		TotalOrders:    orders,
		TotalProducts:  products,
		TotalRevenue:   revenue,
		DailySales:     dailySales,
		DailyOrders:    dailyOrders,
	}, nil
}

// TopSpenders returns the ranked top-spending customers.
func (s *DashboardService) TopSpenders(ctx context.Context) ([]TopSpenderEntry, error) {
	spenders, err := s.orders.TopSpenders(ctx, topSpendersLimit)
	if err != nil {
		return nil, fmt.Errorf("top spenders: %w", err)
	}

	entries := make([]TopSpenderEntry, len(spenders))
	for i, spender := range spenders {
		entries[i] = TopSpenderEntry{
			Rank:         i + 1,
			CustomerID:   spender.CustomerID,
			CustomerName: spender.CustomerName,
			TotalSpent:   spender.TotalSpent,
		}
	}

	return entries, nil
}
