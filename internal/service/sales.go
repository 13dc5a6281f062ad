package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NSBM-SE-Projects/atelier/internal/repository"
)

// Reporting periods accepted by the sales-by-category endpoint.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// CategorySalesEntry is one row of the sales-by-category report.
type CategorySalesEntry struct {
	CategoryID *int64 `json:"categoryId"`
	SalesCount int64  `json:"salesCount"`
}

// SalesService produces admin sales reports.
type SalesService struct {
	orders repository.OrderRepository
}

// NewSalesService creates a new sales report service.
func NewSalesService(orders repository.OrderRepository) *SalesService {
	return &SalesService{orders: orders}
}

// SalesByCategory returns quantities sold per product category over the given
// period. Unknown periods fall back to the current day.
func (s *SalesService) SalesByCategory(ctx context.Context, period string) ([]CategorySalesEntry, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var since time.Time
	switch strings.ToLower(period) {
	case PeriodWeekly:
		since = dayStart.AddDate(0, 0, -7)
	case PeriodMonthly:
		since = dayStart.AddDate(0, -1, 0)
	default:
		since = dayStart
	}

	sales, err := s.orders.SalesByCategory(ctx, since, now)
	if err != nil {
		return nil, fmt.Errorf("sales by category: %w", err)
	}

	entries := make([]CategorySalesEntry, len(sales))
	for i, row := range sales {
		entries[i] = CategorySalesEntry{
			CategoryID: row.CategoryID,
			SalesCount: row.SalesCount,
		}
	}

	return entries, nil
}
