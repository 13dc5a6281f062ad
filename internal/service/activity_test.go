package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
)

type mockActivityRepository struct {
	mock.Mock
}

func (m *mockActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockActivityRepository) List(ctx context.Context, limit int) ([]domain.Activity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *mockActivityRepository) ListUnread(ctx context.Context, limit int) ([]domain.Activity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *mockActivityRepository) CountUnread(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockActivityRepository) MarkAllRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestActivityService_RecordSignup(t *testing.T) {
	repo := new(mockActivityRepository)
	svc := NewActivityService(repo, newTestLogger())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Activity) bool {
		return a.Type == domain.ActivityTypeSignup && a.Description == "jane created an account" && *a.CustomerID == int64(5)
	})).Return(nil)

	assert.NoError(t, svc.RecordSignup(context.Background(), 5, "jane"))
	repo.AssertExpectations(t)
}

func TestActivityService_RecordOrderPlaced(t *testing.T) {
	repo := new(mockActivityRepository)
	svc := NewActivityService(repo, newTestLogger())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Activity) bool {
		return a.Type == domain.ActivityTypeOrderPlaced && a.Description == "Order ORD-20250601-ABCDEF01 was placed"
	})).Return(nil)

	assert.NoError(t, svc.RecordOrderPlaced(context.Background(), 5, "ORD-20250601-ABCDEF01"))
}

func TestActivityService_Notifications(t *testing.T) {
	repo := new(mockActivityRepository)
	svc := NewActivityService(repo, newTestLogger())

	unread := []domain.Activity{
		{ID: 1, Type: domain.ActivityTypeSignup, CreatedAt: time.Now().UTC()},
	}
	repo.On("ListUnread", mock.Anything, activityFeedLimit).Return(unread, nil)
	repo.On("CountUnread", mock.Anything).Return(1, nil)

	snapshot, err := svc.Notifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.UnreadCount)
	require.Len(t, snapshot.Notifications, 1)
}

func TestActivityService_MarkAllRead(t *testing.T) {
	repo := new(mockActivityRepository)
	svc := NewActivityService(repo, newTestLogger())

	repo.On("MarkAllRead", mock.Anything).Return(nil)

	assert.NoError(t, svc.MarkAllRead(context.Background()))
	repo.AssertExpectations(t)
}

func TestDashboardService_Stats(t *testing.T) {
	users := new(mockUserRepository)
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	svc := NewDashboardService(users, orders, products)

	users.On("CountCustomers", mock.Anything).Return(12, nil)
	orders.On("Count", mock.Anything).Return(30, nil)
	products.On("Count", mock.Anything).Return(8, nil)
	orders.On("TotalRevenue", mock.Anything).Return(decimal.RequireFromString("1234.56"), nil)
	orders.On("DailyStats", mock.Anything, mock.Anything).Return(3, decimal.RequireFromString("99.00"), nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalCustomers)
	assert.Equal(t, 30, stats.TotalOrders)
	assert.Equal(t, 8, stats.TotalProducts)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, 3, stats.DailyOrders)
}

func TestDashboardService_TopSpenders_Ranked(t *testing.T) {
	orders := new(mockOrderRepository)
	svc := NewDashboardService(new(mockUserRepository), orders, new(mockProductRepository))

	orders.On("TopSpenders", mock.Anything, topSpendersLimit).Return([]repository.TopSpender{
		{CustomerID: 5, CustomerName: "jane", TotalSpent: decimal.RequireFromString("500.00")},
		{CustomerID: 7, CustomerName: "amal", TotalSpent: decimal.RequireFromString("250.00")},
	}, nil)

	entries, err := svc.TopSpenders(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "jane", entries[0].CustomerName)
	assert.Equal(t, 2, entries[1].Rank)
}
