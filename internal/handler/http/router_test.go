package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
	"github.com/NSBM-SE-Projects/atelier/internal/service"
	"github.com/NSBM-SE-Projects/atelier/pkg/health"
	"github.com/NSBM-SE-Projects/atelier/pkg/middleware"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, page, perPage int) ([]domain.Order, int, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOrderRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockOrderRepository) DailyStats(ctx context.Context, day time.Time) (int, decimal.Decimal, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *mockOrderRepository) TopSpenders(ctx context.Context, limit int) ([]repository.TopSpender, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TopSpender), args.Error(1)
}

func (m *mockOrderRepository) SalesByCategory(ctx context.Context, since, until time.Time) ([]repository.CategorySales, error) {
	args := m.Called(ctx, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategorySales), args.Error(1)
}

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

// testRouterDeps holds the mocks behind a fully wired router.
type testRouterDeps struct {
	carts      *mockCartRepository
	products   *mockProductRepository
	users      *mockUserRepository
	orders     *mockOrderRepository
	activities *mockActivityRepository
}

func setupRouter(t *testing.T) (http.Handler, *testRouterDeps) {
	t.Helper()
	return setupRouterWithConfig(t, RouterConfig{CORS: middleware.DefaultCORSConfig()})
}

func setupRouterWithConfig(t *testing.T, cfg RouterConfig) (http.Handler, *testRouterDeps) {
	t.Helper()

	deps := &testRouterDeps{
		carts:      new(mockCartRepository),
		products:   new(mockProductRepository),
		users:      new(mockUserRepository),
		orders:     new(mockOrderRepository),
		activities: new(mockActivityRepository),
	}

	logger := testLogger()
	producer := testEventProducer()
	jwtManager := testJWTManager()

	svcs := Services{
		Cart:      service.NewCartService(deps.carts, deps.products, producer, logger, 24*time.Hour),
		Catalog:   service.NewCatalogService(deps.products, logger),
		Users:     service.NewUserService(deps.users, jwtManager, producer, logger),
		Orders:    service.NewOrderService(deps.orders, deps.carts, deps.products, producer, logger),
		Activity:  service.NewActivityService(deps.activities, logger),
		Dashboard: service.NewDashboardService(deps.users, deps.orders, deps.products),
		Sales:     service.NewSalesService(deps.orders),
	}

	router := NewRouter(svcs, jwtManager, health.NewHandler(), logger, cfg)
	return router, deps
}

func bearerToken(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := testJWTManager().Generate(userID, "user@example.com", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_HealthLive(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CartIsPublic(t *testing.T) {
	router, deps := setupRouter(t)
	deps.carts.On("Get", mock.Anything, testSessionID).Return(sampleCart(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart/"+testSessionID, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProductsArePublic(t *testing.T) {
	router, deps := setupRouter(t)
	deps.products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{}, nil)
	deps.products.On("Count", mock.Anything).Return(0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCount":0`)
}

func TestRouter_ProductListIsPaginated(t *testing.T) {
	router, deps := setupRouter(t)
	deps.products.On("List", mock.Anything, repository.ProductFilter{Limit: 2, Offset: 2}).
		Return([]domain.Product{{ID: 7, Name: "Linen Shirt", Price: decimal.RequireFromString("89.00"), StockQuantity: 10}}, nil)
	deps.products.On("Count", mock.Anything).Return(5, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products?page=2&perPage=2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCount":5`)
	assert.Contains(t, rec.Body.String(), `"totalPages":3`)
	assert.Contains(t, rec.Body.String(), `"hasPrev":true`)
	deps.products.AssertExpectations(t)
}

func TestRouter_CatalogCacheControl(t *testing.T) {
	router, deps := setupRouterWithConfig(t, RouterConfig{
		CORS:               middleware.DefaultCORSConfig(),
		CatalogCacheMaxAge: 120,
	})
	deps.products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{}, nil)
	deps.products.On("Count", mock.Anything).Return(0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=120", rec.Header().Get("Cache-Control"))
}

func TestRouter_CatalogCacheDisabledByDefault(t *testing.T) {
	router, deps := setupRouter(t)
	deps.products.On("List", mock.Anything, mock.Anything).Return([]domain.Product{}, nil)
	deps.products.On("Count", mock.Anything).Return(0, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestRouter_PprofDisabledByDefault(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PprofHonorsAllowlist(t *testing.T) {
	router, _ := setupRouterWithConfig(t, RouterConfig{
		CORS:              middleware.DefaultCORSConfig(),
		PprofEnabled:      true,
		PprofAllowedCIDRs: []string{"127.0.0.1/32"},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "10.1.2.3:40000"
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_OrdersRequireAuth(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProfileRequiresAuth(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProfileWithToken(t *testing.T) {
	router, deps := setupRouter(t)
	deps.users.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{
		ID:       5,
		Username: "jane",
		UserType: domain.UserTypeCustomer,
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", bearerToken(t, 5, domain.UserTypeCustomer))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminRejectsCustomerRole(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard/stats", nil)
	req.Header.Set("Authorization", bearerToken(t, 5, domain.UserTypeCustomer))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminDashboardStats(t *testing.T) {
	router, deps := setupRouter(t)
	deps.users.On("CountCustomers", mock.Anything).Return(2, nil)
	deps.orders.On("Count", mock.Anything).Return(4, nil)
	deps.products.On("Count", mock.Anything).Return(6, nil)
	deps.orders.On("TotalRevenue", mock.Anything).Return(decimal.RequireFromString("100.00"), nil)
	deps.orders.On("DailyStats", mock.Anything, mock.Anything).Return(1, decimal.RequireFromString("10.00"), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard/stats", nil)
	req.Header.Set("Authorization", bearerToken(t, 1, domain.UserTypeAdmin))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "totalCustomers")
	assert.Contains(t, rec.Body.String(), "totalRevenue")
}

func TestRouter_AdminSalesByCategory(t *testing.T) {
	router, deps := setupRouter(t)
	shirts := int64(1)
	deps.orders.On("SalesByCategory", mock.Anything, mock.Anything, mock.Anything).
		Return([]repository.CategorySales{{CategoryID: &shirts, SalesCount: 42}}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/sales/by-category?period=weekly", nil)
	req.Header.Set("Authorization", bearerToken(t, 1, domain.UserTypeAdmin))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"categoryId":1`)
	assert.Contains(t, rec.Body.String(), `"salesCount":42`)
}

func TestRouter_AdminProductCreateRequiresAdmin(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Header.Set("Authorization", bearerToken(t, 5, domain.UserTypeCustomer))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminNotifications(t *testing.T) {
	router, deps := setupRouter(t)
	deps.activities.On("ListUnread", mock.Anything, mock.Anything).Return([]domain.Activity{}, nil)
	deps.activities.On("CountUnread", mock.Anything).Return(0, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/activities/notifications", nil)
	req.Header.Set("Authorization", bearerToken(t, 1, domain.UserTypeAdmin))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notifications":[],"unreadCount":0}`, rec.Body.String())
}
