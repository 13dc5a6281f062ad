package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NSBM-SE-Projects/atelier/internal/service"
	"github.com/NSBM-SE-Projects/atelier/pkg/httputil"
	"github.com/NSBM-SE-Projects/atelier/pkg/pagination"
)

// AdminHandler handles the admin customer list and dashboard endpoints.
type AdminHandler struct {
	users     *service.UserService
	orders    *service.OrderService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(
	users *service.UserService,
	orders *service.OrderService,
	dashboard *service.DashboardService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:     users,
		orders:    orders,
		dashboard: dashboard,
		logger:    logger,
	}
}

// ListCustomers handles GET /api/admin/customers
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	customers, total, err := h.users.ListCustomers(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(customers, total, params))
}

// ListCustomerOrders handles GET /api/admin/customers/{id}/orders
func (h *AdminHandler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	orders, err := h.orders.ListCustomerOrders(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// DashboardStats handles GET /api/admin/dashboard/stats
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// TopSpenders handles GET /api/admin/dashboard/top-spenders
func (h *AdminHandler) TopSpenders(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dashboard.TopSpenders(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
