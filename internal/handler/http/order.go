package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/service"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
	"github.com/NSBM-SE-Projects/atelier/pkg/httputil"
	"github.com/NSBM-SE-Projects/atelier/pkg/middleware"
	"github.com/NSBM-SE-Projects/atelier/pkg/pagination"
	"github.com/NSBM-SE-Projects/atelier/pkg/validator"
)

// OrderHandler handles checkout and order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateOrderRequest is the JSON request body for POST /api/orders.
type CreateOrderRequest struct {
	SessionID       string `json:"sessionId" validate:"required"`
	ShippingAddress string `json:"shippingAddress" validate:"required,min=5"`
}

// UpdateStatusRequest is the JSON request body for PUT /api/orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.UserIDFromContext(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CreateFromCart(r.Context(), customerID, service.CreateOrderInput{
		SessionID:       req.SessionID,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, order)
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id, middleware.UserIDFromContext(r.Context()), isAdmin(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// GetByNumber handles GET /api/orders/number/{orderNumber}
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	if orderNumber == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("orderNumber is required"), h.logger)
		return
	}

	order, err := h.service.GetOrderByNumber(r.Context(), orderNumber, middleware.UserIDFromContext(r.Context()), isAdmin(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// ListByCustomer handles GET /api/orders/customer/{customerId}
func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseID(chi.URLParam(r, "customerId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if customerID != middleware.UserIDFromContext(r.Context()) && !isAdmin(r) {
		httputil.WriteError(w, r, apperrors.Forbidden("cannot view another customer's orders"), h.logger)
		return
	}

	orders, err := h.service.ListCustomerOrders(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// List handles GET /api/orders (admin, paginated).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.service.ListOrders(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(orders, total, params))
}

// UpdateStatus handles PUT /api/orders/{id}/status (admin).
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == domain.UserTypeAdmin
}
