// Package http provides the HTTP handlers and router for the storefront API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/service"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
	"github.com/NSBM-SE-Projects/atelier/pkg/httputil"
	"github.com/NSBM-SE-Projects/atelier/pkg/validator"
)

// CartHandler handles HTTP requests for session-scoped cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// cartResponse is the public cart shape. Item lines carry catalog snapshots;
// totals are derived client-side.
type cartResponse struct {
	Items []domain.CartItem `json:"items"`
}

func newCartResponse(cart *domain.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{Items: items}
}

// GetCart handles GET /api/cart/{sessionId}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("sessionId is required"), h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// AddItem handles POST /api/cart/{sessionId}/add
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("sessionId is required"), h.logger)
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// RemoveItem handles DELETE /api/cart/{sessionId}/remove/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	productID, err := parseID(chi.URLParam(r, "productId"))
	if sessionID == "" || err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("sessionId and productId are required"), h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sessionID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// UpdateQuantity handles PUT /api/cart/{sessionId}/update/{productId}?quantity=N
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	productID, err := parseID(chi.URLParam(r, "productId"))
	if sessionID == "" || err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("sessionId and productId are required"), h.logger)
		return
	}

	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("quantity query parameter is required"), h.logger)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), sessionID, productID, quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, newCartResponse(cart))
}

// ClearCart handles DELETE /api/cart/{sessionId}/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("sessionId is required"), h.logger)
		return
	}

	if err := h.service.ClearCart(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.NoContent(w)
}

// parseID parses a positive int64 path parameter.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid id")
	}
	return id, nil
}
