package http

import (
	"log/slog"
	"net/http"

	"github.com/NSBM-SE-Projects/atelier/internal/service"
	"github.com/NSBM-SE-Projects/atelier/pkg/httputil"
)

// SalesHandler handles the admin sales report endpoints.
type SalesHandler struct {
	sales  *service.SalesService
	logger *slog.Logger
}

// NewSalesHandler creates a new sales report HTTP handler.
func NewSalesHandler(sales *service.SalesService, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{sales: sales, logger: logger}
}

// ByCategory handles GET /api/admin/sales/by-category?period=daily|weekly|monthly
func (h *SalesHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = service.PeriodMonthly
	}

	entries, err := h.sales.SalesByCategory(r.Context(), period)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entries)
}
