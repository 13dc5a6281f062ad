package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl"`
	CategoryID    *int64          `json:"categoryId,omitempty"`
	Gender        string          `json:"gender,omitempty"`
	Featured      bool            `json:"featured"`
	StockQuantity int             `json:"stockQuantity"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return p.StockQuantity >= quantity
}
