package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

// CreateProductInput holds the parameters for creating a catalog product.
type CreateProductInput struct {
	Name          string          `json:"name" validate:"required,min=1,max=500"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	ImageURL      string          `json:"imageUrl"`
	CategoryID    *int64          `json:"categoryId"`
	Gender        string          `json:"gender"`
	Featured      bool            `json:"featured"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	ImageURL      *string          `json:"imageUrl"`
	CategoryID    *int64           `json:"categoryId"`
	Gender        *string          `json:"gender"`
	Featured      *bool            `json:"featured"`
	StockQuantity *int             `json:"stockQuantity"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
}

// CatalogService implements product catalog business logic.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   logger,
	}
}

// GetProduct retrieves a single product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns all products matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CountProducts returns the catalog size.
func (s *CatalogService) CountProducts(ctx context.Context) (int, error) {
	total, err := s.products.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// ListFeatured returns the featured products.
func (s *CatalogService) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	featured := true
	return s.ListProducts(ctx, repository.ProductFilter{Featured: &featured})
}

// ListByCategory returns products within a category.
func (s *CatalogService) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	return s.ListProducts(ctx, repository.ProductFilter{CategoryID: &categoryID})
}

// ListByGender returns products for a gender segment.
func (s *CatalogService) ListByGender(ctx context.Context, gender string) ([]domain.Product, error) {
	return s.ListProducts(ctx, repository.ProductFilter{Gender: &gender})
}

// CreateProduct adds a product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price.IsNegative() {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.InvalidInput("stock quantity must not be negative")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		ImageURL:      input.ImageURL,
		CategoryID:    input.CategoryID,
		Gender:        input.Gender,
		Featured:      input.Featured,
		StockQuantity: input.StockQuantity,
		Sizes:         input.Sizes,
		Colors:        input.Colors,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if product.Sizes == nil {
		product.Sizes = []string{}
	}
	if product.Colors == nil {
		product.Colors = []string{}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// UpdateProduct applies a partial update to a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Gender != nil {
		product.Gender = *input.Gender
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, apperrors.InvalidInput("stock quantity must not be negative")
		}
		product.StockQuantity = *input.StockQuantity
	}
	if input.Sizes != nil {
		product.Sizes = input.Sizes
	}
	if input.Colors != nil {
		product.Colors = input.Colors
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}
