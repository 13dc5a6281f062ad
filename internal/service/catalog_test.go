package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

func newCatalogService(products *mockProductRepository) *CatalogService {
	return NewCatalogService(products, newTestLogger())
}

func TestCatalogService_CreateProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(products)

	products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Linen Shirt" && p.Price.Equal(decimal.RequireFromString("49.90"))
	})).Return(nil)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Linen Shirt",
		Price:         decimal.RequireFromString("49.90"),
		Gender:        "MEN",
		StockQuantity: 25,
		Sizes:         []string{"S", "M", "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", product.Name)
	assert.NotNil(t, product.Colors, "nil slices should be normalized")
	products.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_Invalid(t *testing.T) {
	svc := newCatalogService(new(mockProductRepository))

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Shirt",
		Price: decimal.RequireFromString("-1.00"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCatalogService_UpdateProduct_Partial(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(products)

	existing := &domain.Product{
		ID:            3,
		Name:          "Linen Shirt",
		Price:         decimal.RequireFromString("49.90"),
		StockQuantity: 25,
		Featured:      false,
	}
	products.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)
	products.On("Update", mock.Anything, mock.Anything).Return(nil)

	newPrice := decimal.RequireFromString("39.90")
	featured := true
	updated, err := svc.UpdateProduct(context.Background(), 3, UpdateProductInput{
		Price:    &newPrice,
		Featured: &featured,
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.True(t, updated.Featured)
	assert.Equal(t, "Linen Shirt", updated.Name, "unset fields keep their values")
	assert.Equal(t, 25, updated.StockQuantity)
}

func TestCatalogService_UpdateProduct_NotFound(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(products)

	products.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.NotFound("product", "99"))

	_, err := svc.UpdateProduct(context.Background(), 99, UpdateProductInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogService_ListFeatured(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(products)

	products.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Featured != nil && *f.Featured && f.CategoryID == nil && f.Gender == nil
	})).Return([]domain.Product{{ID: 1, Featured: true}}, nil)

	featured, err := svc.ListFeatured(context.Background())
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.True(t, featured[0].Featured)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(products)

	products.On("Delete", mock.Anything, int64(3)).Return(nil)

	assert.NoError(t, svc.DeleteProduct(context.Background(), 3))
	products.AssertExpectations(t)
}
