package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
	"github.com/NSBM-SE-Projects/atelier/pkg/database"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

const productColumns = `id, name, description, price::text, image_url, category_id, gender, featured, stock_quantity, sizes, colors, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product and fills in the generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, image_url, category_id, gender, featured, stock_quantity, sizes, colors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateProduct", query)
	err := r.pool.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.Price.String(),
		p.ImageURL,
		p.CategoryID,
		p.Gender,
		p.Featured,
		p.StockQuantity,
		p.Sizes,
		p.Colors,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return p, nil
}

// List returns products matching the given filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.Gender != nil {
		conditions = append(conditions, fmt.Sprintf("gender = $%d", argIndex))
		args = append(args, *filter.Gender)
		argIndex++
	}
	if filter.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("featured = $%d", argIndex))
		args = append(args, *filter.Featured)
		argIndex++
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	end(err)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Update rewrites all mutable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image_url = $4, category_id = $5,
			gender = $6, featured = $7, stock_quantity = $8, sizes = $9, colors = $10, updated_at = $11
		WHERE id = $12`

	ctx, end := database.TraceQuery(ctx, "UpdateProduct", query)
	tag, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Price.String(),
		p.ImageURL,
		p.CategoryID,
		p.Gender,
		p.Featured,
		p.StockQuantity,
		p.Sizes,
		p.Colors,
		p.UpdatedAt,
		p.ID,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprintf("%d", p.ID))
	}

	return nil
}

// Delete removes a product by ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteProduct", query)
	tag, err := r.pool.Exec(ctx, query, id)
	end(err)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprintf("%d", id))
	}

	return nil
}

// DecrementStock atomically reduces the stock for a product. The WHERE clause
// guards against oversell under concurrent checkouts.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1`

	ctx, end := database.TraceQuery(ctx, "DecrementStock", query)
	tag, err := r.pool.Exec(ctx, query, quantity, id)
	end(err)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.InsufficientStock(fmt.Sprintf("product %d", id))
	}

	return nil
}

// Count returns the total number of products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products`

	ctx, end := database.TraceQuery(ctx, "CountProducts", query)
	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	end(err)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProductRow(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		priceStr string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&priceStr,
		&p.ImageURL,
		&p.CategoryID,
		&p.Gender,
		&p.Featured,
		&p.StockQuantity,
		&p.Sizes,
		&p.Colors,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("parse product price: %w", err)
	}

	return &p, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	return scanProductRow(row)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// isUniqueViolation reports whether the error is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
