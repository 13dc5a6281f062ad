package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/pkg/database"
	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

const userColumns = `id, username, email, password_hash, user_type, created_at, updated_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, user_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	err := r.pool.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.UserType,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&u.ID)
	end(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetUser", query)
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	ctx, end := database.TraceQuery(ctx, "GetUserByEmail", query)
	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", email)
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}

	return u, nil
}

// Update rewrites the mutable profile fields of a user.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, updated_at = $4
		WHERE id = $5`

	ctx, end := database.TraceQuery(ctx, "UpdateUser", query)
	tag, err := r.pool.Exec(ctx, query, u.Username, u.Email, u.PasswordHash, u.UpdatedAt, u.ID)
	end(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user", fmt.Sprintf("%d", u.ID))
	}

	return nil
}

// ListCustomers returns a page of non-admin users with the total count.
func (r *UserRepository) ListCustomers(ctx context.Context, page, perPage int) ([]domain.User, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM users WHERE user_type = $1`
	if err := r.pool.QueryRow(ctx, countQuery, domain.UserTypeCustomer).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE user_type = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListCustomers", query)
	rows, err := r.pool.Query(ctx, query, domain.UserTypeCustomer, perPage, (page-1)*perPage)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		users = append(users, *u)
	}
	err = rows.Err()
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("iterate customers: %w", err)
	}

	return users, total, nil
}

// CountCustomers returns the number of non-admin users.
func (r *UserRepository) CountCustomers(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE user_type = $1`
	if err := r.pool.QueryRow(ctx, query, domain.UserTypeCustomer).Scan(&count); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.UserType,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
