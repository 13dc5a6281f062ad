package postgres

import (
	"context"
	"fmt"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/pkg/database"
)

const activityColumns = `id, type, description, customer_id, is_read, created_at`

// ActivityRepository implements repository.ActivityRepository using PostgreSQL.
type ActivityRepository struct {
	pool database.DBTX
}

// NewActivityRepository creates a new PostgreSQL-backed activity repository.
func NewActivityRepository(pool database.DBTX) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Create inserts a new activity and fills in the generated ID.
func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	query := `
		INSERT INTO activities (type, description, customer_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateActivity", query)
	err := r.pool.QueryRow(ctx, query,
		a.Type,
		a.Description,
		a.CustomerID,
		a.Read,
		a.CreatedAt,
	).Scan(&a.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	return nil
}

// List returns the most recent activities, newest first.
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities ORDER BY created_at DESC LIMIT $1`
	return r.queryActivities(ctx, "ListActivities", query, limit)
}

// ListUnread returns unread activities, newest first.
func (r *ActivityRepository) ListUnread(ctx context.Context, limit int) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE NOT is_read ORDER BY created_at DESC LIMIT $1`
	return r.queryActivities(ctx, "ListUnreadActivities", query, limit)
}

// CountUnread returns the number of unread activities.
func (r *ActivityRepository) CountUnread(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM activities WHERE NOT is_read`

	ctx, end := database.TraceQuery(ctx, "CountUnreadActivities", query)
	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	end(err)
	if err != nil {
		return 0, fmt.Errorf("count unread activities: %w", err)
	}

	return count, nil
}

// MarkAllRead marks every unread activity as read.
func (r *ActivityRepository) MarkAllRead(ctx context.Context) error {
	query := `UPDATE activities SET is_read = TRUE WHERE NOT is_read`

	ctx, end := database.TraceQuery(ctx, "MarkActivitiesRead", query)
	_, err := r.pool.Exec(ctx, query)
	end(err)
	if err != nil {
		return fmt.Errorf("mark activities read: %w", err)
	}

	return nil
}

func (r *ActivityRepository) queryActivities(ctx context.Context, op, query string, args ...any) ([]domain.Activity, error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("select activities: %w", err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &a.CustomerID, &a.Read, &a.CreatedAt); err != nil {
			end(err)
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	err = rows.Err()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}

// IdempotencyRepository tracks processed event IDs in PostgreSQL so consumer
// redeliveries are harmless.
type IdempotencyRepository struct {
	pool database.DBTX
}

// NewIdempotencyRepository creates a new PostgreSQL-backed idempotency store.
func NewIdempotencyRepository(pool database.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// MarkProcessed records the event ID. Returns false if it was seen before.
func (r *IdempotencyRepository) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	query := `INSERT INTO processed_events (event_id) VALUES ($1) ON CONFLICT (event_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, eventID)
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
