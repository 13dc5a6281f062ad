package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NSBM-SE-Projects/atelier/internal/domain"
	"github.com/NSBM-SE-Projects/atelier/internal/repository"
)

// activityFeedLimit caps how many entries the admin feed returns.
const activityFeedLimit = 50

// ActivitySnapshot is a notification-feed view of unread activities.
type ActivitySnapshot struct {
	Notifications []domain.Activity `json:"notifications"`
	UnreadCount   int               `json:"unreadCount"`
}

// ActivityService records and serves the admin activity feed.
type ActivityService struct {
	activities repository.ActivityRepository
	logger     *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(activities repository.ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		activities: activities,
		logger:     logger,
	}
}

// RecordSignup records a new-customer activity.
func (s *ActivityService) RecordSignup(ctx context.Context, userID int64, username string) error {
	a := &domain.Activity{
		Type:        domain.ActivityTypeSignup,
		Description: fmt.Sprintf("%s created an account", username),
		CustomerID:  &userID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.activities.Create(ctx, a); err != nil {
		return fmt.Errorf("record signup activity: %w", err)
	}
	return nil
}

// RecordOrderPlaced records an order-placed activity.
func (s *ActivityService) RecordOrderPlaced(ctx context.Context, customerID int64, orderNumber string) error {
	a := &domain.Activity{
		Type:        domain.ActivityTypeOrderPlaced,
		Description: fmt.Sprintf("Order %s was placed", orderNumber),
		CustomerID:  &customerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.activities.Create(ctx, a); err != nil {
		return fmt.Errorf("record order activity: %w", err)
	}
	return nil
}

// ListActivities returns the most recent activities.
func (s *ActivityService) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	activities, err := s.activities.List(ctx, activityFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Notifications returns the unread activities with their count.
func (s *ActivityService) Notifications(ctx context.Context) (*ActivitySnapshot, error) {
	unread, err := s.activities.ListUnread(ctx, activityFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list unread activities: %w", err)
	}
	count, err := s.activities.CountUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("count unread activities: %w", err)
	}

	return &ActivitySnapshot{Notifications: unread, UnreadCount: count}, nil
}

// UnreadCount returns the number of unread activities.
func (s *ActivityService) UnreadCount(ctx context.Context) (int, error) {
	count, err := s.activities.CountUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("count unread activities: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every unread activity as read.
func (s *ActivityService) MarkAllRead(ctx context.Context) error {
	if err := s.activities.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark activities read: %w", err)
	}

	s.logger.InfoContext(ctx, "all notifications marked read")
	return nil
}
