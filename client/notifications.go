package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Notification is one unread activity entry from the admin feed.
type Notification struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NotificationsSnapshot is one poll result.
type NotificationsSnapshot struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// NotificationsPoller refetches the unread admin notifications at a fixed
// interval and delivers each snapshot via callback. A circuit breaker stops
// hammering the backend while it is failing; skipped polls are logged and the
// next tick tries again.
type NotificationsPoller struct {
	client   *Client
	interval time.Duration
	logger   *slog.Logger
	breaker  *gobreaker.CircuitBreaker[*NotificationsSnapshot]
	callback func(NotificationsSnapshot)
}

// NewNotificationsPoller creates a poller delivering snapshots to callback.
func NewNotificationsPoller(
	c *Client,
	interval time.Duration,
	logger *slog.Logger,
	callback func(NotificationsSnapshot),
) *NotificationsPoller {
	settings := gobreaker.Settings{
		Name:    "notifications-poller",
		Timeout: 2 * interval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &NotificationsPoller{
		client:   c,
		interval: interval,
		logger:   logger,
		breaker:  gobreaker.NewCircuitBreaker[*NotificationsSnapshot](settings),
		callback: callback,
	}
}

// Run polls until the context is canceled. The first fetch happens
// immediately; failures are logged and retried on the next tick.
func (p *NotificationsPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *NotificationsPoller) poll(ctx context.Context) {
	snapshot, err := p.breaker.Execute(func() (*NotificationsSnapshot, error) {
		var s NotificationsSnapshot
		if err := p.client.Get(ctx, "/admin/activities/notifications", &s); err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		p.logger.DebugContext(ctx, "notifications poll failed",
			slog.String("error", err.Error()),
		)
		return
	}

	p.callback(*snapshot)
}
