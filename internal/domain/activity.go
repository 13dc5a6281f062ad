package domain

import (
	"fmt"
	"time"
)

// Activity types recorded in the admin feed.
const (
	ActivityTypeSignup      = "SIGNUP"
	ActivityTypeOrderPlaced = "ORDER_PLACED"
)

// Activity is an entry in the admin activity feed. Unread activities double
// as admin notifications.
type Activity struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CustomerID  *int64    `json:"customerId,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TimeAgo renders the activity age as a coarse human-readable label.
func (a *Activity) TimeAgo(now time.Time) string {
	d := now.Sub(a.CreatedAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
