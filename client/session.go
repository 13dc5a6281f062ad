package client

import (
	"fmt"

	"github.com/google/uuid"
)

// Storage keys shared with the browser storefront.
const (
	// SessionKey holds the anonymous cart session identifier.
	SessionKey = "cart_session_id"

	// UserKey holds the persisted user object (including the bearer token).
	UserKey = "user"
)

// GetOrCreateSessionID returns the persisted cart session ID, generating and
// persisting a new UUID v4 when none exists. Repeated calls against the same
// storage return the same ID.
func GetOrCreateSessionID(store Storage) (string, error) {
	if id, ok := store.Get(SessionKey); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	if err := store.Set(SessionKey, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	return id, nil
}

// ClearSessionID removes the persisted cart session ID. The next
// GetOrCreateSessionID call starts a fresh anonymous session.
func ClearSessionID(store Storage) error {
	return store.Delete(SessionKey)
}
