package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// User is the authenticated account as returned by the auth endpoints. The
// token rides along so the whole object can be persisted under the "user" key.
type User struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	Token    string `json:"token"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.UserType == "ADMIN"
}

// AuthState tracks the current login session. Login and signup persist the
// returned user (token included) so subsequent API calls carry the bearer
// token; logout wipes both the user and the anonymous cart session.
type AuthState struct {
	mu      sync.RWMutex
	client  *Client
	storage Storage
	user    *User
}

// NewAuthState creates auth state bound to the client and its storage, and
// bootstraps the current user from a previously persisted session if present.
func NewAuthState(c *Client, storage Storage) *AuthState {
	a := &AuthState{
		client:  c,
		storage: storage,
	}
	if raw, ok := storage.Get(UserKey); ok && raw != "" {
		var u User
		if json.Unmarshal([]byte(raw), &u) == nil && u.Token != "" {
			a.user = &u
		}
	}
	return a
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password and persists the session.
func (a *AuthState) Login(ctx context.Context, email, password string) (*User, error) {
	var u User
	if err := a.client.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &u); err != nil {
		return nil, err
	}
	if err := a.setAndPersist(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Signup registers a new account and persists the session.
func (a *AuthState) Signup(ctx context.Context, username, email, password string) (*User, error) {
	var u User
	req := signupRequest{Username: username, Email: email, Password: password}
	if err := a.client.Post(ctx, "/auth/register", req, &u); err != nil {
		return nil, err
	}
	if err := a.setAndPersist(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout clears the login session and the anonymous cart session.
func (a *AuthState) Logout() error {
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()

	if err := a.storage.Delete(UserKey); err != nil {
		return fmt.Errorf("clear persisted user: %w", err)
	}
	return ClearSessionID(a.storage)
}

// SetUser replaces the in-memory user without touching storage, for callers
// that bootstrap state themselves.
func (a *AuthState) SetUser(u *User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

// CurrentUser returns the logged-in user, or nil.
func (a *AuthState) CurrentUser() *User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// LoggedIn reports whether a user session is active.
func (a *AuthState) LoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user != nil
}

func (a *AuthState) setAndPersist(u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := a.storage.Set(UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	return nil
}
