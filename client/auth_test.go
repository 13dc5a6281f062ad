package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T, handler http.Handler) (*AuthState, *Client, *MemoryStorage) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewMemoryStorage()
	c := New(store, WithBaseURL(srv.URL))
	return NewAuthState(c, store), c, store
}

func authBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(User{
			UserID:   5,
			Username: "jane",
			Email:    req.Email,
			UserType: "CUSTOMER",
			Token:    "issued-token",
		})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(User{
			UserID:   9,
			Username: req.Username,
			Email:    req.Email,
			UserType: "CUSTOMER",
			Token:    "fresh-token",
		})
	})
	return mux
}

func TestAuthState_LoginPersistsSession(t *testing.T) {
	auth, _, store := newTestAuth(t, authBackend(t))

	u, err := auth.Login(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.UserID)
	assert.Equal(t, "issued-token", u.Token)
	assert.True(t, auth.LoggedIn())

	raw, ok := store.Get(UserKey)
	require.True(t, ok)
	var persisted User
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, "issued-token", persisted.Token, "token is persisted with the user")
}

func TestAuthState_SignupPersistsSession(t *testing.T) {
	auth, _, store := newTestAuth(t, authBackend(t))

	u, err := auth.Signup(context.Background(), "jane", "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.UserID)
	assert.Equal(t, "jane", auth.CurrentUser().Username)

	_, ok := store.Get(UserKey)
	assert.True(t, ok)
}

func TestAuthState_BearerTokenAttachedAfterLogin(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.Handle("POST /auth/login", authBackend(t))
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	auth, c, _ := newTestAuth(t, mux)

	_, err := auth.Login(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, c.Get(context.Background(), "/users/me", &out))
	assert.Equal(t, "Bearer issued-token", gotAuth)
}

func TestAuthState_LogoutWipesUserAndCartSession(t *testing.T) {
	auth, _, store := newTestAuth(t, authBackend(t))

	_, err := auth.Login(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)
	_, err = GetOrCreateSessionID(store)
	require.NoError(t, err)

	require.NoError(t, auth.Logout())

	assert.False(t, auth.LoggedIn())
	assert.Nil(t, auth.CurrentUser())
	_, ok := store.Get(UserKey)
	assert.False(t, ok)
	_, ok = store.Get(SessionKey)
	assert.False(t, ok, "anonymous cart session is reset on logout")
}

func TestNewAuthState_BootstrapsFromStorage(t *testing.T) {
	store := NewMemoryStorage()
	raw, err := json.Marshal(User{UserID: 5, Username: "jane", UserType: "ADMIN", Token: "saved"})
	require.NoError(t, err)
	require.NoError(t, store.Set(UserKey, string(raw)))

	auth := NewAuthState(New(store), store)

	require.True(t, auth.LoggedIn())
	assert.Equal(t, "jane", auth.CurrentUser().Username)
	assert.True(t, auth.CurrentUser().IsAdmin())
}

func TestNewAuthState_IgnoresPersistedUserWithoutToken(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.Set(UserKey, `{"userId":5,"username":"jane"}`))

	auth := NewAuthState(New(store), store)
	assert.False(t, auth.LoggedIn())
}
