package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

// fakeCartBackend serves the cart endpoints over an in-memory line slice,
// merging quantities when the same product is added twice, like the real
// service does.
type fakeCartBackend struct {
	mu    sync.Mutex
	lines []Line
}

func newFakeCartBackend() *fakeCartBackend {
	return &fakeCartBackend{}
}

func (b *fakeCartBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cart/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.respond(w)
	})
	mux.HandleFunc("POST /cart/{sessionId}/add", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		var req addLineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for i := range b.lines {
			if b.lines[i].ProductID == req.ProductID {
				b.lines[i].Quantity += req.Quantity
				b.respond(w)
				return
			}
		}
		b.lines = append(b.lines, Line{
			ProductID: req.ProductID,
			Name:      "Linen Shirt",
			UnitPrice: decimal.RequireFromString("10.00"),
			Quantity:  req.Quantity,
		})
		b.respond(w)
	})
	mux.HandleFunc("DELETE /cart/{sessionId}/remove/{productId}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		id, _ := strconv.ParseInt(r.PathValue("productId"), 10, 64)
		kept := b.lines[:0]
		for _, l := range b.lines {
			if l.ProductID != id {
				kept = append(kept, l)
			}
		}
		b.lines = kept
		b.respond(w)
	})
	mux.HandleFunc("PUT /cart/{sessionId}/update/{productId}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		id, _ := strconv.ParseInt(r.PathValue("productId"), 10, 64)
		qty, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
		for i := range b.lines {
			if b.lines[i].ProductID == id {
				b.lines[i].Quantity = qty
			}
		}
		b.respond(w)
	})
	mux.HandleFunc("DELETE /cart/{sessionId}/clear", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.lines = nil
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (b *fakeCartBackend) respond(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	items := b.lines
	if items == nil {
		items = []Line{}
	}
	_ = json.NewEncoder(w).Encode(cartPayload{Items: items})
}

func newTestCartStore(t *testing.T, handler http.Handler) (*CartStore, *MemoryStorage) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := NewMemoryStorage()
	c := New(store, WithBaseURL(srv.URL))
	return NewCartStore(c, store), store
}

func staticCartHandler(t *testing.T, items []Line) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(cartPayload{Items: items}))
	})
}

func TestCartStore_Totals(t *testing.T) {
	cart, _ := newTestCartStore(t, staticCartHandler(t, []Line{
		{ProductID: 1, Name: "Linen Shirt", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: 2, Name: "Wool Scarf", UnitPrice: decimal.RequireFromString("15.00"), Quantity: 1},
	}))

	require.NoError(t, cart.Fetch(context.Background()))

	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("35.00")), "subtotal %s", cart.Subtotal())
	assert.True(t, cart.Discount().Equal(decimal.RequireFromString("3.50")), "discount %s", cart.Discount())
	assert.True(t, cart.FinalTotal().Equal(decimal.RequireFromString("31.50")), "final %s", cart.FinalTotal())
	assert.Equal(t, 2, cart.SelectedCount())
}

func TestCartStore_DiscountRoundsHalfUpToCents(t *testing.T) {
	// 10% of the 33.58 subtotal is 3.358, which rounds up to 3.36.
	cart, _ := newTestCartStore(t, staticCartHandler(t, []Line{
		{ProductID: 1, UnitPrice: decimal.RequireFromString("33.33"), Quantity: 1},
		{ProductID: 2, UnitPrice: decimal.RequireFromString("0.25"), Quantity: 1},
	}))

	require.NoError(t, cart.Fetch(context.Background()))

	assert.True(t, cart.Discount().Equal(decimal.RequireFromString("3.36")), "discount %s", cart.Discount())
	assert.True(t, cart.FinalTotal().Equal(decimal.RequireFromString("30.22")), "final %s", cart.FinalTotal())
}

func TestCartStore_FetchReplacesLinesAllSelected(t *testing.T) {
	cart, _ := newTestCartStore(t, staticCartHandler(t, []Line{
		{ProductID: 1, UnitPrice: decimal.RequireFromString("10.00"), Quantity: 1},
		{ProductID: 2, UnitPrice: decimal.RequireFromString("15.00"), Quantity: 1},
	}))

	require.NoError(t, cart.Fetch(context.Background()))

	lines := cart.Lines()
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.True(t, l.Selected)
	}
	assert.Empty(t, cart.Err())
	assert.False(t, cart.Loading())
}

func TestCartStore_DoubleAddMergesQuantities(t *testing.T) {
	backend := newFakeCartBackend()
	cart, _ := newTestCartStore(t, backend.handler())

	require.NoError(t, cart.AddLine(context.Background(), 1, 1))
	require.NoError(t, cart.AddLine(context.Background(), 1, 1))

	lines := cart.Lines()
	require.Len(t, lines, 1, "same product stays a single line")
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartStore_AddLineClampsQuantityToOne(t *testing.T) {
	var received addLineRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cartPayload{Items: []Line{}})
	})
	cart, _ := newTestCartStore(t, handler)

	require.NoError(t, cart.AddLine(context.Background(), 7, 0))
	assert.Equal(t, 1, received.Quantity)

	require.NoError(t, cart.AddLine(context.Background(), 7, -4))
	assert.Equal(t, 1, received.Quantity)
}

func TestCartStore_UpdateQuantityClampsToOne(t *testing.T) {
	var receivedQty string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedQty = r.URL.Query().Get("quantity")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cartPayload{Items: []Line{}})
	})
	cart, _ := newTestCartStore(t, handler)

	require.NoError(t, cart.UpdateQuantity(context.Background(), 7, -3))
	assert.Equal(t, "1", receivedQty)

	require.NoError(t, cart.UpdateQuantity(context.Background(), 7, 5))
	assert.Equal(t, "5", receivedQty)
}

func TestCartStore_RemoveAndClear(t *testing.T) {
	backend := newFakeCartBackend()
	cart, _ := newTestCartStore(t, backend.handler())

	require.NoError(t, cart.AddLine(context.Background(), 1, 2))
	require.NoError(t, cart.AddLine(context.Background(), 2, 1))
	require.Len(t, cart.Lines(), 2)

	require.NoError(t, cart.RemoveLine(context.Background(), 1))
	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)

	require.NoError(t, cart.Clear(context.Background()))
	assert.Empty(t, cart.Lines())
	assert.Empty(t, cart.Err())
}

func TestCartStore_ToggleSelectedIsolated(t *testing.T) {
	cart, _ := newTestCartStore(t, staticCartHandler(t, []Line{
		{ProductID: 1, UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: 2, UnitPrice: decimal.RequireFromString("15.00"), Quantity: 1},
	}))
	require.NoError(t, cart.Fetch(context.Background()))

	cart.ToggleSelected(1)

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.False(t, lines[0].Selected)
	assert.True(t, lines[1].Selected, "other lines keep their selection")

	// Deselected lines drop out of every derived value.
	assert.True(t, cart.Subtotal().Equal(decimal.RequireFromString("15.00")), "subtotal %s", cart.Subtotal())
	assert.Equal(t, 1, cart.SelectedCount())
	selected := cart.SelectedLines()
	require.Len(t, selected, 1)
	assert.Equal(t, int64(2), selected[0].ProductID)

	cart.ToggleSelected(1)
	assert.Equal(t, 2, cart.SelectedCount())
}

func TestCartStore_ErrorSetOnFailureClearedOnSuccess(t *testing.T) {
	fail := true
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"INTERNAL_ERROR","message":"boom"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cartPayload{Items: []Line{}})
	})
	cart, _ := newTestCartStore(t, handler)

	err := cart.Fetch(context.Background())
	require.Error(t, err)
	assert.NotEmpty(t, cart.Err())
	assert.False(t, cart.Loading())

	fail = false
	require.NoError(t, cart.Fetch(context.Background()))
	assert.Empty(t, cart.Err())
}

func TestCartStore_UnauthorizedLeavesStoreErrorUnset(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	cart, store := newTestCartStore(t, handler)
	require.NoError(t, store.Set(UserKey, `{"token":"stale-token"}`))

	err := cart.Fetch(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	assert.Empty(t, cart.Err(), "401 is global policy, not a cart error")
	_, ok := store.Get(UserKey)
	assert.False(t, ok, "persisted user is wiped")
}

func TestCartStore_StaleResponseDiscarded(t *testing.T) {
	cart, _ := newTestCartStore(t, staticCartHandler(t, nil))

	// Simulate two in-flight requests where the first one finishes last: its
	// outcome must not overwrite the newer request's state.
	first := cart.begin()
	second := cart.begin()

	newer := []Line{{ProductID: 2, UnitPrice: decimal.RequireFromString("15.00"), Quantity: 1}}
	require.NoError(t, cart.finish(second, newer, nil))

	stale := []Line{{ProductID: 1, UnitPrice: decimal.RequireFromString("10.00"), Quantity: 9}}
	require.NoError(t, cart.finish(first, stale, nil))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID, "last issued request wins")
	assert.False(t, cart.Loading())
}

func TestCartStore_StaleFailureDoesNotSetError(t *testing.T) {
	cart, _ := newTestCartStore(t, staticCartHandler(t, nil))

	first := cart.begin()
	second := cart.begin()
	require.NoError(t, cart.finish(second, []Line{}, nil))

	err := cart.finish(first, nil, assert.AnError)
	require.Error(t, err)
	assert.Empty(t, cart.Err(), "superseded failures leave state untouched")
}

func TestCartStore_RequestsUseSessionPath(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cartPayload{Items: []Line{}})
	})
	cart, store := newTestCartStore(t, handler)

	require.NoError(t, cart.Fetch(context.Background()))

	sessionID, ok := store.Get(SessionKey)
	require.True(t, ok, "fetch creates the session on first use")
	assert.Equal(t, "/cart/"+sessionID, gotPath)
}
