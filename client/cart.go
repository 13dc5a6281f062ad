package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	apperrors "github.com/NSBM-SE-Projects/atelier/pkg/errors"
)

// discountRate is the storewide discount applied at checkout preview.
var discountRate = decimal.RequireFromString("0.10")

// Line is a cart line with its local selection flag. Selection is purely
// client-side; the server never sees it.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"productName"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Selected  bool            `json:"-"`
}

// cartPayload is the wire shape of every cart endpoint response.
type cartPayload struct {
	Items []Line `json:"items"`
}

type addLineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CartStore is the client-side cart state container. All mutating operations
// call the backend and replace the local lines from the response; a monotonic
// request sequence discards stale responses so the last issued operation wins.
type CartStore struct {
	mu      sync.Mutex
	client  *Client
	storage Storage

	lines   []Line
	loading bool
	err     string
	seq     uint64
}

// NewCartStore creates a cart store bound to the client and its storage.
func NewCartStore(c *Client, storage Storage) *CartStore {
	return &CartStore{
		client:  c,
		storage: storage,
	}
}

// sessionPath returns the cart endpoint prefix for the current session.
func (s *CartStore) sessionPath() (string, error) {
	id, err := GetOrCreateSessionID(s.storage)
	if err != nil {
		return "", err
	}
	return "/cart/" + id, nil
}

// begin marks the store loading and reserves a sequence slot for the call.
func (s *CartStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.loading = true
	return s.seq
}

// finish applies the outcome of a call. Responses from calls that were
// superseded by a later one are discarded entirely.
func (s *CartStore) finish(seq uint64, lines []Line, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		// A newer request was issued while this one was in flight.
		return err
	}
	s.loading = false

	if err != nil {
		// 401 is handled globally by the client; the store error stays as-is.
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			s.err = err.Error()
		}
		return err
	}

	s.err = ""
	if lines == nil {
		lines = []Line{}
	}
	for i := range lines {
		lines[i].Selected = true
	}
	s.lines = lines
	return nil
}

// Fetch loads the cart from the backend, replacing all local lines. Every
// fetched line starts selected.
func (s *CartStore) Fetch(ctx context.Context) error {
	path, err := s.sessionPath()
	if err != nil {
		return err
	}

	seq := s.begin()
	var payload cartPayload
	callErr := s.client.Get(ctx, path, &payload)
	return s.finish(seq, payload.Items, callErr)
}

// AddLine adds a product to the cart. Quantities below 1 are corrected to 1
// before transmission.
func (s *CartStore) AddLine(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	path, err := s.sessionPath()
	if err != nil {
		return err
	}

	seq := s.begin()
	var payload cartPayload
	callErr := s.client.Post(ctx, path+"/add", addLineRequest{ProductID: productID, Quantity: quantity}, &payload)
	return s.finish(seq, payload.Items, callErr)
}

// RemoveLine removes a product's line from the cart.
func (s *CartStore) RemoveLine(ctx context.Context, productID int64) error {
	path, err := s.sessionPath()
	if err != nil {
		return err
	}

	seq := s.begin()
	var payload cartPayload
	callErr := s.client.Delete(ctx, fmt.Sprintf("%s/remove/%d", path, productID), &payload)
	return s.finish(seq, payload.Items, callErr)
}

// UpdateQuantity sets a line's quantity. Quantities below 1 are corrected to 1
// before transmission.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	path, err := s.sessionPath()
	if err != nil {
		return err
	}

	seq := s.begin()
	var payload cartPayload
	callErr := s.client.Put(ctx, fmt.Sprintf("%s/update/%d?quantity=%d", path, productID, quantity), nil, &payload)
	return s.finish(seq, payload.Items, callErr)
}

// ToggleSelected flips a line's selection flag locally. No network call; other
// lines are untouched.
func (s *CartStore) ToggleSelected(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Selected = !s.lines[i].Selected
			return
		}
	}
}

// Clear empties the cart on the backend and locally.
func (s *CartStore) Clear(ctx context.Context) error {
	path, err := s.sessionPath()
	if err != nil {
		return err
	}

	seq := s.begin()
	callErr := s.client.Delete(ctx, path+"/clear", nil)
	return s.finish(seq, []Line{}, callErr)
}

// Lines returns a copy of all cart lines in order.
func (s *CartStore) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// SelectedLines returns the selected lines in cart order.
func (s *CartStore) SelectedLines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if l.Selected {
			out = append(out, l)
		}
	}
	return out
}

// Subtotal is the sum of unitPrice times quantity over the selected lines.
func (s *CartStore) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := decimal.Zero
	for _, l := range s.lines {
		if l.Selected {
			subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return subtotal
}

// Discount is 10% of the subtotal, rounded half-up to cents.
func (s *CartStore) Discount() decimal.Decimal {
	return s.Subtotal().Mul(discountRate).Round(2)
}

// FinalTotal is the subtotal minus the discount, rounded to cents.
func (s *CartStore) FinalTotal() decimal.Decimal {
	subtotal := s.Subtotal()
	return subtotal.Sub(subtotal.Mul(discountRate).Round(2)).Round(2)
}

// SelectedCount is the number of selected lines (not the quantity sum).
func (s *CartStore) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		if l.Selected {
			count++
		}
	}
	return count
}

// Loading reports whether a cart request is in flight.
func (s *CartStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last failure message, empty after a success.
func (s *CartStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
