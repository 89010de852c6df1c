package cartstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	cartRequest "github.com/brewhouse/storefront/cart/pkg/request"
	cartResponse "github.com/brewhouse/storefront/cart/pkg/response"
	"github.com/brewhouse/storefront/pkg/session"
)

// fakeCartServer is an in-memory stand-in for the cart endpoints, keyed the
// way the server keys them: one line per product, quantities accumulated on
// repeated adds.
type fakeCartServer struct {
	mu       sync.Mutex
	lines         map[int64]*cartResponse.CartItem
	nextLine      int64
	getCount      int
	failGet       bool
	lastSessionId string
}

func newFakeCartServer() *fakeCartServer {
	return &fakeCartServer{lines: map[int64]*cartResponse.CartItem{}}
}

func (f *fakeCartServer) cart() cartResponse.Cart {
	cart := cartResponse.Cart{CartID: 1, UserID: 1, Items: []cartResponse.CartItem{}}
	for _, line := range f.lines {
		cart.Items = append(cart.Items, *line)
		cart.TotalItems += line.Quantity
	}
	return cart
}

func (f *fakeCartServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/session-id/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"session_id": "session-1"})
	})
	mux.HandleFunc("GET /api/v1/cart/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.getCount++
		f.lastSessionId = r.URL.Query().Get("session_id")
		if f.failGet {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": f.cart()})
	})
	mux.HandleFunc("POST /api/v1/cart/", func(w http.ResponseWriter, r *http.Request) {
		param := cartRequest.AddCartItem{}
		if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
			t.Errorf("failed decoding add request with error: %s", err)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, line := range f.lines {
			if line.ProductID == param.ProductID {
				line.Quantity += param.Quantity
				json.NewEncoder(w).Encode(map[string]any{"data": f.cart()})
				return
			}
		}
		f.nextLine++
		f.lines[f.nextLine] = &cartResponse.CartItem{
			ID:        f.nextLine,
			CartID:    1,
			ProductID: param.ProductID,
			Quantity:  param.Quantity,
			UnitPrice: decimal.NewFromInt(100),
			Product:   cartResponse.CartItemProduct{ID: param.ProductID, Name: "House Blend"},
		}
		json.NewEncoder(w).Encode(map[string]any{"data": f.cart()})
	})
	mux.HandleFunc("PUT /api/v1/cart/{cartItemId}", func(w http.ResponseWriter, r *http.Request) {
		lineId, _ := strconv.ParseInt(r.PathValue("cartItemId"), 10, 64)
		param := cartRequest.UpdateCartItem{}
		if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
			t.Errorf("failed decoding update request with error: %s", err)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		line, ok := f.lines[lineId]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		line.Quantity = param.Quantity
		json.NewEncoder(w).Encode(map[string]any{"data": f.cart()})
	})
	mux.HandleFunc("DELETE /api/v1/cart/{cartItemId}", func(w http.ResponseWriter, r *http.Request) {
		lineId, _ := strconv.ParseInt(r.PathValue("cartItemId"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.lines, lineId)
		json.NewEncoder(w).Encode(map[string]any{"data": f.cart()})
	})
	mux.HandleFunc("DELETE /api/v1/cart/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lines = map[int64]*cartResponse.CartItem{}
		json.NewEncoder(w).Encode(map[string]any{"data": f.cart()})
	})
	return mux
}

func newLoggedInStore(t *testing.T, baseURL string) (*Store, *session.Store) {
	t.Helper()
	storage := session.NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	sessionStore, err := session.NewStore(storage, baseURL)
	if err != nil {
		t.Fatalf("failed creating session store with error: %s", err)
	}
	if err := sessionStore.SetUser(1, "Test User", "token"); err != nil {
		t.Fatalf("failed setting user with error: %s", err)
	}
	return NewStore(sessionStore, baseURL), sessionStore
}

func TestAddToCartResyncsWithoutDrift(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, _ := newLoggedInStore(t, srv.URL)

	assert.NoError(t, store.AddToCart(context.Background(), 7))
	assert.NoError(t, store.AddToCart(context.Background(), 7))

	assert.Equal(t, int32(2), store.ProductQuantityInCart(7))
	assert.Len(t, store.Items(), 1)
	var clientTotal int32
	for _, item := range store.Items() {
		clientTotal += item.Quantity
	}
	fake.mu.Lock()
	serverTotal := fake.cart().TotalItems
	fake.mu.Unlock()
	assert.Equal(t, serverTotal, clientTotal)
}

func TestLoadCartSendsSessionId(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, sessionStore := newLoggedInStore(t, srv.URL)

	sessionId, err := sessionStore.EnsureSessionID(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, store.LoadCart(context.Background()))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, sessionId, fake.lastSessionId)
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, _ := newLoggedInStore(t, srv.URL)

	assert.NoError(t, store.AddToCart(context.Background(), 7))
	cartId := store.Items()[0].CartID
	assert.NoError(t, store.UpdateQuantity(context.Background(), cartId, 0))
	assert.Empty(t, store.Items())

	assert.NoError(t, store.AddToCart(context.Background(), 7))
	cartId = store.Items()[0].CartID
	assert.NoError(t, store.RemoveItem(context.Background(), cartId))
	assert.Empty(t, store.Items())
}

func TestUpdateQuantitySetsLineQuantity(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, _ := newLoggedInStore(t, srv.URL)

	assert.NoError(t, store.AddToCart(context.Background(), 7))
	cartId := store.Items()[0].CartID
	assert.NoError(t, store.UpdateQuantity(context.Background(), cartId, 5))

	assert.Equal(t, int32(5), store.ProductQuantityInCart(7))
}

func TestClearCartIsOptimistic(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, _ := newLoggedInStore(t, srv.URL)

	assert.NoError(t, store.AddToCart(context.Background(), 7))
	getsBefore := fake.getCount
	assert.NoError(t, store.ClearCart(context.Background()))

	assert.Equal(t, int32(0), store.ProductQuantityInCart(7))
	assert.Empty(t, store.Items())
	assert.Equal(t, getsBefore, fake.getCount)
}

func TestOperationsRequireLogin(t *testing.T) {
	storage := session.NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	sessionStore, err := session.NewStore(storage, "http://localhost:0")
	if err != nil {
		t.Fatalf("failed creating session store with error: %s", err)
	}
	store := NewStore(sessionStore, "http://localhost:0")

	assert.ErrorIs(t, store.AddToCart(context.Background(), 7), ErrLoginRequired)
	assert.ErrorIs(t, store.UpdateQuantity(context.Background(), "7-1", 2), ErrLoginRequired)
	assert.ErrorIs(t, store.RemoveItem(context.Background(), "7-1"), ErrLoginRequired)
	assert.ErrorIs(t, store.ClearCart(context.Background()), ErrLoginRequired)
	assert.NoError(t, store.LoadCart(context.Background()))
	assert.Empty(t, store.Items())
}

func TestLogoutResetsSnapshot(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, sessionStore := newLoggedInStore(t, srv.URL)

	assert.NoError(t, store.AddToCart(context.Background(), 7))
	assert.Equal(t, int32(1), store.ProductQuantityInCart(7))

	if err := sessionStore.Clear(); err != nil {
		t.Fatalf("failed clearing session with error: %s", err)
	}
	assert.NoError(t, store.LoadCart(context.Background()))
	assert.Empty(t, store.Items())
	assert.Equal(t, int32(0), store.ProductQuantityInCart(7))
}

func TestLoadCartFailureKeepsSnapshot(t *testing.T) {
	fake := newFakeCartServer()
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()
	store, _ := newLoggedInStore(t, srv.URL)

	assert.NoError(t, store.AddToCart(context.Background(), 7))

	fake.mu.Lock()
	fake.failGet = true
	fake.mu.Unlock()
	assert.Error(t, store.LoadCart(context.Background()))
	assert.Equal(t, int32(1), store.ProductQuantityInCart(7))
}
