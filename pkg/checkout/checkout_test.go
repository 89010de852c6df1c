package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	cartResponse "github.com/brewhouse/storefront/cart/pkg/response"
	orderRequest "github.com/brewhouse/storefront/order/pkg/request"
	"github.com/brewhouse/storefront/pkg/cartstore"
	"github.com/brewhouse/storefront/pkg/session"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		items       []cartstore.Item
		subtotal    string
		tax         string
		deliveryFee string
		total       string
	}{
		{
			name: "given two lines above threshold should waive delivery fee",
			items: []cartstore.Item{
				{ProductID: 1, Price: decimal.NewFromInt(250), Quantity: 2},
				{ProductID: 2, Price: decimal.NewFromInt(150), Quantity: 1},
			},
			subtotal:    "650",
			tax:         "117",
			deliveryFee: "0",
			total:       "767",
		},
		{
			name: "given subtotal below threshold should charge delivery fee",
			items: []cartstore.Item{
				{ProductID: 1, Price: decimal.NewFromInt(100), Quantity: 1},
			},
			subtotal:    "100",
			tax:         "18",
			deliveryFee: "40",
			total:       "158",
		},
		{
			name: "given subtotal exactly at threshold should charge delivery fee",
			items: []cartstore.Item{
				{ProductID: 1, Price: decimal.NewFromInt(500), Quantity: 1},
			},
			subtotal:    "500",
			tax:         "90",
			deliveryFee: "40",
			total:       "630",
		},
		{
			name: "given duplicate product lines should aggregate quantities",
			items: []cartstore.Item{
				{ProductID: 1, Price: decimal.NewFromInt(200), Quantity: 1},
				{ProductID: 1, Price: decimal.NewFromInt(200), Quantity: 2},
			},
			subtotal:    "600",
			tax:         "108",
			deliveryFee: "0",
			total:       "708",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			totals := Compute(test.items)
			assert.Equal(t, test.subtotal, totals.Subtotal.String())
			assert.Equal(t, test.tax, totals.Tax.String())
			assert.Equal(t, test.deliveryFee, totals.DeliveryFee.String())
			assert.Equal(t, test.total, totals.Total.String())
		})
	}
}

func newSessionStore(t *testing.T, baseURL string) *session.Store {
	t.Helper()
	storage := session.NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	store, err := session.NewStore(storage, baseURL)
	if err != nil {
		t.Fatalf("failed creating session store with error: %s", err)
	}
	return store
}

func TestSubmitRequiresLogin(t *testing.T) {
	sessionStore := newSessionStore(t, "http://localhost:0")
	carts := cartstore.NewStore(sessionStore, "http://localhost:0")
	flow := NewFlow(sessionStore, carts, "http://localhost:0")

	_, err := flow.Submit(context.Background(), SubmitParam{})

	assert.ErrorIs(t, err, cartstore.ErrLoginRequired)
}

func TestSubmitRequiresNonEmptyCart(t *testing.T) {
	sessionStore := newSessionStore(t, "http://localhost:0")
	if err := sessionStore.SetUser(1, "Test User", "token"); err != nil {
		t.Fatalf("failed setting user with error: %s", err)
	}
	carts := cartstore.NewStore(sessionStore, "http://localhost:0")
	flow := NewFlow(sessionStore, carts, "http://localhost:0")

	_, err := flow.Submit(context.Background(), SubmitParam{})

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitPostsComputedTotalsAndClearsCart(t *testing.T) {
	var submitted orderRequest.Checkout
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/cart/", func(w http.ResponseWriter, r *http.Request) {
		cart := cartResponse.Cart{
			CartID: 1,
			UserID: 1,
			Items: []cartResponse.CartItem{
				{
					ID:        10,
					ProductID: 1,
					Quantity:  2,
					UnitPrice: decimal.NewFromInt(250),
					Product:   cartResponse.CartItemProduct{ID: 1, Name: "House Blend"},
				},
				{
					ID:        11,
					ProductID: 2,
					Quantity:  1,
					UnitPrice: decimal.NewFromInt(150),
					Product:   cartResponse.CartItemProduct{ID: 2, Name: "Dark Roast"},
				},
			},
		}
		json.NewEncoder(w).Encode(map[string]any{"data": cart})
	})
	mux.HandleFunc("DELETE /api/v1/cart/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": cartResponse.Cart{}})
	})
	mux.HandleFunc("POST /api/v1/orders/", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
			t.Errorf("failed decoding order request with error: %s", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"order": map[string]any{"order_number": "ORD-1"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sessionStore := newSessionStore(t, srv.URL)
	if err := sessionStore.SetUser(1, "Test User", "token"); err != nil {
		t.Fatalf("failed setting user with error: %s", err)
	}
	carts := cartstore.NewStore(sessionStore, srv.URL)
	if err := carts.LoadCart(context.Background()); err != nil {
		t.Fatalf("failed loading cart with error: %s", err)
	}
	flow := NewFlow(sessionStore, carts, srv.URL)

	order, err := flow.Submit(context.Background(), SubmitParam{})

	assert.NoError(t, err)
	assert.Equal(t, "ORD-1", order.OrderNumber)
	assert.Equal(t, "650", submitted.TotalAmount.String())
	assert.Equal(t, "117", submitted.TaxAmount.String())
	assert.Equal(t, "0", submitted.DiscountAmount.String())
	assert.Equal(t, "767", submitted.FinalAmount.String())
	assert.Empty(t, carts.Items())
}
