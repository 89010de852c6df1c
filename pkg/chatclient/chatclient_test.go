package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	cartResponse "github.com/brewhouse/storefront/cart/pkg/response"
	chatResponse "github.com/brewhouse/storefront/chat/pkg/response"
	"github.com/brewhouse/storefront/pkg/cartstore"
	"github.com/brewhouse/storefront/pkg/session"
)

type fakeChatServer struct {
	history       []chatResponse.HistoryMessage
	historyStatus int
	chat          chatResponse.Chat
	chatStatus    int
}

func (f *fakeChatServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/session-id/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"session_id": "session-1"})
	})
	mux.HandleFunc("GET /api/chat/history/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		if f.historyStatus != 0 {
			w.WriteHeader(f.historyStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"session_id":     r.PathValue("sessionId"),
			"messages":       f.history,
			"total_messages": len(f.history),
		})
	})
	mux.HandleFunc("POST /api/chatbot", func(w http.ResponseWriter, r *http.Request) {
		if f.chatStatus != 0 {
			w.WriteHeader(f.chatStatus)
			return
		}
		json.NewEncoder(w).Encode(f.chat)
	})
	mux.HandleFunc("GET /api/v1/cart/", func(w http.ResponseWriter, r *http.Request) {
		cart := cartResponse.Cart{
			CartID: 1,
			UserID: 1,
			Items: []cartResponse.CartItem{
				{
					ID:        10,
					ProductID: 7,
					Quantity:  1,
					UnitPrice: decimal.NewFromInt(100),
					Product:   cartResponse.CartItemProduct{ID: 7, Name: "House Blend"},
				},
			},
		}
		json.NewEncoder(w).Encode(map[string]any{"data": cart})
	})
	return mux
}

func newConversation(t *testing.T, baseURL string, loggedIn bool) (*Conversation, *cartstore.Store) {
	t.Helper()
	storage := session.NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	sessionStore, err := session.NewStore(storage, baseURL)
	if err != nil {
		t.Fatalf("failed creating session store with error: %s", err)
	}
	if loggedIn {
		if err := sessionStore.SetUser(1, "Test User", "token"); err != nil {
			t.Fatalf("failed setting user with error: %s", err)
		}
	}
	carts := cartstore.NewStore(sessionStore, baseURL)
	return NewConversation(sessionStore, carts, baseURL), carts
}

func TestStartSeedsWelcomeOnEmptyHistory(t *testing.T) {
	fake := &fakeChatServer{history: []chatResponse.HistoryMessage{}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	conversation, _ := newConversation(t, srv.URL, false)

	assert.NoError(t, conversation.Start(context.Background()))

	assert.Equal(t, StateReady, conversation.State())
	messages := conversation.Messages()
	assert.Len(t, messages, 1)
	assert.True(t, messages[0].IsBot)
}

func TestStartSeedsIdenticalWelcomeOnHistoryError(t *testing.T) {
	empty := &fakeChatServer{history: []chatResponse.HistoryMessage{}}
	emptySrv := httptest.NewServer(empty.handler())
	defer emptySrv.Close()
	fromEmpty, _ := newConversation(t, emptySrv.URL, false)
	assert.NoError(t, fromEmpty.Start(context.Background()))

	failing := &fakeChatServer{historyStatus: http.StatusNotFound}
	failingSrv := httptest.NewServer(failing.handler())
	defer failingSrv.Close()
	fromError, _ := newConversation(t, failingSrv.URL, false)
	assert.NoError(t, fromError.Start(context.Background()))

	assert.Len(t, fromError.Messages(), 1)
	assert.Equal(t, fromEmpty.Messages()[0].Text, fromError.Messages()[0].Text)
}

func TestStartLoadsPersistedHistory(t *testing.T) {
	fake := &fakeChatServer{history: []chatResponse.HistoryMessage{
		{ID: 1, Text: "hello", IsBot: false, Timestamp: time.Now()},
		{ID: 2, Text: "hi there", IsBot: true, Timestamp: time.Now()},
	}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	conversation, _ := newConversation(t, srv.URL, false)

	assert.NoError(t, conversation.Start(context.Background()))

	messages := conversation.Messages()
	assert.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Text)
	assert.True(t, messages[1].IsBot)
}

func TestSendAppendsReply(t *testing.T) {
	fake := &fakeChatServer{
		history: []chatResponse.HistoryMessage{},
		chat: chatResponse.Chat{
			Reply:     "We have a lovely dark roast.",
			SessionID: "session-1",
			Intent:    "sales",
			Agent:     "Product Specialist",
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	conversation, _ := newConversation(t, srv.URL, false)
	assert.NoError(t, conversation.Start(context.Background()))

	assert.NoError(t, conversation.Send(context.Background(), "what do you have?"))

	messages := conversation.Messages()
	assert.Len(t, messages, 3)
	assert.Equal(t, "what do you have?", messages[1].Text)
	assert.False(t, messages[1].IsBot)
	assert.Equal(t, "We have a lovely dark roast.", messages[2].Text)
	assert.True(t, messages[2].IsBot)
	assert.Equal(t, StateReady, conversation.State())
}

func TestSendAppendsApologyOnFailure(t *testing.T) {
	fake := &fakeChatServer{
		history:    []chatResponse.HistoryMessage{},
		chatStatus: http.StatusInternalServerError,
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	conversation, _ := newConversation(t, srv.URL, false)
	assert.NoError(t, conversation.Start(context.Background()))

	assert.NoError(t, conversation.Send(context.Background(), "hello?"))

	messages := conversation.Messages()
	assert.Len(t, messages, 3)
	assert.Equal(t, "hello?", messages[1].Text)
	assert.True(t, messages[2].IsBot)
	assert.Equal(t, apologyText, messages[2].Text)
	assert.Equal(t, StateReady, conversation.State())
}

func TestSendFiresOrderCompletedAfterCartResync(t *testing.T) {
	fake := &fakeChatServer{
		history: []chatResponse.HistoryMessage{},
		chat: chatResponse.Chat{
			Reply:     "Added to your cart!",
			SessionID: "session-1",
			Intent:    "order_taking",
			Agent:     "Order Taking Specialist",
			OrderProcessing: &chatResponse.OrderProcessing{
				HasOrderAction: true,
				ActionType:     "add_to_cart",
				CartResult: &chatResponse.CartResult{
					Success:     true,
					CartUpdated: true,
				},
			},
		},
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	conversation, carts := newConversation(t, srv.URL, true)
	completed := false
	conversation.OnOrderCompleted = func() { completed = true }
	assert.NoError(t, conversation.Start(context.Background()))

	assert.NoError(t, conversation.Send(context.Background(), "yes add it"))

	assert.True(t, completed)
	assert.Equal(t, int32(1), carts.ProductQuantityInCart(7))
}

func TestSendIgnoresEmptyInput(t *testing.T) {
	fake := &fakeChatServer{history: []chatResponse.HistoryMessage{}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	conversation, _ := newConversation(t, srv.URL, false)
	assert.NoError(t, conversation.Start(context.Background()))

	assert.NoError(t, conversation.Send(context.Background(), "   "))

	assert.Len(t, conversation.Messages(), 1)
}
