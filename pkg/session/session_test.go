package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileStorageRoundTrip(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "nested", "session.json"))

	values, err := storage.Read()
	assert.NoError(t, err)
	assert.Empty(t, values)

	assert.NoError(t, storage.Write(map[string]string{"session_id": "abc"}))
	values, err = storage.Read()
	assert.NoError(t, err)
	assert.Equal(t, "abc", values["session_id"])
}

func TestEnsureSessionIDRequestsOnceAndPersists(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(map[string]any{"session_id": "session-1"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewStore(NewFileStorage(path), srv.URL)
	assert.NoError(t, err)

	first, err := store.EnsureSessionID(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "session-1", first)

	second, err := store.EnsureSessionID(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, requests)

	reloaded, err := NewStore(NewFileStorage(path), srv.URL)
	assert.NoError(t, err)
	assert.Equal(t, "session-1", reloaded.SessionID())
}

func TestUserLifecycle(t *testing.T) {
	store, err := NewStore(NewFileStorage(filepath.Join(t.TempDir(), "session.json")), "http://localhost:0")
	assert.NoError(t, err)

	_, _, ok := store.User()
	assert.False(t, ok)

	assert.NoError(t, store.SetUser(42, "Test User", "token"))
	id, name, ok := store.User()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Test User", name)
	assert.Equal(t, "token", store.Token())

	assert.NoError(t, store.Clear())
	_, _, ok = store.User()
	assert.False(t, ok)
	assert.Empty(t, store.SessionID())
	assert.Empty(t, store.Token())
}
