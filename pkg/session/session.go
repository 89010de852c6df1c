package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	"github.com/brewhouse/storefront/internal/otel"
)

const (
	keyAccessToken = "access_token"
	keyUserID      = "user_id"
	keyUserName    = "user_name"
	keySessionID   = "session_id"
)

// Storage persists the identity values between runs. Read returns an empty
// map when nothing has been stored yet.
type Storage interface {
	Read() (map[string]string, error)
	Write(values map[string]string) error
}

type FileStorage struct {
	path string
}

func NewFileStorage(path string) FileStorage {
	return FileStorage{path: path}
}

func (s FileStorage) Read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed reading session file=%s with error=%w", s.path, err)
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed decoding session file=%s with error=%w", s.path, err)
	}
	return values, nil
}

func (s FileStorage) Write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed creating session dir with error=%w", err)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed encoding session values with error=%w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed writing session file=%s with error=%w", s.path, err)
	}
	return nil
}

// Store holds the resolved identity for one client context. Values are read
// from storage once at construction and written back on every change, so the
// same session id keeps correlating cart and chat activity across runs.
type Store struct {
	mu      sync.Mutex
	storage Storage
	baseURL string
	values  map[string]string
}

func NewStore(storage Storage, baseURL string) (*Store, error) {
	values, err := storage.Read()
	if err != nil {
		return nil, fmt.Errorf("failed loading persisted session with error=%w", err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return &Store{storage: storage, baseURL: baseURL, values: values}, nil
}

// EnsureSessionID returns the persisted session identifier, asking the server
// for a fresh one only when none has ever been stored.
func (s *Store) EnsureSessionID(c context.Context) (string, error) {
	c, span := otel.Tracer.Start(c, "SessionStore EnsureSessionID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionStore EnsureSessionID").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	if id := s.values[keySessionID]; id != "" {
		return id, nil
	}

	logger = logger.With().Str(log.KeyProcess, "requesting session id").Logger()
	logger.Info().Msg("requesting session id")
	req, err := http.NewRequestWithContext(c, http.MethodGet, s.baseURL+"/api/v1/session-id/", nil)
	if err != nil {
		err = fmt.Errorf("failed creating session id request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting session id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed requesting session id with statusCode=%d", resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	body := struct {
		SessionID string `json:"session_id"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		err = fmt.Errorf("failed decoding session id response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Str(log.KeySessionID, body.SessionID).Msg("received session id")

	s.values[keySessionID] = body.SessionID
	if err := s.persistLocked(); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	return body.SessionID, nil
}

// SessionID returns the persisted session id without contacting the server.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[keySessionID]
}

func (s *Store) SetUser(userId int64, name string, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyUserID] = strconv.FormatInt(userId, 10)
	s.values[keyUserName] = name
	s.values[keyAccessToken] = accessToken
	return s.persistLocked()
}

// User returns the authenticated user's id and name. The boolean is false in
// guest state.
func (s *Store) User() (int64, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := s.values[keyUserID]
	if raw == "" || s.values[keyAccessToken] == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, s.values[keyUserName], true
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[keyAccessToken]
}

// Clear wipes every persisted key, including the session id, so the next run
// starts from a clean guest state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	if err := s.storage.Write(s.values); err != nil {
		return fmt.Errorf("failed persisting session values with error=%w", err)
	}
	return nil
}
