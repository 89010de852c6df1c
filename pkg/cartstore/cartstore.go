package cartstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	cartRequest "github.com/brewhouse/storefront/cart/pkg/request"
	cartResponse "github.com/brewhouse/storefront/cart/pkg/response"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	"github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/pkg/session"
)

var ErrLoginRequired = errors.New("login required")

// Item is the client view of one cart line. CartID is a composite
// "{productId}-{cartItemId}" key kept stable for rendering; the trailing part
// is the backend line id used for update and remove calls.
type Item struct {
	ProductID    int64
	CartID       string
	Name         string
	Price        decimal.Decimal
	Image        *string
	Category     *string
	Quantity     int32
	SelectedSize *string
}

// Store mirrors the server cart. The server stays the source of truth: every
// mutation is followed by a full reload, and a failed reload keeps the
// previous snapshot instead of clearing it. Mutations are serialized by the
// store's own mutex.
type Store struct {
	mu       sync.Mutex
	session  *session.Store
	baseURL  string
	items    []Item
	loading  bool
	identity string
}

func NewStore(session *session.Store, baseURL string) *Store {
	return &Store{session: session, baseURL: baseURL}
}

// Items returns a copy of the current snapshot.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ProductQuantityInCart is a pure lookup over the current snapshot, 0 when
// the product has no line in the cart.
func (s *Store) ProductQuantityInCart(productId int64) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var quantity int32
	for _, item := range s.items {
		if item.ProductID == productId {
			quantity += item.Quantity
		}
	}
	return quantity
}

// Reset drops the local snapshot without a server call. Used at the
// login/logout boundary so a previous user's items never leak into the view.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.identity = s.currentIdentity()
}

// LoadCart replaces the snapshot with the server cart. Logged out it resets
// to empty without a network call.
func (s *Store) LoadCart(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartStore LoadCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartStore LoadCart").Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncIdentityLocked()
	if _, _, ok := s.session.User(); !ok {
		s.items = nil
		return nil
	}
	return s.loadLocked(c, span, logger)
}

// AddToCart adds one unit of the product then resyncs. Quantity accumulation
// for an existing line is the server's job.
func (s *Store) AddToCart(c context.Context, productId int64) error {
	c, span := otel.Tracer.Start(c, "CartStore AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore AddToCart").
		Int64(log.KeyProductID, productId).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncIdentityLocked()
	if _, _, ok := s.session.User(); !ok {
		return ErrLoginRequired
	}

	logger = logger.With().Str(log.KeyProcess, "adding product to cart").Logger()
	logger.Info().Msg("adding product to cart")
	body := cartRequest.AddCartItem{
		ProductID: productId,
		Quantity:  1,
		SessionID: s.session.SessionID(),
	}
	if err := s.call(c, http.MethodPost, "/api/v1/cart/", body); err != nil {
		err = fmt.Errorf("failed adding productId=%d to cart with error=%w", productId, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("added product to cart")

	return s.loadLocked(c, span, logger)
}

// UpdateQuantity sets the line quantity, removing the line when the new
// quantity is zero or less, then resyncs.
func (s *Store) UpdateQuantity(c context.Context, cartId string, quantity int32) error {
	c, span := otel.Tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore UpdateQuantity").
		Str(log.KeyCartItemID, cartId).
		Int32(log.KeyQuantity, quantity).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncIdentityLocked()
	if _, _, ok := s.session.User(); !ok {
		return ErrLoginRequired
	}

	lineId, err := lineIdFromCartId(cartId)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if quantity <= 0 {
		logger = logger.With().Str(log.KeyProcess, "removing cart line").Logger()
		logger.Info().Msg("removing cart line")
		err = s.call(c, http.MethodDelete, fmt.Sprintf("/api/v1/cart/%d", lineId), nil)
	} else {
		logger = logger.With().Str(log.KeyProcess, "updating cart line quantity").Logger()
		logger.Info().Msg("updating cart line quantity")
		err = s.call(c, http.MethodPut, fmt.Sprintf("/api/v1/cart/%d", lineId), cartRequest.UpdateCartItem{Quantity: quantity})
	}
	if err != nil {
		err = fmt.Errorf("failed updating cartItemId=%d with error=%w", lineId, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated cart line")

	return s.loadLocked(c, span, logger)
}

// RemoveItem removes the line then resyncs.
func (s *Store) RemoveItem(c context.Context, cartId string) error {
	c, span := otel.Tracer.Start(c, "CartStore RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore RemoveItem").
		Str(log.KeyCartItemID, cartId).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncIdentityLocked()
	if _, _, ok := s.session.User(); !ok {
		return ErrLoginRequired
	}

	lineId, err := lineIdFromCartId(cartId)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "removing cart line").Logger()
	logger.Info().Msg("removing cart line")
	if err := s.call(c, http.MethodDelete, fmt.Sprintf("/api/v1/cart/%d", lineId), nil); err != nil {
		err = fmt.Errorf("failed removing cartItemId=%d with error=%w", lineId, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("removed cart line")

	return s.loadLocked(c, span, logger)
}

// ClearCart empties the server cart and, once the server has accepted the
// clear, empties the snapshot immediately without a resync round-trip.
func (s *Store) ClearCart(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartStore ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartStore ClearCart").Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncIdentityLocked()
	if _, _, ok := s.session.User(); !ok {
		return ErrLoginRequired
	}

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := s.call(c, http.MethodDelete, "/api/v1/cart/", nil); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.items = []Item{}
	logger.Info().Msg("cleared cart")
	return nil
}

func (s *Store) loadLocked(c context.Context, span trace.Span, logger zerolog.Logger) error {
	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	s.loading = true
	defer func() { s.loading = false }()

	loadURL := s.baseURL + "/api/v1/cart/"
	if sessionId := s.session.SessionID(); sessionId != "" {
		loadURL += "?session_id=" + url.QueryEscape(sessionId)
	}
	req, err := http.NewRequestWithContext(c, http.MethodGet, loadURL, nil)
	if err != nil {
		err = fmt.Errorf("failed creating cart request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.session.Token())
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("failed loading cart with statusCode=%d", resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	body := struct {
		Data cartResponse.Cart `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		err = fmt.Errorf("failed decoding cart response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	items := make([]Item, 0, len(body.Data.Items))
	for _, line := range body.Data.Items {
		items = append(items, Item{
			ProductID:    line.ProductID,
			CartID:       fmt.Sprintf("%d-%d", line.ProductID, line.ID),
			Name:         line.Product.Name,
			Price:        line.UnitPrice,
			Image:        line.Product.ImageUrl,
			Category:     line.Product.Category.Name,
			Quantity:     line.Quantity,
			SelectedSize: line.SelectedSize,
		})
	}
	s.items = items
	logger.Info().Int(log.KeyCartItems, len(items)).Msg("loaded cart")
	return nil
}

func (s *Store) call(c context.Context, method string, path string, body any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed encoding request body with error=%w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(c, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.session.Token())
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("request rejected with statusCode=%d", resp.StatusCode)
	}
	return nil
}

func (s *Store) currentIdentity() string {
	userId, _, ok := s.session.User()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d|%s", userId, s.session.Token())
}

// syncIdentityLocked drops the snapshot when the authenticated identity has
// changed since the last operation.
func (s *Store) syncIdentityLocked() {
	identity := s.currentIdentity()
	if identity != s.identity {
		s.items = nil
		s.identity = identity
	}
}

func lineIdFromCartId(cartId string) (int64, error) {
	_, raw, found := strings.Cut(cartId, "-")
	if !found {
		return 0, fmt.Errorf("malformed cartId=%s", cartId)
	}
	lineId, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cartId=%s with error=%w", cartId, err)
	}
	return lineId, nil
}
