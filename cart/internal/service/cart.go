package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/brewhouse/storefront/cart/pkg/request"
	"github.com/brewhouse/storefront/cart/pkg/response"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/internal/repository"
)

const cartCacheTTL = time.Hour

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewCartService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) *CartService {
	return &CartService{pool: pool, queries: queries, cache: cache}
}

func cartCacheKey(cartId int64) string {
	return fmt.Sprintf("cart:%d", cartId)
}

func (svc *CartService) getOrCreateActiveCart(
	c context.Context,
	queries *repository.Queries,
	userId int64,
	sessionId string,
) (repository.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService getOrCreateActiveCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService getOrCreateActiveCart").
		Int64(log.KeyUserID, userId).
		Str(log.KeyProcess, "finding active cart").
		Logger()

	logger.Info().Msg("finding active cart")
	session := pgtype.Text{String: sessionId, Valid: sessionId != ""}
	cart, err := queries.FindActiveCartByUserId(c, userId)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding active cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return repository.Cart{}, err
		}

		logger = logger.With().Str(log.KeyProcess, "inserting cart").Logger()
		logger.Info().Msg("inserting cart")
		cart, err = queries.InsertCart(c, repository.InsertCartParams{
			UserID:    userId,
			SessionID: session,
		})
		if err != nil {
			err = fmt.Errorf("failed inserting cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return repository.Cart{}, err
		}
		logger.Info().Int64(log.KeyCartID, cart.ID).Msg("inserted cart")
		return cart, nil
	}
	logger = logger.With().Int64(log.KeyCartID, cart.ID).Logger()
	logger.Info().Msg("found active cart")

	if session.Valid && cart.SessionID.String != sessionId {
		logger = logger.With().Str(log.KeyProcess, "updating cart session id").Logger()
		logger.Info().Msg("updating cart session id")
		if err := queries.UpdateCartSessionId(c, cart.ID, session); err != nil {
			err = fmt.Errorf("failed updating cart session id with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return repository.Cart{}, err
		}
		cart.SessionID = session
		logger.Info().Msg("updated cart session id")
	}
	return cart, nil
}

func (svc *CartService) cartView(c context.Context, userId int64) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService cartView")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService cartView").
		Int64(log.KeyUserID, userId).
		Str(log.KeyProcess, "finding active cart").
		Logger()

	logger.Info().Msg("finding active cart")
	cart, err := svc.queries.FindActiveCartByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Int64(log.KeyCartID, cart.ID).Logger()
	logger.Info().Msg("found active cart")

	logger = logger.With().Str(log.KeyProcess, "finding cart items").Logger()
	logger.Info().Msg("finding cart items")
	rows, err := svc.queries.FindCartItemsWithProduct(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed finding cart items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msgf("found %d cart items", len(rows))

	items := make([]response.CartItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.Response()
		if err != nil {
			err = fmt.Errorf("failed mapping cart item with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		items = append(items, item)
	}
	view := cart.Response(items)

	logger = logger.With().
		Str(log.KeyProcess, "caching cart").
		Str(log.KeyCacheKey, cartCacheKey(cart.ID)).
		Logger()
	logger.Info().Msg("caching cart")
	marshaled, err := json.Marshal(view)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return view, nil
	}
	if err := svc.cache.Set(c, cartCacheKey(cart.ID), marshaled, cartCacheTTL).Err(); err != nil {
		err = fmt.Errorf("failed caching cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return view, nil
	}
	logger.Info().Msg("cached cart")

	return view, nil
}

func (svc *CartService) invalidateCartCache(c context.Context, cartId int64) {
	c, span := inOtel.Tracer.Start(c, "CartService invalidateCartCache")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService invalidateCartCache").
		Str(log.KeyCacheKey, cartCacheKey(cartId)).
		Str(log.KeyProcess, "invalidating cart cache").
		Logger()

	logger.Info().Msg("invalidating cart cache")
	if err := svc.cache.Del(c, cartCacheKey(cartId)).Err(); err != nil {
		err = fmt.Errorf("failed invalidating cart cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("invalidated cart cache")
}

func (svc *CartService) AddToCart(
	c context.Context,
	userId int64,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddToCart").
		Int64(log.KeyUserID, userId).
		Int64(log.KeyProductID, param.ProductID).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := svc.queries.FindProductById(c, param.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("productId=%d with error=%w", param.ProductID, inErrors.ErrProductNotFound)
		} else {
			err = fmt.Errorf("failed finding product with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if !product.IsActive {
		err = fmt.Errorf("productId=%d is inactive with error=%w", param.ProductID, inErrors.ErrProductNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	var customizations []byte
	if len(param.Customizations) > 0 {
		customizations, err = json.Marshal(param.Customizations)
		if err != nil {
			err = fmt.Errorf("failed marshaling customizations with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
	}
	selectedSize := pgtype.Text{}
	if param.SelectedSize != nil && *param.SelectedSize != "" {
		selectedSize = pgtype.Text{String: *param.SelectedSize, Valid: true}
	}

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := svc.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("initialized transaction")
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	queries := svc.queries.WithTx(tx)

	cart, err := svc.getOrCreateActiveCart(c, queries, userId, param.SessionID)
	if err != nil {
		return response.Cart{}, err
	}
	logger = logger.With().Int64(log.KeyCartID, cart.ID).Logger()

	logger = logger.With().Str(log.KeyProcess, "upserting cart item").Logger()
	logger.Info().Msg("finding existing cart item")
	unitPrice := repository.NumericToDecimal(product.RetailPrice)
	existing, err := queries.FindCartItemByKey(c, repository.FindCartItemByKeyParams{
		CartID:         cart.ID,
		ProductID:      param.ProductID,
		SelectedSize:   selectedSize,
		Customizations: customizations,
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding existing cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if err == nil {
		quantity := existing.Quantity + param.Quantity
		totalPrice := unitPrice.Mul(decimal.NewFromInt32(quantity))
		logger.Info().
			Int64(log.KeyCartItemID, existing.ID).
			Int32(log.KeyQuantity, quantity).
			Msg("incrementing existing cart item")
		_, err = queries.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
			ID:         existing.ID,
			Quantity:   quantity,
			TotalPrice: repository.DecimalToNumeric(totalPrice),
		})
		if err != nil {
			err = fmt.Errorf("failed incrementing cart item with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("incremented existing cart item")
	} else {
		totalPrice := unitPrice.Mul(decimal.NewFromInt32(param.Quantity))
		logger.Info().Msg("inserting cart item")
		item, err := queries.InsertCartItem(c, repository.InsertCartItemParams{
			CartID:         cart.ID,
			ProductID:      param.ProductID,
			Quantity:       param.Quantity,
			SelectedSize:   selectedSize,
			Customizations: customizations,
			UnitPrice:      repository.DecimalToNumeric(unitPrice),
			TotalPrice:     repository.DecimalToNumeric(totalPrice),
		})
		if err != nil {
			err = fmt.Errorf("failed inserting cart item with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Int64(log.KeyCartItemID, item.ID).Msg("inserted cart item")
	}

	logger = logger.With().Str(log.KeyProcess, "recomputing cart totals").Logger()
	logger.Info().Msg("recomputing cart totals")
	if err := queries.UpdateCartTotals(c, cart.ID); err != nil {
		err = fmt.Errorf("failed recomputing cart totals with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("recomputed cart totals")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("committed transaction")

	svc.invalidateCartCache(c, cart.ID)
	c = logger.WithContext(c)
	return svc.cartView(c, userId)
}

func (svc *CartService) GetCart(
	c context.Context,
	userId int64,
	sessionId string,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Int64(log.KeyUserID, userId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Info().Msg("finding active cart")
	cart, err := svc.queries.FindActiveCartByUserId(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("no active cart, returning empty cart")
			return response.Cart{UserID: userId, Items: []response.CartItem{}}, nil
		}
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Int64(log.KeyCartID, cart.ID).Logger()
	logger.Info().Msg("found active cart")

	logger = logger.With().
		Str(log.KeyProcess, "getting cart from cache").
		Str(log.KeyCacheKey, cartCacheKey(cart.ID)).
		Logger()
	logger.Info().Msg("getting cart from cache")
	cached, err := svc.cache.Get(c, cartCacheKey(cart.ID)).Result()
	if err == nil {
		view := response.Cart{}
		if err := json.Unmarshal([]byte(cached), &view); err == nil {
			logger.Info().Msg("got cart from cache")
			return view, nil
		}
		logger.Info().Msg("failed unmarshaling cached cart, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("failed getting cart from cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("cart cache miss")
	}

	if sessionId != "" && cart.SessionID.String != sessionId {
		logger = logger.With().Str(log.KeyProcess, "updating cart session id").Logger()
		logger.Info().Msg("updating cart session id")
		session := pgtype.Text{String: sessionId, Valid: true}
		if err := svc.queries.UpdateCartSessionId(c, cart.ID, session); err != nil {
			err = fmt.Errorf("failed updating cart session id with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		} else {
			logger.Info().Msg("updated cart session id")
		}
	}

	c = logger.WithContext(c)
	return svc.cartView(c, userId)
}

func (svc *CartService) UpdateQuantity(
	c context.Context,
	userId int64,
	cartItemId int64,
	quantity int32,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Int64(log.KeyUserID, userId).
		Int64(log.KeyCartItemID, cartItemId).
		Int32(log.KeyQuantity, quantity).
		Logger()

	item, cart, err := svc.findOwnedCartItem(c, userId, cartItemId)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	if quantity == 0 {
		logger = logger.With().Str(log.KeyProcess, "deleting cart item").Logger()
		logger.Info().Msg("quantity is zero, deleting cart item")
		if _, err := svc.queries.DeleteCartItem(c, item.ID); err != nil {
			err = fmt.Errorf("failed deleting cart item with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("deleted cart item")
	} else {
		logger = logger.With().Str(log.KeyProcess, "updating cart item quantity").Logger()
		logger.Info().Msg("updating cart item quantity")
		totalPrice := repository.NumericToDecimal(item.UnitPrice).
			Mul(decimal.NewFromInt32(quantity))
		affected, err := svc.queries.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
			ID:         item.ID,
			Quantity:   quantity,
			TotalPrice: repository.DecimalToNumeric(totalPrice),
		})
		if err != nil {
			err = fmt.Errorf("failed updating cart item quantity with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		if affected == 0 {
			err = fmt.Errorf("cartItemId=%d with error=%w", cartItemId, inErrors.ErrCartItemNotFound)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("updated cart item quantity")
	}

	logger = logger.With().Str(log.KeyProcess, "recomputing cart totals").Logger()
	logger.Info().Msg("recomputing cart totals")
	if err := svc.queries.UpdateCartTotals(c, cart.ID); err != nil {
		err = fmt.Errorf("failed recomputing cart totals with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("recomputed cart totals")

	svc.invalidateCartCache(c, cart.ID)
	c = logger.WithContext(c)
	return svc.cartView(c, userId)
}

func (svc *CartService) RemoveItem(
	c context.Context,
	userId int64,
	cartItemId int64,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Int64(log.KeyUserID, userId).
		Int64(log.KeyCartItemID, cartItemId).
		Logger()

	item, cart, err := svc.findOwnedCartItem(c, userId, cartItemId)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "deleting cart item").Logger()
	logger.Info().Msg("deleting cart item")
	affected, err := svc.queries.DeleteCartItem(c, item.ID)
	if err != nil {
		err = fmt.Errorf("failed deleting cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if affected == 0 {
		err = fmt.Errorf("cartItemId=%d with error=%w", cartItemId, inErrors.ErrCartItemNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("deleted cart item")

	logger = logger.With().Str(log.KeyProcess, "recomputing cart totals").Logger()
	logger.Info().Msg("recomputing cart totals")
	if err := svc.queries.UpdateCartTotals(c, cart.ID); err != nil {
		err = fmt.Errorf("failed recomputing cart totals with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("recomputed cart totals")

	svc.invalidateCartCache(c, cart.ID)
	c = logger.WithContext(c)
	return svc.cartView(c, userId)
}

func (svc *CartService) ClearCart(c context.Context, userId int64) error {
	c, span := inOtel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Int64(log.KeyUserID, userId).
		Str(log.KeyProcess, "finding active cart").
		Logger()

	logger.Info().Msg("finding active cart")
	cart, err := svc.queries.FindActiveCartByUserId(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("no active cart, nothing to clear")
			return nil
		}
		err = fmt.Errorf("failed finding active cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int64(log.KeyCartID, cart.ID).Logger()
	logger.Info().Msg("found active cart")

	logger = logger.With().Str(log.KeyProcess, "deleting cart items").Logger()
	logger.Info().Msg("deleting cart items")
	deleted, err := svc.queries.DeleteCartItems(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed deleting cart items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msgf("deleted %d cart items", deleted)

	logger = logger.With().Str(log.KeyProcess, "recomputing cart totals").Logger()
	logger.Info().Msg("recomputing cart totals")
	if err := svc.queries.UpdateCartTotals(c, cart.ID); err != nil {
		err = fmt.Errorf("failed recomputing cart totals with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("recomputed cart totals")

	svc.invalidateCartCache(c, cart.ID)
	return nil
}

func (svc *CartService) findOwnedCartItem(
	c context.Context,
	userId int64,
	cartItemId int64,
) (repository.CartItem, repository.Cart, error) {
	cart, err := svc.queries.FindActiveCartByUserId(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("cartItemId=%d with error=%w", cartItemId, inErrors.ErrCartItemNotFound)
		} else {
			err = fmt.Errorf("failed finding active cart with error=%w", err)
		}
		return repository.CartItem{}, repository.Cart{}, err
	}
	item, err := svc.queries.FindCartItemById(c, cartItemId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("cartItemId=%d with error=%w", cartItemId, inErrors.ErrCartItemNotFound)
		} else {
			err = fmt.Errorf("failed finding cart item with error=%w", err)
		}
		return repository.CartItem{}, repository.Cart{}, err
	}
	if item.CartID != cart.ID {
		err = fmt.Errorf("cartItemId=%d with error=%w", cartItemId, inErrors.ErrCartItemNotFound)
		return repository.CartItem{}, repository.Cart{}, err
	}
	return item, cart, nil
}
