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

	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/internal/repository"
	"github.com/brewhouse/storefront/order/pkg/request"
	"github.com/brewhouse/storefront/order/pkg/response"
)

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewOrderService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) *OrderService {
	return &OrderService{pool: pool, queries: queries, cache: cache}
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
}

func (svc *OrderService) Checkout(
	c context.Context,
	userId int64,
	param request.Checkout,
) (response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Checkout").
		Int64(log.KeyUserID, userId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := svc.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
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

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Info().Msg("finding active cart")
	cart, err := queries.FindActiveCartByUserId(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrEmptyCart
		} else {
			err = fmt.Errorf("failed finding active cart with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Int64(log.KeyCartID, cart.ID).Logger()
	logger.Info().Msg("found active cart")

	logger = logger.With().Str(log.KeyProcess, "snapshotting cart items").Logger()
	logger.Info().Msg("snapshotting cart items")
	items, err := queries.FindCartItemsWithProduct(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed finding cart items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if len(items) == 0 {
		err = inErrors.ErrEmptyCart
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("snapshotted %d cart items", len(items))

	var shippingAddress, billingAddress []byte
	if len(param.ShippingAddress) > 0 {
		shippingAddress, err = json.Marshal(param.ShippingAddress)
		if err != nil {
			err = fmt.Errorf("failed marshaling shipping address with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	}
	if len(param.BillingAddress) > 0 {
		billingAddress, err = json.Marshal(param.BillingAddress)
		if err != nil {
			err = fmt.Errorf("failed marshaling billing address with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	}
	paymentMethod := pgtype.Text{}
	if param.PaymentMethod != nil && *param.PaymentMethod != "" {
		paymentMethod = pgtype.Text{String: *param.PaymentMethod, Valid: true}
	}
	notes := pgtype.Text{}
	if param.Notes != nil && *param.Notes != "" {
		notes = pgtype.Text{String: *param.Notes, Valid: true}
	}

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	orderNumber := newOrderNumber()
	logger = logger.With().Str(log.KeyOrderNumber, orderNumber).Logger()
	logger.Info().Msg("inserting order")
	order, err := queries.InsertOrder(c, repository.InsertOrderParams{
		OrderNumber:     orderNumber,
		UserID:          pgtype.Int8{Int64: userId, Valid: true},
		SessionID:       pgtype.Text{String: param.SessionID, Valid: param.SessionID != ""},
		TotalAmount:     repository.DecimalToNumeric(param.TotalAmount),
		TaxAmount:       repository.DecimalToNumeric(param.TaxAmount),
		DiscountAmount:  repository.DecimalToNumeric(param.DiscountAmount),
		FinalAmount:     repository.DecimalToNumeric(param.FinalAmount),
		PaymentMethod:   paymentMethod,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		Notes:           notes,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Int64(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	logger.Info().Msg("inserting order items")
	orderItems := make([]repository.InsertOrderItemParams, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, repository.InsertOrderItemParams{
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
			SelectedSize:   item.SelectedSize,
			Customizations: item.Customizations,
		})
	}
	inserted, err := queries.InsertOrderItems(c, orderItems)
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("inserted %d order items", inserted)

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if _, err := queries.DeleteCartItems(c, cart.ID); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if err := queries.UpdateCartTotals(c, cart.ID); err != nil {
		err = fmt.Errorf("failed recomputing cart totals with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("cleared cart")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	logger = logger.With().Str(log.KeyProcess, "invalidating cart cache").Logger()
	logger.Info().Msg("invalidating cart cache")
	if err := svc.cache.Del(c, fmt.Sprintf("cart:%d", cart.ID)).Err(); err != nil {
		err = fmt.Errorf("failed invalidating cart cache with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("invalidated cart cache")
	}

	c = logger.WithContext(c)
	return svc.orderView(c, order)
}

func (svc *OrderService) FindOrderById(c context.Context, id int64) (response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Int64(log.KeyOrderID, id).
		Str(log.KeyProcess, "finding order by id").
		Logger()

	logger.Info().Msg("finding order by id")
	order, err := svc.queries.FindOrderById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("orderId=%d with error=%w", id, inErrors.ErrOrderNotFound)
		} else {
			err = fmt.Errorf("failed finding order by id=%d with error=%w", id, err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order by id")

	c = logger.WithContext(c)
	return svc.orderView(c, order)
}

func (svc *OrderService) FindOrders(
	c context.Context,
	userId *int64,
	limit int32,
) ([]response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyProcess, "finding orders").
		Logger()

	if limit < 1 {
		limit = 50
	}
	filter := pgtype.Int8{}
	if userId != nil {
		filter = pgtype.Int8{Int64: *userId, Valid: true}
		logger = logger.With().Int64(log.KeyUserID, *userId).Logger()
	}

	logger.Info().Msg("finding orders")
	rows, err := svc.queries.FindOrders(c, repository.FindOrdersParams{
		UserID: filter,
		Limit:  limit,
	})
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d orders", len(rows))

	c = logger.WithContext(c)
	orders := make([]response.Order, 0, len(rows))
	for _, row := range rows {
		order, err := svc.orderView(c, row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (svc *OrderService) orderView(
	c context.Context,
	order repository.Order,
) (response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService orderView")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService orderView").
		Int64(log.KeyOrderID, order.ID).
		Str(log.KeyProcess, "finding order items").
		Logger()

	logger.Info().Msg("finding order items")
	rows, err := svc.queries.FindOrderItemsWithProduct(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("found %d order items", len(rows))

	items := make([]response.OrderItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.Response()
		if err != nil {
			err = fmt.Errorf("failed mapping order item with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		items = append(items, item)
	}
	return order.Response(items)
}
