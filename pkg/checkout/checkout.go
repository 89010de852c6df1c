package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	"github.com/brewhouse/storefront/internal/otel"
	orderRequest "github.com/brewhouse/storefront/order/pkg/request"
	orderResponse "github.com/brewhouse/storefront/order/pkg/response"
	"github.com/brewhouse/storefront/pkg/cartstore"
	"github.com/brewhouse/storefront/pkg/session"
)

var ErrEmptyCart = errors.New("cart is empty")

var (
	taxRate               = decimal.NewFromFloat(0.18)
	freeDeliveryThreshold = decimal.NewFromInt(500)
	deliveryFee           = decimal.NewFromInt(40)
)

type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Compute de-duplicates the snapshot by product id, aggregating quantities,
// then derives subtotal, tax and the delivery fee. Delivery is free above the
// threshold subtotal.
func Compute(items []cartstore.Item) Totals {
	seen := map[int64]int{}
	merged := []cartstore.Item{}
	for _, item := range items {
		if at, ok := seen[item.ProductID]; ok {
			merged[at].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(merged)
		merged = append(merged, item)
	}

	subtotal := decimal.Zero
	for _, item := range merged {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	tax := subtotal.Mul(taxRate)
	delivery := deliveryFee
	if subtotal.GreaterThan(freeDeliveryThreshold) {
		delivery = decimal.Zero
	}
	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: delivery,
		Total:       subtotal.Add(tax).Add(delivery),
	}
}

type SubmitParam struct {
	PaymentMethod   *string
	ShippingAddress map[string]any
	BillingAddress  map[string]any
	Notes           *string
}

// Flow submits one order for the cart store's current snapshot.
type Flow struct {
	session *session.Store
	carts   *cartstore.Store
	baseURL string
}

func NewFlow(session *session.Store, carts *cartstore.Store, baseURL string) Flow {
	return Flow{session: session, carts: carts, baseURL: baseURL}
}

// Submit posts the order with computed totals. Without a logged in user or a
// non-empty snapshot it fails before any network call. The cart store is
// cleared only after the server accepts the order.
func (f Flow) Submit(c context.Context, param SubmitParam) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutFlow Submit")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CheckoutFlow Submit").Logger()

	if _, _, ok := f.session.User(); !ok {
		err := cartstore.ErrLoginRequired
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	items := f.carts.Items()
	if len(items) == 0 {
		err := ErrEmptyCart
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	totals := Compute(items)
	logger = logger.With().
		Str(log.KeyProcess, "submitting order").
		Str("subtotal", totals.Subtotal.String()).
		Str("total", totals.Total.String()).
		Logger()
	logger.Info().Msg("submitting order")

	body := orderRequest.Checkout{
		SessionID:       f.session.SessionID(),
		TotalAmount:     totals.Subtotal,
		TaxAmount:       totals.Tax,
		DiscountAmount:  decimal.Zero,
		FinalAmount:     totals.Total,
		PaymentMethod:   param.PaymentMethod,
		ShippingAddress: param.ShippingAddress,
		BillingAddress:  param.BillingAddress,
		Notes:           param.Notes,
	}
	data, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed encoding order request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		f.baseURL+"/api/v1/orders/",
		bytes.NewReader(data),
	)
	if err != nil {
		err = fmt.Errorf("failed creating order request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.session.Token())
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed submitting order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("order rejected with statusCode=%d", resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	envelope := struct {
		Data struct {
			Order orderResponse.Order `json:"order"`
		} `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("failed decoding order response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderNumber, envelope.Data.Order.OrderNumber).Logger()
	logger.Info().Msg("submitted order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := f.carts.ClearCart(c); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		f.carts.Reset()
	}
	logger.Info().Msg("cleared cart")

	return envelope.Data.Order, nil
}
