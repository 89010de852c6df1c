package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brewhouse/storefront/cart/pkg/request"
	inErrors "github.com/brewhouse/storefront/internal/errors"
)

const (
	seededUserId      = int64(1)
	houseBlendId      = int64(1)
	darkRoastId       = int64(2)
	retiredRoastId    = int64(3)
	testCartSessionId = "session-test"
)

func TestAddToCartAccumulatesQuantityPerLine(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	first, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: houseBlendId,
		Quantity:  1,
		SessionID: testCartSessionId,
	})
	assert.NoError(t, err)
	assert.Len(t, first.Items, 1)
	assert.Equal(t, int32(1), first.TotalItems)

	second, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: houseBlendId,
		Quantity:  2,
		SessionID: testCartSessionId,
	})
	assert.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, int32(3), second.TotalItems)
	assert.Equal(t, "750", second.TotalAmount.String())
	assert.Equal(t, first.CartID, second.CartID)
}

func TestAddToCartDistinctSizeCreatesNewLine(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: houseBlendId,
		Quantity:  1,
		SessionID: testCartSessionId,
	})
	assert.NoError(t, err)

	size := "Large"
	cart, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID:    houseBlendId,
		Quantity:     1,
		SelectedSize: &size,
		SessionID:    testCartSessionId,
	})
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int32(2), cart.TotalItems)
}

func TestAddToCartRejectsInactiveProduct(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: retiredRoastId,
		Quantity:  1,
		SessionID: testCartSessionId,
	})
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestGetCartWithoutCartReturnsEmptyView(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.GetCart(c, seededUserId, testCartSessionId)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, int32(0), cart.TotalItems)
	assert.Equal(t, seededUserId, cart.UserID)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: darkRoastId,
		Quantity:  2,
		SessionID: testCartSessionId,
	})
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	cart, err = cartService.UpdateQuantity(c, seededUserId, cart.Items[0].ID, 0)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0", cart.TotalAmount.String())
}

func TestClearCartEmptiesAllLines(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, cartService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: houseBlendId,
		Quantity:  1,
		SessionID: testCartSessionId,
	})
	assert.NoError(t, err)
	_, err = cartService.AddToCart(c, seededUserId, request.AddCartItem{
		ProductID: darkRoastId,
		Quantity:  1,
		SessionID: testCartSessionId,
	})
	assert.NoError(t, err)

	assert.NoError(t, cartService.ClearCart(c, seededUserId))

	cart, err := cartService.GetCart(c, seededUserId, testCartSessionId)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, int32(0), cart.TotalItems)
}
