package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/brewhouse/storefront/cart/internal/controller"
	"github.com/brewhouse/storefront/cart/internal/service"
	"github.com/brewhouse/storefront/cart/pkg/request"
	"github.com/brewhouse/storefront/cart/pkg/response"
	"github.com/brewhouse/storefront/internal/repository"
)

// Carts exposes the cart operations other domains may call in-process.
type Carts struct {
	service *service.CartService
}

func (t Carts) AddToCart(
	c context.Context,
	userId int64,
	param request.AddCartItem,
) (response.Cart, error) {
	return t.service.AddToCart(c, userId, param)
}

func AttachCart(
	router *mux.Router,
	pool *pgxpool.Pool,
	cache *redis.Client,
	secretKey string,
) Carts {
	svc := service.NewCartService(pool, repository.New(pool), cache)
	controller.AttachCartController(router, svc, secretKey)
	return Carts{service: svc}
}
