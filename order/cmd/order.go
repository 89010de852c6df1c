package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/brewhouse/storefront/internal/repository"
	"github.com/brewhouse/storefront/order/internal/controller"
	"github.com/brewhouse/storefront/order/internal/service"
)

func AttachOrder(
	router *mux.Router,
	pool *pgxpool.Pool,
	cache *redis.Client,
	secretKey string,
) {
	svc := service.NewOrderService(pool, repository.New(pool), cache)
	controller.AttachOrderController(router, svc, secretKey)
}
