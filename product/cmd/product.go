package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewhouse/storefront/internal/repository"
	"github.com/brewhouse/storefront/product/internal/controller"
	"github.com/brewhouse/storefront/product/internal/service"
)

func AttachProduct(router *mux.Router, pool *pgxpool.Pool) {
	svc := service.NewProductService(repository.New(pool))
	controller.AttachProductController(router, svc)
}
