package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewhouse/storefront/internal/config"
	"github.com/brewhouse/storefront/internal/repository"
	"github.com/brewhouse/storefront/user/internal/controller"
	"github.com/brewhouse/storefront/user/internal/mail"
	"github.com/brewhouse/storefront/user/internal/service"
)

func AttachUser(router *mux.Router, pool *pgxpool.Pool, config config.Config) {
	mailer := mail.NewSmtpMailer(config.Smtp)
	svc := service.NewUserService(repository.New(pool), mailer, config.Application)
	controller.AttachUserController(router, svc)
}
