package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewhouse/storefront/chat/internal/assistant"
	"github.com/brewhouse/storefront/chat/internal/controller"
	"github.com/brewhouse/storefront/chat/internal/service"
	"github.com/brewhouse/storefront/internal/config"
	"github.com/brewhouse/storefront/internal/repository"
)

func AttachChat(
	router *mux.Router,
	pool *pgxpool.Pool,
	config config.Chatbot,
	carts service.CartGateway,
) {
	bot := assistant.NewOpenAIAssistant(config)
	svc := service.NewChatService(repository.New(pool), bot, carts)
	controller.AttachChatController(router, svc)
}
