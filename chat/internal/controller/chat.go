package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/brewhouse/storefront/chat/internal/service"
	"github.com/brewhouse/storefront/chat/pkg/request"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	inHttp "github.com/brewhouse/storefront/internal/http"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
)

type ChatController struct {
	service *service.ChatService
}

func AttachChatController(router *mux.Router, service *service.ChatService) {
	controller := ChatController{service: service}

	router.HandleFunc("/api/chatbot", controller.Chat).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/history/{sessionId}", controller.History).
		Methods(http.MethodGet)
	router.HandleFunc("/api/v1/session-id/", controller.NewSession).Methods(http.MethodGet)
}

func (t ChatController) Chat(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ChatController Chat")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatController Chat").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.Chat{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "processing chat message").Logger()
	logger.Info().Msg("processing chat message")
	c = logger.WithContext(c)
	reply, err := t.service.ProcessMessage(c, reqBody, reqBody.UserID)
	if err != nil {
		err = fmt.Errorf("failed processing chat message with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("processed chat message")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":           "success",
		"statusCode":       http.StatusOK,
		"message":          "successfully processed chat message",
		"reply":            reply.Reply,
		"session_id":       reply.SessionID,
		"intent":           reply.Intent,
		"agent":            reply.Agent,
		"products":         reply.Products,
		"order_processing": reply.OrderProcessing,
	})
}

func (t ChatController) History(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ChatController History")
	defer span.End()

	pathValues := mux.Vars(r)
	sessionId := pathValues["sessionId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatController History").
		Str(log.KeySessionID, sessionId).
		Str(log.KeyProcess, "finding chat history").
		Logger()

	var limit int32
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err == nil {
			limit = int32(parsed)
		}
	}

	logger.Info().Msg("finding chat history")
	c = logger.WithContext(c)
	history, err := t.service.History(c, sessionId, limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			history.SessionID = sessionId
			history.Messages = nil
		} else {
			err = fmt.Errorf("failed finding chat history with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusInternalServerError,
				"message":    err.Error(),
			})
			return
		}
	}
	logger.Info().Msgf("found %d chat messages", history.TotalMessages)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":         "success",
		"statusCode":     http.StatusOK,
		"message":        "successfully found chat history",
		"session_id":     history.SessionID,
		"messages":       history.Messages,
		"total_messages": history.TotalMessages,
	})
}

func (t ChatController) NewSession(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ChatController NewSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatController NewSession").
		Str(log.KeyProcess, "creating session").
		Logger()

	logger.Info().Msg("creating session")
	c = logger.WithContext(c)
	sessionId, err := t.service.NewSession(c, nil)
	if err != nil {
		err = fmt.Errorf("failed creating session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeySessionID, sessionId).Logger()
	logger.Info().Msg("created session")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully created session",
		"session_id": sessionId,
	})
}
