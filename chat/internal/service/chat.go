package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	cartRequest "github.com/brewhouse/storefront/cart/pkg/request"
	cartResponse "github.com/brewhouse/storefront/cart/pkg/response"
	"github.com/brewhouse/storefront/chat/internal/assistant"
	"github.com/brewhouse/storefront/chat/pkg/request"
	"github.com/brewhouse/storefront/chat/pkg/response"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/internal/repository"
)

const (
	historyLimit   = 50
	catalogLimit   = 30
	guestEmailFmt  = "guest_%s@temp.com"
	guestPassword  = "guest_password"
	guestFirstName = "Guest"
)

// CartGateway is the slice of the cart service the chatbot needs to
// execute confirmed order actions.
type CartGateway interface {
	AddToCart(
		c context.Context,
		userId int64,
		param cartRequest.AddCartItem,
	) (cartResponse.Cart, error)
}

type ChatService struct {
	queries   *repository.Queries
	assistant assistant.Assistant
	carts     CartGateway
}

func NewChatService(
	queries *repository.Queries,
	assistant assistant.Assistant,
	carts CartGateway,
) *ChatService {
	return &ChatService{queries: queries, assistant: assistant, carts: carts}
}

func (svc *ChatService) NewSession(c context.Context, userId *int64) (string, error) {
	c, span := inOtel.Tracer.Start(c, "ChatService NewSession")
	defer span.End()

	sessionId := uuid.NewString()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatService NewSession").
		Str(log.KeySessionID, sessionId).
		Str(log.KeyProcess, "inserting chat session").
		Logger()

	user := pgtype.Int8{}
	if userId != nil {
		user = pgtype.Int8{Int64: *userId, Valid: true}
	}

	logger.Info().Msg("inserting chat session")
	err := svc.queries.UpsertChatSession(c, repository.UpsertChatSessionParams{
		SessionID: sessionId,
		UserID:    user,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting chat session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("inserted chat session")

	return sessionId, nil
}

func (svc *ChatService) History(
	c context.Context,
	sessionId string,
	limit int32,
) (response.History, error) {
	c, span := inOtel.Tracer.Start(c, "ChatService History")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatService History").
		Str(log.KeySessionID, sessionId).
		Str(log.KeyProcess, "finding chat messages").
		Logger()

	if limit < 1 {
		limit = historyLimit
	}

	logger.Info().Msg("finding chat messages")
	rows, err := svc.queries.FindChatMessages(c, repository.FindChatMessagesParams{
		SessionID: sessionId,
		Limit:     limit,
	})
	if err != nil {
		err = fmt.Errorf("failed finding chat messages with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.History{}, err
	}
	logger.Info().Msgf("found %d chat messages", len(rows))

	messages := make([]response.HistoryMessage, 0, len(rows))
	for _, row := range rows {
		var intent, agent *string
		if row.Intent.Valid {
			value := row.Intent.String
			intent = &value
		}
		if row.Agent.Valid {
			value := row.Agent.String
			agent = &value
		}
		messages = append(messages, response.HistoryMessage{
			ID:        row.ID,
			Text:      row.Content,
			IsBot:     row.Role == "assistant",
			Role:      row.Role,
			Intent:    intent,
			Agent:     agent,
			Timestamp: row.CreatedAt.Time,
		})
	}
	return response.History{
		SessionID:     sessionId,
		Messages:      messages,
		TotalMessages: len(messages),
	}, nil
}

func (svc *ChatService) ProcessMessage(
	c context.Context,
	param request.Chat,
	userId *int64,
) (response.Chat, error) {
	c, span := inOtel.Tracer.Start(c, "ChatService ProcessMessage")
	defer span.End()

	sessionId := param.SessionID
	if sessionId == "" {
		sessionId = uuid.NewString()
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatService ProcessMessage").
		Str(log.KeySessionID, sessionId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "resolving chat user").Logger()
	logger.Info().Msg("resolving chat user")
	chatUserId, err := svc.resolveChatUser(c, sessionId, userId)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Chat{}, err
	}
	logger = logger.With().Int64(log.KeyUserID, chatUserId).Logger()
	logger.Info().Msg("resolved chat user")

	logger = logger.With().Str(log.KeyProcess, "upserting chat session").Logger()
	logger.Info().Msg("upserting chat session")
	err = svc.queries.UpsertChatSession(c, repository.UpsertChatSessionParams{
		SessionID: sessionId,
		UserID:    pgtype.Int8{Int64: chatUserId, Valid: true},
	})
	if err != nil {
		err = fmt.Errorf("failed upserting chat session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Chat{}, err
	}
	logger.Info().Msg("upserted chat session")

	logger = logger.With().Str(log.KeyProcess, "replaying chat history").Logger()
	logger.Info().Msg("replaying chat history")
	rows, err := svc.queries.FindChatMessages(c, repository.FindChatMessagesParams{
		SessionID: sessionId,
		Limit:     historyLimit,
	})
	if err != nil {
		err = fmt.Errorf("failed finding chat messages with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Chat{}, err
	}
	history := make([]assistant.Message, 0, len(rows))
	for _, row := range rows {
		history = append(history, assistant.Message{Role: row.Role, Content: row.Content})
	}
	logger.Info().Msgf("replaying %d chat messages", len(history))

	logger = logger.With().Str(log.KeyProcess, "persisting user message").Logger()
	logger.Info().Msg("persisting user message")
	_, err = svc.queries.InsertChatMessage(c, repository.InsertChatMessageParams{
		SessionID: sessionId,
		Role:      "user",
		Content:   param.Message,
	})
	if err != nil {
		err = fmt.Errorf("failed persisting user message with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Chat{}, err
	}
	logger.Info().Msg("persisted user message")

	logger = logger.With().Str(log.KeyProcess, "generating reply").Logger()
	logger.Info().Msg("generating reply")
	catalog, err := svc.catalogContext(c)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Chat{}, err
	}
	reply, err := svc.assistant.Reply(c, catalog, history, param.Message)
	if err != nil {
		err = fmt.Errorf("failed generating reply with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Chat{}, err
	}
	logger = logger.With().
		Str(log.KeyIntent, reply.Intent).
		Str(log.KeyAgent, reply.Agent).
		Logger()
	logger.Info().Msg("generated reply")

	// reply persistence is best effort, the customer already has the answer
	logger = logger.With().Str(log.KeyProcess, "persisting assistant reply").Logger()
	logger.Info().Msg("persisting assistant reply")
	_, err = svc.queries.InsertChatMessage(c, repository.InsertChatMessageParams{
		SessionID: sessionId,
		Role:      "assistant",
		Content:   reply.Text,
		Intent:    pgtype.Text{String: reply.Intent, Valid: true},
		Agent:     pgtype.Text{String: reply.Agent, Valid: true},
	})
	if err != nil {
		err = fmt.Errorf("failed persisting assistant reply with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("persisted assistant reply")
	}

	if err := svc.queries.TouchChatSession(c, sessionId); err != nil {
		err = fmt.Errorf("failed touching chat session with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}

	result := response.Chat{
		Reply:     reply.Text,
		SessionID: sessionId,
		Intent:    reply.Intent,
		Agent:     reply.Agent,
		Products:  svc.mentionedProducts(c, reply.Text),
	}

	actions := assistant.ExtractOrderActions(reply.Text)
	if actions.HasOrderAction {
		c = logger.WithContext(c)
		result.OrderProcessing = svc.processOrderActions(c, sessionId, chatUserId, actions)
	}
	return result, nil
}

func (svc *ChatService) resolveChatUser(
	c context.Context,
	sessionId string,
	userId *int64,
) (int64, error) {
	c, span := inOtel.Tracer.Start(c, "ChatService resolveChatUser")
	defer span.End()

	if userId != nil {
		return *userId, nil
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatService resolveChatUser").
		Str(log.KeySessionID, sessionId).
		Str(log.KeyProcess, "finding guest user").
		Logger()

	guestEmail := fmt.Sprintf(guestEmailFmt, sessionId)
	logger.Info().Msg("finding guest user")
	user, err := svc.queries.FindUserByEmail(c, guestEmail)
	if err == nil {
		logger.Info().Int64(log.KeyUserID, user.ID).Msg("found guest user")
		return user.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding guest user with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}

	logger = logger.With().Str(log.KeyProcess, "creating guest user").Logger()
	logger.Info().Msg("creating guest user")
	hashed, err := bcrypt.GenerateFromPassword([]byte(guestPassword), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing guest password with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	suffix := sessionId
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	user, err = svc.queries.InsertUser(c, repository.InsertUserParams{
		Email:        guestEmail,
		PasswordHash: string(hashed),
		FirstName:    guestFirstName,
		LastName:     suffix,
	})
	if err != nil {
		err = fmt.Errorf("failed creating guest user with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger.Info().Int64(log.KeyUserID, user.ID).Msg("created guest user")

	return user.ID, nil
}

func (svc *ChatService) catalogContext(c context.Context) (string, error) {
	c, span := inOtel.Tracer.Start(c, "ChatService catalogContext")
	defer span.End()

	active := true
	rows, err := svc.queries.FindProducts(c, repository.FindProductsParams{
		IsActive: &active,
		Limit:    catalogLimit,
	})
	if err != nil {
		return "", fmt.Errorf("failed finding catalog products with error=%w", err)
	}

	var sb strings.Builder
	for _, row := range rows {
		price := repository.NumericToDecimal(row.RetailPrice)
		fmt.Fprintf(&sb, "- **%s** (ID: %d) - %s", row.Name, row.ID, price.StringFixed(2))
		if row.CategoryName != nil {
			fmt.Fprintf(&sb, " [%s]", *row.CategoryName)
		}
		if row.Description.Valid {
			fmt.Fprintf(&sb, ": %s", row.Description.String)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (svc *ChatService) mentionedProducts(c context.Context, reply string) []response.Product {
	c, span := inOtel.Tracer.Start(c, "ChatService mentionedProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatService mentionedProducts").
		Logger()

	products := []response.Product{}
	for _, id := range assistant.MentionedProductIds(reply) {
		row, err := svc.queries.FindProductById(c, id)
		if err != nil {
			logger.Info().Int64(log.KeyProductID, id).Msg("skipping unknown mentioned product")
			continue
		}
		var description, imageUrl, unitOfMeasure *string
		if row.Description.Valid {
			value := row.Description.String
			description = &value
		}
		if row.ImageUrl.Valid {
			value := row.ImageUrl.String
			imageUrl = &value
		}
		if row.UnitOfMeasure.Valid {
			value := row.UnitOfMeasure.String
			unitOfMeasure = &value
		}
		products = append(products, response.Product{
			ID:            row.ID,
			Name:          row.Name,
			Price:         repository.NumericToDecimal(row.RetailPrice),
			BuyLink:       fmt.Sprintf("/product/%d", row.ID),
			ImageUrl:      imageUrl,
			Description:   description,
			UnitOfMeasure: unitOfMeasure,
			Category:      row.CategoryName,
		})
	}
	return products
}

func (svc *ChatService) processOrderActions(
	c context.Context,
	sessionId string,
	userId int64,
	actions assistant.OrderActions,
) *response.OrderProcessing {
	c, span := inOtel.Tracer.Start(c, "ChatService processOrderActions")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ChatService processOrderActions").
		Str(log.KeySessionID, sessionId).
		Int64(log.KeyUserID, userId).
		Str(log.KeyProcess, "processing order actions").
		Logger()

	result := &response.OrderProcessing{
		HasOrderAction: true,
		ActionType:     actions.ActionType,
		Items:          []response.OrderActionItem{},
		CartResult: &response.CartResult{
			ItemsAdded: []string{},
		},
	}

	logger.Info().Msgf("processing %d order actions", len(actions.Items))
	for _, item := range actions.Items {
		result.Items = append(result.Items, response.OrderActionItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Size:      item.Size,
		})

		param := cartRequest.AddCartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			SessionID: sessionId,
		}
		if item.Size != "" {
			size := item.Size
			param.SelectedSize = &size
		}
		cart, err := svc.carts.AddToCart(c, userId, param)
		if err != nil {
			err = fmt.Errorf("failed adding productId=%d to cart with error=%w", item.ProductID, err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			result.CartResult.Message = fmt.Sprintf(
				"Sorry, there was an error adding items to your cart: %s",
				err.Error(),
			)
			continue
		}
		result.CartResult.CartUpdated = true
		result.CartResult.ItemsAdded = append(
			result.CartResult.ItemsAdded,
			fmt.Sprintf("%d", item.ProductID),
		)
		logger.Info().
			Int64(log.KeyProductID, item.ProductID).
			Int64(log.KeyCartID, cart.CartID).
			Msg("added order action item to cart")
	}

	if result.CartResult.CartUpdated {
		result.CartResult.Success = true
		result.CartResult.Message = fmt.Sprintf(
			"Successfully added %d item(s) to your cart!",
			len(result.CartResult.ItemsAdded),
		)
	} else if result.CartResult.Message == "" {
		result.CartResult.Message = "No items were added to the cart."
	}
	logger.Info().Msg("processed order actions")

	return result
}
