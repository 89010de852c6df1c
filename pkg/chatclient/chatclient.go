package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	chatRequest "github.com/brewhouse/storefront/chat/pkg/request"
	chatResponse "github.com/brewhouse/storefront/chat/pkg/response"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	"github.com/brewhouse/storefront/internal/otel"
	"github.com/brewhouse/storefront/pkg/cartstore"
	"github.com/brewhouse/storefront/pkg/session"
)

type State int

const (
	StateUninitialized State = iota
	StateLoadingHistory
	StateReady
	StateAwaitingReply
)

const (
	welcomeText = "Hi! I'm the BrewMaster Assistant. Ask me about our coffees or tell me what you'd like to order."
	apologyText = "Sorry, I'm having trouble responding right now. Please try again in a moment."
)

type Message struct {
	ID        int64
	Text      string
	IsBot     bool
	Timestamp time.Time
	Products  []chatResponse.Product
}

// Conversation holds one chat session's message buffer. Messages only ever
// append; the buffer is seeded with a welcome message when the session has no
// usable history, so the conversation is never empty at rest.
type Conversation struct {
	mu       sync.Mutex
	state    State
	messages []Message
	session  *session.Store
	carts    *cartstore.Store
	baseURL  string
	localId  int64

	// OnOrderCompleted fires after a chat reply carried a successful cart
	// mutation and the cart store has been resynced.
	OnOrderCompleted func()
}

func NewConversation(session *session.Store, carts *cartstore.Store, baseURL string) *Conversation {
	return &Conversation{
		state:   StateUninitialized,
		session: session,
		carts:   carts,
		baseURL: baseURL,
	}
}

func (cv *Conversation) State() State {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.state
}

func (cv *Conversation) Messages() []Message {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	messages := make([]Message, len(cv.messages))
	copy(messages, cv.messages)
	return messages
}

// Start resolves the session id and loads persisted history. Zero messages, a
// not-found response, and any other failure all seed the same single welcome
// message.
func (cv *Conversation) Start(c context.Context) error {
	c, span := otel.Tracer.Start(c, "Conversation Start")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Conversation Start").Logger()

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if cv.state != StateUninitialized {
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "resolving session id").Logger()
	logger.Info().Msg("resolving session id")
	sessionId, err := cv.session.EnsureSessionID(c)
	if err != nil {
		err = fmt.Errorf("failed resolving session id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Str(log.KeySessionID, sessionId).Logger()
	logger.Info().Msg("resolved session id")

	cv.state = StateLoadingHistory
	logger = logger.With().Str(log.KeyProcess, "loading chat history").Logger()
	logger.Info().Msg("loading chat history")
	history, err := cv.fetchHistory(c, sessionId)
	if err != nil || len(history) == 0 {
		if err != nil {
			logger.Info().Err(err).Msg("history unavailable, seeding welcome message")
		} else {
			logger.Info().Msg("history empty, seeding welcome message")
		}
		cv.messages = []Message{cv.newLocalMessage(welcomeText, true, nil)}
		cv.state = StateReady
		return nil
	}
	cv.messages = history
	cv.state = StateReady
	logger.Info().Int("messages", len(history)).Msg("loaded chat history")
	return nil
}

// Send appends the user's message immediately, then asks the backend for a
// reply. A failed send appends a fixed apology instead of dropping the
// outgoing message.
func (cv *Conversation) Send(c context.Context, text string) error {
	c, span := otel.Tracer.Start(c, "Conversation Send")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Conversation Send").Logger()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if cv.state != StateReady {
		return fmt.Errorf("conversation is not ready, state=%d", cv.state)
	}
	sessionId := cv.session.SessionID()
	if sessionId == "" {
		return fmt.Errorf("session id is not resolved")
	}

	cv.messages = append(cv.messages, cv.newLocalMessage(text, false, nil))
	cv.state = StateAwaitingReply
	defer func() { cv.state = StateReady }()

	logger = logger.With().
		Str(log.KeyProcess, "sending chat message").
		Str(log.KeySessionID, sessionId).
		Logger()
	logger.Info().Msg("sending chat message")
	reply, err := cv.sendMessage(c, sessionId, text)
	if err != nil {
		err = fmt.Errorf("failed sending chat message with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		cv.messages = append(cv.messages, cv.newLocalMessage(apologyText, true, nil))
		return nil
	}
	logger = logger.With().Str(log.KeyIntent, reply.Intent).Str(log.KeyAgent, reply.Agent).Logger()
	logger.Info().Msg("received chat reply")

	cv.messages = append(cv.messages, cv.newLocalMessage(reply.Reply, true, reply.Products))

	op := reply.OrderProcessing
	if op != nil && op.HasOrderAction && op.CartResult != nil && op.CartResult.Success && op.CartResult.CartUpdated {
		logger = logger.With().Str(log.KeyProcess, "resyncing cart after order action").Logger()
		logger.Info().Msg("resyncing cart after order action")
		if err := cv.carts.LoadCart(c); err != nil {
			logger.Error().Err(err).Msg(err.Error())
		}
		if cv.OnOrderCompleted != nil {
			cv.OnOrderCompleted()
		}
	}
	return nil
}

func (cv *Conversation) fetchHistory(c context.Context, sessionId string) ([]Message, error) {
	req, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		cv.baseURL+"/api/chat/history/"+sessionId,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating history request with error=%w", err)
	}
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed loading chat history with error=%w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed loading chat history with statusCode=%d", resp.StatusCode)
	}
	body := struct {
		Messages []chatResponse.HistoryMessage `json:"messages"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed decoding chat history with error=%w", err)
	}
	messages := make([]Message, 0, len(body.Messages))
	for _, msg := range body.Messages {
		messages = append(messages, Message{
			ID:        msg.ID,
			Text:      msg.Text,
			IsBot:     msg.IsBot,
			Timestamp: msg.Timestamp,
		})
	}
	return messages, nil
}

func (cv *Conversation) sendMessage(c context.Context, sessionId string, text string) (chatResponse.Chat, error) {
	param := chatRequest.Chat{Message: text, SessionID: sessionId}
	if userId, _, ok := cv.session.User(); ok {
		param.UserID = &userId
	}
	data, err := json.Marshal(param)
	if err != nil {
		return chatResponse.Chat{}, fmt.Errorf("failed encoding chat request with error=%w", err)
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cv.baseURL+"/api/chatbot",
		bytes.NewReader(data),
	)
	if err != nil {
		return chatResponse.Chat{}, fmt.Errorf("failed creating chat request with error=%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		return chatResponse.Chat{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return chatResponse.Chat{}, fmt.Errorf("chat request rejected with statusCode=%d", resp.StatusCode)
	}
	reply := chatResponse.Chat{}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return chatResponse.Chat{}, fmt.Errorf("failed decoding chat reply with error=%w", err)
	}
	return reply, nil
}

func (cv *Conversation) newLocalMessage(text string, isBot bool, products []chatResponse.Product) Message {
	cv.localId++
	return Message{
		ID:        cv.localId,
		Text:      text,
		IsBot:     isBot,
		Timestamp: time.Now(),
		Products:  products,
	}
}
