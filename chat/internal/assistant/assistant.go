package assistant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/brewhouse/storefront/internal/config"
	inErrors "github.com/brewhouse/storefront/internal/errors"
	"github.com/brewhouse/storefront/internal/log"
	inOtel "github.com/brewhouse/storefront/internal/otel"
)

type Message struct {
	Role    string
	Content string
}

type Reply struct {
	Text   string
	Intent string
	Agent  string
}

// Assistant produces the storefront chatbot reply for a user message
// given the prior conversation and a catalog excerpt.
type Assistant interface {
	Reply(c context.Context, catalog string, history []Message, message string) (Reply, error)
}

const systemPromptFormat = `You are %s, the virtual barista of an online coffee storefront.
Help customers browse the catalog, answer questions about products, and take orders.

When you mention a product, always format it as **Product Name** (ID: <id>) using ids from the catalog below.
When the customer confirms they want an item, emit one instruction line per item in exactly this format:
ADD TO CART: Product ID <id>, Size: <size>, Quantity: <quantity>
Only emit ADD TO CART lines for explicit confirmations, never for browsing questions.

Catalog:
%s`

type OpenAIAssistant struct {
	client *openai.Client
	model  string
	agent  string
}

func NewOpenAIAssistant(config config.Chatbot) *OpenAIAssistant {
	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	agent := config.Agent
	if agent == "" {
		agent = defaultAgent
	}
	return &OpenAIAssistant{
		client: openai.NewClient(config.ApiKey),
		model:  model,
		agent:  agent,
	}
}

func (a *OpenAIAssistant) Reply(
	c context.Context,
	catalog string,
	history []Message,
	message string,
) (Reply, error) {
	c, span := inOtel.Tracer.Start(c, "OpenAIAssistant Reply")
	defer span.End()

	intent := ClassifyIntent(message)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OpenAIAssistant Reply").
		Str(log.KeyIntent, intent).
		Str(log.KeyProcess, "creating chat completion").
		Logger()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(systemPromptFormat, a.agent, catalog),
	})
	for _, m := range history {
		role := m.Role
		if role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	logger.Info().Msg("creating chat completion")
	resp, err := a.client.CreateChatCompletion(c, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		err = fmt.Errorf("failed creating chat completion with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Reply{}, err
	}
	if len(resp.Choices) == 0 {
		err = fmt.Errorf("chat completion returned no choices")
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Reply{}, err
	}
	logger.Info().Msg("created chat completion")

	return Reply{
		Text:   resp.Choices[0].Message.Content,
		Intent: intent,
		Agent:  AgentName(intent),
	}, nil
}
