package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/skinsight/internal/llm"
)

// maxToolRounds caps how many tool-call round trips one turn may take.
const maxToolRounds = 4

const systemPrompt = `You are a friendly restaurant ordering assistant.
Help the customer browse the menu and build their order using the provided
tools. Always confirm what was added or removed. Prices are in cents; present
them as dollars. Do not invent menu items.`

// chatClient is the completions surface the assistant needs.
type chatClient interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
}

// Service runs the tool-calling conversation loop for the ordering assistant.
type Service struct {
	client   chatClient
	registry *Registry
	sessions *SessionStore
	logger   zerolog.Logger
}

func NewService(client chatClient, registry *Registry, logger zerolog.Logger) *Service {
	return &Service{
		client:   client,
		registry: registry,
		sessions: NewSessionStore(30*time.Minute, 1000),
		logger:   logger.With().Str("component", "assistant").Logger(),
	}
}

// Chat runs one conversational turn. Tool calls requested by the model are
// executed against the session's order and fed back until the model produces
// a plain reply or the round cap is hit.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (string, error) {
	sess := s.sessions.Get(sessionID)
	sess.Lock()
	defer sess.Unlock()

	sess.Messages = append(sess.Messages, llm.Message{Role: "user", Content: message})

	for round := 0; round <= maxToolRounds; round++ {
		messages := make([]llm.Message, 0, len(sess.Messages)+1)
		messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
		messages = append(messages, sess.Messages...)

		resp, err := s.client.Chat(ctx, llm.ChatRequest{
			Messages: messages,
			Tools:    s.registry.Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		msg := resp.FirstMessage()
		sess.Messages = append(sess.Messages, msg)

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}
		if round == maxToolRounds {
			break
		}

		for _, call := range msg.ToolCalls {
			result := s.registry.Execute(ctx, sess, call)
			s.logger.Debug().
				Str("session_id", sessionID).
				Str("tool", call.Function.Name).
				Msg("executed tool call")
			sess.Messages = append(sess.Messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("conversation exceeded %d tool rounds", maxToolRounds)
}
