package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/skinsight/internal/llm"
)

// scriptedClient returns canned responses in sequence and records requests.
type scriptedClient struct {
	responses []*llm.ChatResponse
	err       error
	requests  []llm.ChatRequest
}

func (c *scriptedClient) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.responses) == 0 {
		return &llm.ChatResponse{}, nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func textResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Choices: []llm.Choice{{
		Message:      llm.Message{Role: "assistant", Content: content},
		FinishReason: "stop",
	}}}
}

func toolCallResponse(name, args string) *llm.ChatResponse {
	return &llm.ChatResponse{Choices: []llm.Choice{{
		Message: llm.Message{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID:       "call-1",
				Type:     "function",
				Function: llm.FunctionCall{Name: name, Arguments: args},
			}},
		},
		FinishReason: "tool_calls",
	}}}
}

func newTestService(client chatClient) *Service {
	return NewService(client, OrderingTools(), zerolog.Nop())
}

func TestChat_PlainReply(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatResponse{
		textResponse("Hello! What would you like to order?"),
	}}
	svc := newTestService(client)

	reply, err := svc.Chat(context.Background(), "sess-1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! What would you like to order?", reply)

	// The system prompt leads every request.
	require.NotEmpty(t, client.requests)
	assert.Equal(t, "system", client.requests[0].Messages[0].Role)
	assert.NotEmpty(t, client.requests[0].Tools)
}

func TestChat_ToolCallThenReply(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatResponse{
		toolCallResponse("add_order_item", `{"item_id":"margherita","quantity":2}`),
		textResponse("Added two Margherita Pizzas."),
	}}
	svc := newTestService(client)

	reply, err := svc.Chat(context.Background(), "sess-1", "two margherita pizzas")
	require.NoError(t, err)
	assert.Equal(t, "Added two Margherita Pizzas.", reply)

	// The tool executed against the session's order.
	sess := svc.sessions.Get("sess-1")
	assert.Equal(t, 2, sess.Order["margherita"])

	// The second request carried the tool result back to the model.
	require.Len(t, client.requests, 2)
	last := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
}

func TestChat_SessionPersistsAcrossTurns(t *testing.T) {
	client := &scriptedClient{responses: []*llm.ChatResponse{
		textResponse("Sure."),
		textResponse("Anything else?"),
	}}
	svc := newTestService(client)

	_, err := svc.Chat(context.Background(), "sess-1", "hello")
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), "sess-1", "what do you have?")
	require.NoError(t, err)

	// Second request includes the first turn's transcript.
	require.Len(t, client.requests, 2)
	assert.Greater(t, len(client.requests[1].Messages), len(client.requests[0].Messages))
}

func TestChat_ToolRoundCap(t *testing.T) {
	// The model keeps asking for tools and never answers.
	var responses []*llm.ChatResponse
	for i := 0; i < 10; i++ {
		responses = append(responses, toolCallResponse("get_menu", `{}`))
	}
	client := &scriptedClient{responses: responses}
	svc := newTestService(client)

	_, err := svc.Chat(context.Background(), "sess-1", "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool rounds")
	assert.LessOrEqual(t, len(client.requests), maxToolRounds+1)
}

// orderingClient is a concurrency-safe stub: it asks to add one margherita
// per turn, then replies with text once the tool result comes back.
type orderingClient struct {
	mu    sync.Mutex
	calls int
}

func (c *orderingClient) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	last := req.Messages[len(req.Messages)-1]
	if last.Role == "tool" {
		return textResponse("Added."), nil
	}
	return toolCallResponse("add_order_item", `{"item_id":"margherita","quantity":1}`), nil
}

func TestChat_ConcurrentTurnsOnOneSession(t *testing.T) {
	svc := newTestService(&orderingClient{})

	const turns = 8
	var wg sync.WaitGroup
	errs := make(chan error, turns)
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Chat(context.Background(), "sess-1", "one margherita please")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Every turn's tool call landed exactly once.
	sess := svc.sessions.Get("sess-1")
	assert.Equal(t, turns, sess.Order["margherita"])
	// Each turn appends user, assistant tool call, tool result, final reply.
	assert.Len(t, sess.Messages, 4*turns)
}

func TestChat_ClientError(t *testing.T) {
	client := &scriptedClient{err: errors.New("model unavailable")}
	svc := newTestService(client)

	_, err := svc.Chat(context.Background(), "sess-1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}
