package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edvin/skinsight/internal/llm"
)

// Tool pairs a function-calling schema with the handler that executes it
// against the session's order state.
type Tool struct {
	Definition llm.ToolDefinition
	Run        func(ctx context.Context, sess *Session, args json.RawMessage) (string, error)
}

// Registry holds the assistant's tools keyed by function name.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering the same name twice panics, since that
// is always a programming error.
func (r *Registry) Register(t Tool) {
	name := t.Definition.Function.Name
	if _, exists := r.tools[name]; exists {
		panic("assistant: duplicate tool " + name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Definitions returns the tool schemas in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition)
	}
	return defs
}

// Execute runs a tool call and returns its result as the tool message
// content. Unknown tools and handler failures come back as error strings so
// the model can read them and recover.
func (r *Registry) Execute(ctx context.Context, sess *Session, call llm.ToolCall) string {
	tool, ok := r.tools[call.Function.Name]
	if !ok {
		return fmt.Sprintf(`{"error":"unknown tool %s"}`, call.Function.Name)
	}

	result, err := tool.Run(ctx, sess, json.RawMessage(call.Function.Arguments))
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return result
}

// OrderingTools builds the registry for the restaurant ordering assistant.
func OrderingTools() *Registry {
	r := NewRegistry()

	r.Register(Tool{
		Definition: llm.ToolDefinition{
			Type: "function",
			Function: llm.FunctionSchema{
				Name:        "get_menu",
				Description: "List the full menu with item IDs, names, descriptions, and prices in cents.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			},
		},
		Run: func(_ context.Context, _ *Session, _ json.RawMessage) (string, error) {
			out, err := json.Marshal(Menu)
			if err != nil {
				return "", fmt.Errorf("marshal menu: %w", err)
			}
			return string(out), nil
		},
	})

	r.Register(Tool{
		Definition: llm.ToolDefinition{
			Type: "function",
			Function: llm.FunctionSchema{
				Name:        "add_order_item",
				Description: "Add a quantity of a menu item to the customer's order.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"item_id":{"type":"string","description":"Menu item ID or exact name"},"quantity":{"type":"integer","description":"How many to add (default 1)"}},"required":["item_id"]}`),
			},
		},
		Run: func(_ context.Context, sess *Session, args json.RawMessage) (string, error) {
			var req struct {
				ItemID   string `json:"item_id"`
				Quantity int    `json:"quantity"`
			}
			if err := json.Unmarshal(args, &req); err != nil {
				return "", fmt.Errorf("bad arguments: %w", err)
			}
			item, ok := FindMenuItem(req.ItemID)
			if !ok {
				return "", fmt.Errorf("no menu item %q", req.ItemID)
			}
			qty := req.Quantity
			if qty <= 0 {
				qty = 1
			}
			sess.Order[item.ID] += qty
			return fmt.Sprintf(`{"added":%q,"quantity":%d,"total_quantity":%d}`, item.ID, qty, sess.Order[item.ID]), nil
		},
	})

	r.Register(Tool{
		Definition: llm.ToolDefinition{
			Type: "function",
			Function: llm.FunctionSchema{
				Name:        "remove_order_item",
				Description: "Remove a menu item from the customer's order entirely.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{"item_id":{"type":"string","description":"Menu item ID or exact name"}},"required":["item_id"]}`),
			},
		},
		Run: func(_ context.Context, sess *Session, args json.RawMessage) (string, error) {
			var req struct {
				ItemID string `json:"item_id"`
			}
			if err := json.Unmarshal(args, &req); err != nil {
				return "", fmt.Errorf("bad arguments: %w", err)
			}
			item, ok := FindMenuItem(req.ItemID)
			if !ok {
				return "", fmt.Errorf("no menu item %q", req.ItemID)
			}
			if _, inOrder := sess.Order[item.ID]; !inOrder {
				return "", fmt.Errorf("%q is not in the order", item.ID)
			}
			delete(sess.Order, item.ID)
			return fmt.Sprintf(`{"removed":%q}`, item.ID), nil
		},
	})

	r.Register(Tool{
		Definition: llm.ToolDefinition{
			Type: "function",
			Function: llm.FunctionSchema{
				Name:        "get_order_summary",
				Description: "Summarize the current order: items, quantities, and the total in cents.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			},
		},
		Run: func(_ context.Context, sess *Session, _ json.RawMessage) (string, error) {
			type line struct {
				ItemID     string `json:"item_id"`
				Name       string `json:"name"`
				Quantity   int    `json:"quantity"`
				PriceCents int    `json:"price_cents"`
			}
			summary := struct {
				Items      []line `json:"items"`
				TotalCents int    `json:"total_cents"`
			}{Items: []line{}}

			for _, item := range Menu {
				qty, ok := sess.Order[item.ID]
				if !ok {
					continue
				}
				summary.Items = append(summary.Items, line{
					ItemID:     item.ID,
					Name:       item.Name,
					Quantity:   qty,
					PriceCents: item.PriceCents,
				})
				summary.TotalCents += qty * item.PriceCents
			}

			out, err := json.Marshal(summary)
			if err != nil {
				return "", fmt.Errorf("marshal summary: %w", err)
			}
			return string(out), nil
		},
	})

	return r
}
