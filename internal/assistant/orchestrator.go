package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skema-app/skema/internal/logging"
	"github.com/skema-app/skema/internal/openai"
)

// Fixed user-facing texts for degraded turns.
const (
	unavailableText = "AI functionality is not available. Please configure an API key."
	apologyText     = "I apologize, but I encountered an error processing your request. Please try again."
)

// ModelClient is the model capability: given messages and tool descriptors,
// return an assistant message that may request tool calls.
type ModelClient interface {
	ChatCompletion(ctx context.Context, messages []openai.Message, tools []openai.Tool) (*openai.Completion, error)
	Model() string
}

// ToolCallOutcome is one executed tool call and its result, in execution
// order.
type ToolCallOutcome struct {
	ToolName string         `json:"tool_name"`
	ToolArgs map[string]any `json:"tool_args"`
	Result   ToolResult     `json:"result"`
}

// Metadata summarizes a turn for the caller.
type Metadata struct {
	Model        string `json:"model"`
	TokensUsed   int    `json:"tokens_used"`
	ToolsUsed    int    `json:"tools_used"`
	MessageCount int    `json:"message_count"`
}

// TurnResult is what one conversation turn returns to the transport layer.
type TurnResult struct {
	Success   bool              `json:"success"`
	Response  string            `json:"response"`
	ToolCalls []ToolCallOutcome `json:"tool_calls,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  Metadata          `json:"metadata"`
}

// Handler orchestrates conversation turns: prompt building, model calls,
// tool dispatch, and memory persistence. It holds no per-turn state of its
// own; all shared state lives in the memory store.
type Handler struct {
	client   ModelClient // nil means the model capability is not configured
	registry *Registry
	memory   *ConversationMemory
	deps     *Dependencies
	now      func() time.Time
}

// NewHandler creates the orchestrator. client may be nil, in which case every
// turn short-circuits with an "unavailable" result.
func NewHandler(client ModelClient, registry *Registry, memory *ConversationMemory, deps *Dependencies) *Handler {
	nowFn := time.Now
	if deps != nil && deps.Now != nil {
		nowFn = deps.Now
	}
	return &Handler{
		client:   client,
		registry: registry,
		memory:   memory,
		deps:     deps,
		now:      nowFn,
	}
}

// ProcessMessage runs one conversation turn for the actor. It never returns
// an error and never panics past this boundary: every failure mode becomes a
// structured TurnResult. Memory is written exactly once, at the end of the
// turn, so a failure mid-turn leaves the stored history untouched.
func (h *Handler) ProcessMessage(ctx context.Context, actor Actor, message string) (result *TurnResult) {
	if h.client == nil {
		return &TurnResult{
			Success:  false,
			Response: unavailableText,
			Error:    "model capability not configured",
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("assistant", "turn panicked for user %s: %v", actor.UserID, rec)
			result = &TurnResult{
				Success:  false,
				Response: apologyText,
				Error:    fmt.Sprintf("internal error: %v", rec),
			}
		}
	}()

	// Build the prompt: system (recomputed, it embeds "now"), stored
	// history, then the user's message with optional context augmentation.
	userText := augmentMessage(h.deps, actor.UserID, message)
	history := h.memory.History(actor.UserID)

	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{
		Role:    openai.RoleSystem,
		Content: buildSystemPrompt(actor.DisplayName, h.now()),
	})
	messages = append(messages, history...)
	userMsg := openai.Message{Role: openai.RoleUser, Content: userText}
	messages = append(messages, userMsg)

	completion, err := h.client.ChatCompletion(ctx, messages, h.registry.OpenAITools())
	if err != nil {
		logging.Error("assistant", "model call failed for user %s: %v", actor.UserID, err)
		return &TurnResult{Success: false, Response: apologyText, Error: err.Error()}
	}

	assistantMsg := completion.Message
	assistantMsg.Role = openai.RoleAssistant
	tokens := completion.TotalTokens

	if len(assistantMsg.ToolCalls) == 0 {
		h.memory.AppendAll(actor.UserID, userMsg, assistantMsg)
		return &TurnResult{
			Success:  true,
			Response: assistantMsg.Content,
			Metadata: Metadata{
				Model:        completion.Model,
				TokensUsed:   tokens,
				MessageCount: len(messages),
			},
		}
	}

	// Execute tool calls strictly in the order the model requested them.
	// Every call gets a tool message, failures included; the model reasons
	// about failures too.
	messages = append(messages, assistantMsg)
	outcomes := make([]ToolCallOutcome, 0, len(assistantMsg.ToolCalls))
	toolMsgs := make([]openai.Message, 0, len(assistantMsg.ToolCalls))

	for _, call := range assistantMsg.ToolCalls {
		name := call.Function.Name
		var args map[string]any
		var toolResult ToolResult
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil && call.Function.Arguments != "" {
			toolResult = ToolResult{
				Success: false,
				Error:   fmt.Sprintf("invalid arguments: %v", err),
				Message: fmt.Sprintf("Tool '%s' received malformed arguments", name),
			}
		} else {
			toolResult = h.registry.Invoke(ctx, name, args, actor)
		}

		logging.Debug("assistant", "tool %s for user %s: success=%v %s",
			name, actor.UserID, toolResult.Success, logging.Truncate(toolResult.Message, 80))

		outcomes = append(outcomes, ToolCallOutcome{ToolName: name, ToolArgs: args, Result: toolResult})

		payload, merr := json.Marshal(toolResult)
		if merr != nil {
			payload = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, merr.Error()))
		}
		toolMsg := toolMessage(call.ID, string(payload))
		toolMsgs = append(toolMsgs, toolMsg)
		messages = append(messages, toolMsg)
	}

	meta := Metadata{
		Model:        completion.Model,
		TokensUsed:   tokens,
		ToolsUsed:    len(outcomes),
		MessageCount: len(messages),
	}

	// Second model call turns the tool results into a natural-language
	// answer. If it fails, the tool side effects are already real: persist
	// everything known-complete and substitute an apology as the response.
	final, err := h.client.ChatCompletion(ctx, messages, nil)
	if err != nil {
		logging.Error("assistant", "final model call failed for user %s: %v", actor.UserID, err)
		persisted := append([]openai.Message{userMsg, assistantMsg}, toolMsgs...)
		h.memory.AppendAll(actor.UserID, persisted...)
		return &TurnResult{
			Success:   false,
			Response:  apologyText,
			ToolCalls: outcomes,
			Error:     err.Error(),
			Metadata:  meta,
		}
	}

	finalMsg := final.Message
	finalMsg.Role = openai.RoleAssistant
	meta.TokensUsed += final.TotalTokens

	persisted := append([]openai.Message{userMsg, assistantMsg}, toolMsgs...)
	persisted = append(persisted, finalMsg)
	h.memory.AppendAll(actor.UserID, persisted...)

	return &TurnResult{
		Success:   true,
		Response:  finalMsg.Content,
		ToolCalls: outcomes,
		Metadata:  meta,
	}
}

// ClearConversation drops the user's stored history.
func (h *Handler) ClearConversation(userID string) {
	h.memory.Clear(userID)
	logging.Info("assistant", "Cleared conversation for user %s", userID)
}

// ConversationStats exposes the memory store's administrative view.
func (h *Handler) ConversationStats(userID string) (ConversationStats, bool) {
	return h.memory.Stats(userID)
}

// QuickSuggestions returns starter prompts for the conversation UI.
func (h *Handler) QuickSuggestions() []string {
	return []string{
		"Add a journal entry about how I'm feeling today",
		"Schedule a meeting for tomorrow at 2 PM",
		"Create a board for my new project",
		"Show me all my boards",
		"Add a quest to buy groceries",
		"What's on my calendar this week?",
		"Mark my first quest as complete",
		"Write about today's achievements",
	}
}
