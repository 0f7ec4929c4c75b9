// Package llm abstracts the chat backends the agent can run against.
// Messages use a provider-neutral shape so the loop does not care whether
// it is talking to OpenAI or a local Ollama instance.
package llm

import "context"

// Message is one entry of a conversation.
type Message struct {
	Role       string // "system", "user", "assistant" or "tool"
	Content    string
	ToolCalls  []ToolCall // set on assistant messages that request tools
	ToolCallID string     // set on tool result messages
	ToolName   string     // set on tool result messages
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// ToolDef describes a callable tool in function-calling format.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

// Usage reports token consumption of a single chat call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// Completion is the backend's reply to one chat call.
type Completion struct {
	Message Message
	Usage   Usage
}

type Provider interface {
	Chat(ctx context.Context, messages []Message, tools []ToolDef) (*Completion, error)
}
