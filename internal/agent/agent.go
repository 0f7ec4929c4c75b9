// Package agent drives one conversation against an LLM backend. The model
// answers portfolio questions by calling the read-only tool catalog; the
// loop feeds tool results back until the model produces a final answer or
// the iteration cap is reached.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"folio/internal/llm"
	"folio/internal/tools"
	"folio/internal/trace"
)

type EventType string

const (
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// wrapUpPrompt is appended when the iteration cap is hit, asking the model
// to answer from whatever the tools already returned.
const wrapUpPrompt = "Please provide your final answer based on the information gathered so far."

// DefaultSystemPrompt returns the grounding prompt for a portfolio owned by
// the named person.
func DefaultSystemPrompt(ownerName string) string {
	if ownerName == "" {
		ownerName = "the portfolio owner"
	}
	return fmt.Sprintf(`You are the portfolio assistant for %s.

You will receive a natural language question and one or more tool outputs
containing JSON data about the portfolio. Answer recruiter or visitor
questions using ONLY the tool outputs.

Hard rules:
1. Never invent or guess data, dates, skills, or project details.
2. Only mention information present in the tool outputs.
3. If a detail is missing, say "not available" or ask the user to clarify.
4. Do not reference external sources or assumptions.
5. Keep answers concise and factual.`, ownerName)
}

// Step is one entry of the reasoning trail returned to verbose callers.
type Step struct {
	Action    string `json:"action"`
	Arguments string `json:"arguments,omitempty"`
	Result    string `json:"result_preview,omitempty"`
}

// ToolCallRecord captures one executed tool call, in execution order.
type ToolCallRecord struct {
	Tool      string `json:"tool"`
	Arguments string `json:"args,omitempty"`
	Result    string `json:"result,omitempty"`
}

// UsageRecord reports token usage of one LLM call.
type UsageRecord struct {
	Iteration    int   `json:"iteration"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Result is the outcome of one Ask call. Inconclusive marks answers produced
// by the wrap-up call after the iteration cap, not an error.
type Result struct {
	Answer       string           `json:"answer"`
	Inconclusive bool             `json:"inconclusive"`
	Reasoning    []Step           `json:"reasoning,omitempty"`
	ToolCalls    []ToolCallRecord `json:"tool_calls,omitempty"`
	Iterations   int              `json:"iterations"`
	Usage        []UsageRecord    `json:"usage,omitempty"`
}

type Option func(*Agent)

func WithSystemPrompt(s string) Option {
	return func(a *Agent) { a.systemPrompt = s }
}

// WithMaxIterations sets the tool-calling round cap; values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n >= 1 {
			a.maxIterations = n
		}
	}
}

// WithCallTimeout bounds each individual backend call.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Agent) {
		if d > 0 {
			a.callTimeout = d
		}
	}
}

// WithMaxRetries sets how often a failed backend call is retried before the
// ask fails terminally.
func WithMaxRetries(n int) Option {
	return func(a *Agent) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

// WithEmit registers a callback receiving progress events (tool calls and
// results) while an ask runs.
func WithEmit(emit func(Event)) Option {
	return func(a *Agent) {
		if emit != nil {
			a.emit = emit
		}
	}
}

// Agent owns one conversation. It is not safe for concurrent use; every
// session or request gets its own instance. The portfolio document behind
// the catalog is shared and read-only.
type Agent struct {
	provider      llm.Provider
	catalog       *tools.Catalog
	defs          []llm.ToolDef
	systemPrompt  string
	maxIterations int
	callTimeout   time.Duration
	maxRetries    int
	emit          func(Event)
	history       []llm.Message
}

func New(provider llm.Provider, catalog *tools.Catalog, opts ...Option) *Agent {
	a := &Agent{
		provider:      provider,
		catalog:       catalog,
		systemPrompt:  DefaultSystemPrompt(""),
		maxIterations: 5,
		callTimeout:   60 * time.Second,
		maxRetries:    2,
		emit:          func(Event) {},
	}

	for _, opt := range opts {
		opt(a)
	}

	for _, t := range catalog.All() {
		a.defs = append(a.defs, llm.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}

	return a
}

// Reset discards the conversation history.
func (a *Agent) Reset() {
	a.history = nil
}

// Ask runs the bounded tool-calling loop for one query. The conversation
// history keeps the query and the final answer, so follow-up questions in
// the same session have context; the tool exchanges stay local to the call.
func (a *Agent) Ask(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query must not be empty")
	}

	ctx, span := trace.Tracer().Start(ctx, "agent.ask",
		oteltrace.WithAttributes(attribute.String("agent.query", preview(query))),
	)
	defer span.End()

	a.history = append(a.history, llm.Message{Role: "user", Content: query})

	msgs := make([]llm.Message, 0, len(a.history)+1)
	msgs = append(msgs, llm.Message{Role: "system", Content: a.systemPrompt})
	msgs = append(msgs, a.history...)

	res := &Result{}

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			a.emit(Event{Type: EventError, Data: "request cancelled"})
			return nil, err
		}

		comp, err := a.chat(ctx, msgs, a.defs, iteration)
		if err != nil {
			a.emit(Event{Type: EventError, Data: err.Error()})
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		res.Iterations = iteration + 1
		res.Usage = append(res.Usage, usageRecord(iteration+1, comp.Usage))

		// No tool calls means the model considers the question answered.
		if len(comp.Message.ToolCalls) == 0 {
			res.Answer = comp.Message.Content
			a.history = append(a.history, llm.Message{Role: "assistant", Content: res.Answer})
			a.emit(Event{Type: EventDone, Data: res.Answer})
			return res, nil
		}

		msgs = append(msgs, comp.Message)
		msgs = append(msgs, a.act(ctx, comp.Message.ToolCalls, res)...)
	}

	// Cap reached without a final answer. One last call without tools asks
	// the model to wrap up from what it has; the result is always flagged
	// inconclusive so front-ends can tell it apart from a grounded answer.
	res.Inconclusive = true
	wrap := append(msgs, llm.Message{Role: "system", Content: wrapUpPrompt})
	comp, err := a.chat(ctx, wrap, nil, a.maxIterations)
	if err != nil {
		slog.Warn("wrap-up call failed", "error", err)
		a.emit(Event{Type: EventDone, Data: ""})
		return res, nil
	}

	res.Answer = comp.Message.Content
	res.Usage = append(res.Usage, usageRecord(a.maxIterations+1, comp.Usage))
	a.history = append(a.history, llm.Message{Role: "assistant", Content: res.Answer})
	a.emit(Event{Type: EventDone, Data: res.Answer})
	return res, nil
}

// chat performs one backend call with the configured timeout, retrying a
// bounded number of times before giving up.
func (a *Agent) chat(ctx context.Context, msgs []llm.Message, defs []llm.ToolDef, iteration int) (*llm.Completion, error) {
	ctx, span := trace.Tracer().Start(ctx, "llm.chat",
		oteltrace.WithAttributes(attribute.Int("llm.iteration", iteration)),
	)
	defer span.End()

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
		comp, err := a.provider.Chat(callCtx, msgs, defs)
		cancel()
		if err == nil {
			span.SetAttributes(
				attribute.Int64("llm.input_tokens", comp.Usage.InputTokens),
				attribute.Int64("llm.output_tokens", comp.Usage.OutputTokens),
			)
			return comp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		slog.Warn("llm call failed", "iteration", iteration, "attempt", attempt+1, "error", err)
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, fmt.Errorf("llm backend: %w", lastErr)
}

// act executes the requested tool calls in parallel and returns their
// results as tool messages, in request order. Unknown tools and tool
// failures become error-tagged results so the model can adapt on the next
// iteration instead of the loop crashing.
func (a *Agent) act(ctx context.Context, calls []llm.ToolCall, res *Result) []llm.Message {
	for _, call := range calls {
		a.emit(Event{Type: EventToolCall, Data: map[string]string{
			"name":      call.Name,
			"arguments": call.Arguments,
		}})
	}

	var wg sync.WaitGroup
	outputs := make([]string, len(calls))

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()
			outputs[i] = a.runTool(ctx, call)
		}(i, call)
	}
	wg.Wait()

	results := make([]llm.Message, len(calls))
	for i, call := range calls {
		results[i] = llm.Message{
			Role:       "tool",
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Content:    outputs[i],
		}
		a.emit(Event{Type: EventToolResult, Data: map[string]string{
			"name":    call.Name,
			"content": outputs[i],
		}})
		res.ToolCalls = append(res.ToolCalls, ToolCallRecord{
			Tool:      call.Name,
			Arguments: call.Arguments,
			Result:    outputs[i],
		})
		res.Reasoning = append(res.Reasoning, Step{
			Action:    "called " + call.Name,
			Arguments: call.Arguments,
			Result:    preview(outputs[i]),
		})
	}
	return results
}

func (a *Agent) runTool(ctx context.Context, call llm.ToolCall) string {
	tool, ok := a.catalog.Lookup(call.Name)
	if !ok {
		slog.Warn("unknown tool call", "name", call.Name)
		return "error: unknown tool"
	}

	result, err := withTrace(tool).Execute(ctx, call.Arguments)
	if err != nil {
		slog.Warn("tool execution failed", "name", call.Name, "error", err)
		return "error: " + err.Error()
	}
	return result
}

func usageRecord(iteration int, u llm.Usage) UsageRecord {
	return UsageRecord{
		Iteration:    iteration,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.TotalTokens,
	}
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
