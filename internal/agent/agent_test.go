package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/llm"
	"folio/internal/portfolio"
	"folio/internal/tools"
)

// scripted is an llm.Provider that replays canned replies and captures every
// request for inspection.
type scripted struct {
	replies  []func(msgs []llm.Message, defs []llm.ToolDef) (*llm.Completion, error)
	gotMsgs  [][]llm.Message
	gotDefs  [][]llm.ToolDef
	numCalls int
}

func (s *scripted) Chat(ctx context.Context, msgs []llm.Message, defs []llm.ToolDef) (*llm.Completion, error) {
	s.gotMsgs = append(s.gotMsgs, append([]llm.Message(nil), msgs...))
	s.gotDefs = append(s.gotDefs, defs)

	idx := s.numCalls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.numCalls++
	return s.replies[idx](msgs, defs)
}

func answer(text string) func([]llm.Message, []llm.ToolDef) (*llm.Completion, error) {
	return func([]llm.Message, []llm.ToolDef) (*llm.Completion, error) {
		return &llm.Completion{
			Message: llm.Message{Role: "assistant", Content: text},
			Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		}, nil
	}
}

func callTool(id, name, args string) func([]llm.Message, []llm.ToolDef) (*llm.Completion, error) {
	return func([]llm.Message, []llm.ToolDef) (*llm.Completion, error) {
		return &llm.Completion{
			Message: llm.Message{
				Role:      "assistant",
				ToolCalls: []llm.ToolCall{{ID: id, Name: name, Arguments: args}},
			},
		}, nil
	}
}

func newCatalog(t *testing.T) *tools.Catalog {
	t.Helper()
	doc, err := portfolio.Load(filepath.Join("..", "portfolio", "testdata", "portfolio.json"))
	require.NoError(t, err)
	return tools.NewCatalog(doc)
}

func TestAsk_FinalAnswerFirstTurn(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		answer("She is a data analyst."),
	}}
	a := New(p, newCatalog(t))

	res, err := a.Ask(context.Background(), "who is she?")
	require.NoError(t, err)

	assert.Equal(t, "She is a data analyst.", res.Answer)
	assert.False(t, res.Inconclusive)
	assert.Empty(t, res.ToolCalls)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, p.numCalls)

	// The tool catalog was offered to the model.
	require.Len(t, p.gotDefs[0], 9)
}

func TestAsk_GroundedProfileAnswer(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		callTool("call_1", "get_profile", "{}"),
		answer("Rakshya Pandey is a data analyst and full-stack developer."),
	}}
	a := New(p, newCatalog(t))

	res, err := a.Ask(context.Background(), "give me a short summary")
	require.NoError(t, err)

	assert.Contains(t, res.Answer, "Rakshya Pandey")
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "get_profile", res.ToolCalls[0].Tool)
	assert.Contains(t, res.ToolCalls[0].Result, "Rakshya Pandey")
	assert.Equal(t, 2, res.Iterations)

	// The second request carries the tool result message.
	second := p.gotMsgs[1]
	last := second[len(second)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, "Rakshya Pandey")
}

func TestAsk_TerminatesAtIterationCap(t *testing.T) {
	// The model never stops asking for tools: the loop must still terminate
	// within the cap plus one wrap-up call.
	for _, limit := range []int{1, 2, 5} {
		p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
			callTool("call_1", "get_projects", "{}"),
		}}
		a := New(p, newCatalog(t), WithMaxIterations(limit))

		res, err := a.Ask(context.Background(), "tell me everything")
		require.NoError(t, err, "cap=%d", limit)

		assert.True(t, res.Inconclusive, "cap=%d", limit)
		assert.Equal(t, limit, res.Iterations, "cap=%d", limit)
		assert.Equal(t, limit+1, p.numCalls, "cap=%d", limit)

		// The wrap-up call carries no tools and the wrap-up instruction.
		wrapDefs := p.gotDefs[len(p.gotDefs)-1]
		assert.Empty(t, wrapDefs, "cap=%d", limit)
		wrapMsgs := p.gotMsgs[len(p.gotMsgs)-1]
		last := wrapMsgs[len(wrapMsgs)-1]
		assert.Equal(t, "system", last.Role, "cap=%d", limit)
		assert.Equal(t, wrapUpPrompt, last.Content, "cap=%d", limit)
	}
}

func TestAsk_WrapUpAnswerReturned(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		callTool("call_1", "get_projects", "{}"),
		callTool("call_2", "get_skills", "{}"),
		answer("Based on what I gathered: three projects."),
	}}
	a := New(p, newCatalog(t), WithMaxIterations(2))

	res, err := a.Ask(context.Background(), "tell me everything")
	require.NoError(t, err)

	assert.True(t, res.Inconclusive)
	assert.Equal(t, "Based on what I gathered: three projects.", res.Answer)
}

func TestAsk_WrapUpFailureIsInconclusive(t *testing.T) {
	fail := func([]llm.Message, []llm.ToolDef) (*llm.Completion, error) {
		return nil, errors.New("upstream timeout")
	}
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		callTool("call_1", "get_projects", "{}"),
		fail,
	}}
	a := New(p, newCatalog(t), WithMaxIterations(1), WithMaxRetries(0))

	res, err := a.Ask(context.Background(), "tell me everything")
	require.NoError(t, err)

	assert.True(t, res.Inconclusive)
	assert.Empty(t, res.Answer)
}

func TestAsk_UnknownToolRecovers(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		callTool("call_1", "get_weather", `{"city":"Kathmandu"}`),
		answer("I can only answer portfolio questions."),
	}}
	a := New(p, newCatalog(t))

	res, err := a.Ask(context.Background(), "what's the weather?")
	require.NoError(t, err)
	assert.Equal(t, "I can only answer portfolio questions.", res.Answer)

	// The next turn sees an error-tagged tool result, not a crash.
	second := p.gotMsgs[1]
	last := second[len(second)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "error: unknown tool", last.Content)

	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "error: unknown tool", res.ToolCalls[0].Result)
}

func TestAsk_ToolErrorSurfacedToModel(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		callTool("call_1", "get_skills", `{"category":"piloting"}`),
		answer("That category is not available."),
	}}
	a := New(p, newCatalog(t))

	res, err := a.Ask(context.Background(), "can she fly a plane?")
	require.NoError(t, err)
	assert.Equal(t, "That category is not available.", res.Answer)

	second := p.gotMsgs[1]
	last := second[len(second)-1]
	assert.Contains(t, last.Content, "error: unknown skills category")
}

func TestAsk_EmptyQuery(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		answer("never called"),
	}}
	a := New(p, newCatalog(t))

	_, err := a.Ask(context.Background(), "   ")
	assert.Error(t, err)
	assert.Zero(t, p.numCalls)
}

func TestAsk_BackendFailureRetriesThenFails(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		func([]llm.Message, []llm.ToolDef) (*llm.Completion, error) {
			return nil, errors.New("connection refused")
		},
	}}
	a := New(p, newCatalog(t), WithMaxRetries(2))

	_, err := a.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 3, p.numCalls)
}

func TestAsk_HistoryCarriesAcrossTurns(t *testing.T) {
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		answer("She worked at Acme Analytics."),
		answer("Since June 2022."),
	}}
	a := New(p, newCatalog(t))

	_, err := a.Ask(context.Background(), "where does she work?")
	require.NoError(t, err)
	_, err = a.Ask(context.Background(), "since when?")
	require.NoError(t, err)

	second := p.gotMsgs[1]
	require.Len(t, second, 4) // system, user, assistant, user
	assert.Equal(t, "where does she work?", second[1].Content)
	assert.Equal(t, "She worked at Acme Analytics.", second[2].Content)
	assert.Equal(t, "since when?", second[3].Content)

	a.Reset()
	_, err = a.Ask(context.Background(), "fresh start")
	require.NoError(t, err)
	third := p.gotMsgs[2]
	assert.Len(t, third, 2) // system, user
}

func TestAsk_EmitsToolEvents(t *testing.T) {
	var events []Event
	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		callTool("call_1", "get_profile", "{}"),
		answer("done"),
	}}
	a := New(p, newCatalog(t), WithEmit(func(ev Event) { events = append(events, ev) }))

	_, err := a.Ask(context.Background(), "summary")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, EventToolCall, events[0].Type)
	assert.Equal(t, EventToolResult, events[1].Type)
	assert.Equal(t, EventDone, events[2].Type)
}

func TestAsk_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &scripted{replies: []func([]llm.Message, []llm.ToolDef) (*llm.Completion, error){
		answer("never"),
	}}
	a := New(p, newCatalog(t))

	_, err := a.Ask(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
