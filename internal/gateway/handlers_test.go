package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/agent"
)

// stubAsker returns a canned result or error and records the query.
type stubAsker struct {
	res   *agent.Result
	err   error
	query string
}

func (s *stubAsker) Ask(ctx context.Context, query string) (*agent.Result, error) {
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func newTestServer(asker *stubAsker, authToken string) *Server {
	return NewServer(func(maxIterations int) Asker { return asker }, authToken)
}

func postAsk(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/portfolio/ask", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAsk_Success(t *testing.T) {
	asker := &stubAsker{res: &agent.Result{
		Answer:     "Rakshya is a data analyst.",
		Iterations: 2,
		ToolCalls:  []agent.ToolCallRecord{{Tool: "get_profile"}},
		Reasoning:  []agent.Step{{Action: "called get_profile"}},
	}}
	srv := newTestServer(asker, "")

	rr := postAsk(t, srv.Handler(), `{"query":"who is she?"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp askResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Rakshya is a data analyst.", resp.Answer)
	assert.False(t, resp.Inconclusive)
	assert.Equal(t, 2, resp.Iterations)
	// Non-verbose responses omit the trail.
	assert.Empty(t, resp.Reasoning)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "who is she?", asker.query)
}

func TestAsk_VerboseIncludesTrail(t *testing.T) {
	asker := &stubAsker{res: &agent.Result{
		Answer:    "ok",
		ToolCalls: []agent.ToolCallRecord{{Tool: "get_skills"}},
		Reasoning: []agent.Step{{Action: "called get_skills"}},
	}}
	srv := newTestServer(asker, "")

	rr := postAsk(t, srv.Handler(), `{"query":"skills?","verbose":true}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp askResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_skills", resp.ToolCalls[0].Tool)
	require.Len(t, resp.Reasoning, 1)
}

func TestAsk_InconclusiveFlagged(t *testing.T) {
	asker := &stubAsker{res: &agent.Result{Answer: "partial", Inconclusive: true, Iterations: 5}}
	srv := newTestServer(asker, "")

	rr := postAsk(t, srv.Handler(), `{"query":"everything"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp askResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Inconclusive)
}

func TestAsk_BadRequests(t *testing.T) {
	srv := newTestServer(&stubAsker{res: &agent.Result{}}, "")

	for name, body := range map[string]string{
		"invalid json":            `{not json`,
		"missing query":           `{}`,
		"negative max_iterations": `{"query":"hi","max_iterations":-1}`,
	} {
		rr := postAsk(t, srv.Handler(), body, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestAsk_AgentErrorIsOpaque(t *testing.T) {
	asker := &stubAsker{err: errors.New("llm backend: connection refused to 10.0.0.7")}
	srv := newTestServer(asker, "")

	rr := postAsk(t, srv.Handler(), `{"query":"hi"}`, nil)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "agent request failed", resp["error"])
	assert.NotContains(t, rr.Body.String(), "10.0.0.7")
}

func TestAsk_InternalAuth(t *testing.T) {
	asker := &stubAsker{res: &agent.Result{Answer: "ok"}}
	srv := newTestServer(asker, "secret-token")

	rr := postAsk(t, srv.Handler(), `{"query":"hi"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postAsk(t, srv.Handler(), `{"query":"hi"}`, map[string]string{"X-Internal-Auth": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postAsk(t, srv.Handler(), `{"query":"hi"}`, map[string]string{"X-Internal-Auth": "secret-token"})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAsk_HealthzIsOpen(t *testing.T) {
	srv := newTestServer(&stubAsker{res: &agent.Result{}}, "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
