package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcare-agent/internal/agent"
	"healthcare-agent/internal/config"
	"healthcare-agent/internal/models"
)

type stubRouter struct {
	result *agent.Result
	err    error

	lastQuery string
}

func (s *stubRouter) Ask(_ context.Context, query string) (*agent.Result, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestApp(t *testing.T, router Router) *fiber.App {
	t.Helper()

	tmpl := template.Must(template.New("index.html").Parse("<html>home</html>"))
	template.Must(tmpl.New("chatbot.html").Parse("<html>chatbot</html>"))
	template.Must(tmpl.New("about.html").Parse("<html>about</html>"))

	h := NewHandler(router, nil, &config.Config{}, tmpl)
	app := fiber.New()
	RegisterRoutes(app, h, true)
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("POST", "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestChat_ReturnsToolResult(t *testing.T) {
	router := &stubRouter{result: &agent.Result{
		CleanAnswer: "There are 4 patients.",
		Tool:        models.SQLToolName,
		ToolDetails: "SELECT COUNT(*) FROM patients",
		RawOutput:   "Source: Database\nAnswer: There are 4 patients.",
	}}
	app := newTestApp(t, router)

	status, body := postChat(t, app, `{"query":"How many patients are there?"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "How many patients are there?", router.lastQuery)
	assert.Equal(t, "There are 4 patients.", body["clean_answer"])
	assert.Equal(t, models.SQLToolName, body["tool"])
	assert.Equal(t, "SELECT COUNT(*) FROM patients", body["tool_details"])
	assert.Equal(t, "Source: Database\nAnswer: There are 4 patients.", body["raw_output"])
}

func TestChat_BadBody(t *testing.T) {
	app := newTestApp(t, &stubRouter{})

	status, body := postChat(t, app, `not json`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "invalid request")
}

func TestChat_EmptyQuery(t *testing.T) {
	app := newTestApp(t, &stubRouter{})

	status, _ := postChat(t, app, `{"query":""}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChat_DegradedWithoutAgent(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := postChat(t, app, `{"query":"hello"}`)

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "Agent not ready yet.", body["error"])
}

func TestChat_AgentErrorIs500(t *testing.T) {
	app := newTestApp(t, &stubRouter{err: errors.New("model unavailable")})

	status, body := postChat(t, app, `{"query":"hello"}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "model unavailable", body["error"])
}

func TestHealth_Healthy(t *testing.T) {
	app := newTestApp(t, &stubRouter{result: &agent.Result{}})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "unavailable", body["database"])
}

func TestHealth_DegradedWithoutAgent(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
}

func TestPages_Render(t *testing.T) {
	app := newTestApp(t, nil)

	for path, want := range map[string]string{
		"/":        "home",
		"/chatbot": "chatbot",
		"/about":   "about",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Contains(t, string(raw), want, path)
	}
}

func TestDebugDatabase_NoConnection(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/debug/database", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
