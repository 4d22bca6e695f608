package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/dispatch"
	"github.com/officedhq/officed/internal/domain"
	"github.com/officedhq/officed/internal/llm"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/office"
	"github.com/officedhq/officed/internal/roster"
	"github.com/officedhq/officed/internal/store"
)

type testEnv struct {
	server  *httptest.Server
	office  *office.Office
	threads store.Threads
	token   string
}

func newTestEnv(t *testing.T, mock llm.Client, token string) *testEnv {
	t.Helper()
	log := logging.Silent()
	ros, err := roster.Load("")
	require.NoError(t, err)

	reg := llm.NewRegistry(log)
	if mock != nil {
		reg.Register("mock", mock)
		reg.SetFallback("mock")
	} else {
		reg.Register("offline", llm.NewOfflineClient())
		reg.SetFallback("offline")
	}
	d := dispatch.New(reg, ros, nil, log)

	threads := store.NewMemoryThreads()
	plans := store.NewMemoryPlans()
	feed := store.NewMemoryFeed()

	o := office.New(ros, d, threads, plans, feed, nil, office.WatcherConfig{
		RecentMessages: 4,
		RecentTurns:    6,
	}, office.Options{}, log)

	cfg := config.GatewayConfig{Port: 0, Bind: "loopback"}
	cfg.Auth.Token = token
	s := New(cfg, o, ros, threads, plans, feed, log)

	env := &testEnv{
		server:  httptest.NewServer(s.Handler()),
		office:  o,
		threads: threads,
		token:   token,
	}
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth_NoAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil, "sekrit")

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	env := newTestEnv(t, nil, "sekrit")

	resp, err := http.Get(env.server.URL + "/api/threads")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_ValidTokenAccepted(t *testing.T) {
	env := newTestEnv(t, nil, "sekrit")

	resp := env.do(t, http.MethodGet, "/api/threads", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestThreads_CreateAndGet(t *testing.T) {
	env := newTestEnv(t, nil, "")

	resp := env.do(t, http.MethodPost, "/api/threads", map[string]any{
		"title": "Launch prep",
		"goals": []string{"beta"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Thread](t, resp)

	resp = env.do(t, http.MethodGet, "/api/threads/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[struct {
		Thread domain.Thread `json:"thread"`
		Phase  string        `json:"phase"`
	}](t, resp)
	assert.Equal(t, "Launch prep", got.Thread.Title)
	assert.Equal(t, "idle", got.Phase)
}

func TestThreads_CreateRequiresTitle(t *testing.T) {
	env := newTestEnv(t, nil, "")

	resp := env.do(t, http.MethodPost, "/api/threads", map[string]any{"title": "  "})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkflow_OfflineRunSucceeds(t *testing.T) {
	env := newTestEnv(t, nil, "")

	thread, err := env.threads.Create("t", "", nil)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/threads/"+thread.ID+"/workflow", map[string]any{
		"directive": "Launch a beta",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[domain.Report](t, resp)
	assert.Contains(t, report.Body, "Launch a beta")
}

func TestWorkflow_EmptyDirectiveIsBadRequest(t *testing.T) {
	env := newTestEnv(t, nil, "")

	thread, err := env.threads.Create("t", "", nil)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/threads/"+thread.ID+"/workflow", map[string]any{
		"directive": "",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkflow_ReentrantStartIsConflict(t *testing.T) {
	release := make(chan struct{})
	blocking := &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			<-release
			return &llm.CompletionResponse{Text: "note"}, nil
		},
	}
	env := newTestEnv(t, blocking, "")

	thread, err := env.threads.Create("t", "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp := env.do(t, http.MethodPost, "/api/threads/"+thread.ID+"/workflow", map[string]any{
			"directive": "first run",
		})
		resp.Body.Close()
	}()

	require.Eventually(t, func() bool {
		return env.office.WorkflowRunning(thread.ID)
	}, time.Second, time.Millisecond)

	resp := env.do(t, http.MethodPost, "/api/threads/"+thread.ID+"/workflow", map[string]any{
		"directive": "second run",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(release)
	wg.Wait()
}

func TestChat_RepliesAndPlans(t *testing.T) {
	env := newTestEnv(t, nil, "")

	thread, err := env.threads.Create("t", "", nil)
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/api/threads/"+thread.ID+"/chat", map[string]any{
		"body":    "status?",
		"targets": []string{"engineering"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replies := decode[[]domain.ChatMessage](t, resp)
	require.Len(t, replies, 1)
	assert.Equal(t, "engineering", replies[0].SenderID)

	resp = env.do(t, http.MethodGet, "/api/threads/"+thread.ID+"/plans", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plans := decode[[]domain.ActionPlan](t, resp)
	require.Len(t, plans, 1)
	assert.Equal(t, domain.PlanSourceManual, plans[0].Source)
}

func TestWS_BroadcastsPhaseEvents(t *testing.T) {
	env := newTestEnv(t, nil, "")

	thread, err := env.threads.Create("t", "", nil)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = env.office.StartWorkflow(context.Background(), thread.ID, "Launch a beta", nil)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev office.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, office.EventPhaseChanged, ev.Type)
	assert.Equal(t, thread.ID, ev.ThreadID)
}

func TestRoster_Listed(t *testing.T) {
	env := newTestEnv(t, nil, "")

	resp := env.do(t, http.MethodGet, "/api/roster", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	agents := decode[[]domain.Agent](t, resp)
	assert.NotEmpty(t, agents)
}
