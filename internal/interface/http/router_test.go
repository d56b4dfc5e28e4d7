package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/iknowall-bot/internal/domain/bot"
	"github.com/yanqian/iknowall-bot/internal/domain/qa"
	"github.com/yanqian/iknowall-bot/internal/infra/config"
	tgiface "github.com/yanqian/iknowall-bot/internal/interface/telegram"
	apperrors "github.com/yanqian/iknowall-bot/pkg/errors"
)

func TestRouter_AskSuccess(t *testing.T) {
	svc := &stubQA{
		answerFn: func(ctx context.Context, req qa.Request) (qa.Response, error) {
			require.Equal(t, "Hello", req.Question)
			return qa.Response{Question: "Hello", Answer: "Wetin you want?", Found: true, Mode: qa.MatchModeExact}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/qa/ask", `{"question":"Hello"}`, nil, newRouterUnderTest(t, svc, nil, testConfig()))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got qa.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Wetin you want?", got.Answer)
	require.Equal(t, qa.MatchModeExact, got.Mode)
}

func TestRouter_AskInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/qa/ask", `{"question":123}`, nil, newRouterUnderTest(t, &stubQA{}, nil, testConfig()))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_AskInvalidInput(t *testing.T) {
	svc := &stubQA{
		answerFn: func(context.Context, qa.Request) (qa.Response, error) {
			return qa.Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/qa/ask", `{"question":""}`, nil, newRouterUnderTest(t, svc, nil, testConfig()))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "question cannot be empty")
}

func TestRouter_RefreshRequiresAdminToken(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AdminToken = "s3cret"
	svc := &stubQA{status: qa.Status{Entries: 2, Loaded: true}}
	server := newRouterUnderTest(t, svc, nil, cfg)

	recorder := performRequest(http.MethodPost, "/api/v1/qa/refresh", "", nil, server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/qa/refresh", "", map[string]string{adminTokenHeader: "nope"}, server)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Equal(t, 0, svc.refreshCalls)

	recorder = performRequest(http.MethodPost, "/api/v1/qa/refresh", "", map[string]string{"Authorization": "Bearer s3cret"}, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 1, svc.refreshCalls)

	var status qa.Status
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &status))
	require.Equal(t, 2, status.Entries)
}

func TestRouter_RefreshFetchFailure(t *testing.T) {
	svc := &stubQA{
		status:     qa.Status{Entries: 2, Loaded: true, LastError: "docs down"},
		refreshErr: apperrors.Wrap(apperrors.CodeFetch, "document fetch failed", io.ErrUnexpectedEOF),
	}

	recorder := performRequest(http.MethodPost, "/api/v1/qa/refresh", "", nil, newRouterUnderTest(t, svc, nil, testConfig()))
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	var body struct {
		Error  map[string]string `json:"error"`
		Status qa.Status         `json:"status"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, apperrors.CodeFetch, body.Error["code"])
	require.Equal(t, "docs down", body.Status.LastError)
}

func TestRouter_MissesRejectsBadLimit(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/v1/qa/misses?limit=abc", "", nil, newRouterUnderTest(t, &stubQA{}, nil, testConfig()))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_TrendingAndHealth(t *testing.T) {
	svc := &stubQA{
		trending: []qa.TrendingQuery{{Query: "hello", Count: 3}},
		status:   qa.Status{Loaded: true},
	}
	server := newRouterUnderTest(t, svc, nil, testConfig())

	recorder := performRequest(http.MethodGet, "/api/v1/qa/trending", "", nil, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"recommendations":[{"query":"hello","count":3}]}`, recorder.Body.String())

	recorder = performRequest(http.MethodGet, "/healthz", "", nil, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok","loaded":true}`, recorder.Body.String())
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := newRouterUnderTest(t, &stubQA{}, nil, cfg)

	recorder := performRequest(http.MethodGet, "/api/v1/qa/status", "", nil, server)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(http.MethodGet, "/api/v1/qa/status", "", nil, server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://dash.example.com"}
	recorder := performRequest(http.MethodOptions, "/api/v1/qa/ask", "", map[string]string{"Origin": "https://dash.example.com"}, newRouterUnderTest(t, &stubQA{}, nil, cfg))
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "https://dash.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_WebhookDispatchesUpdate(t *testing.T) {
	sender := &stubSender{}
	dispatcher := tgiface.NewDispatcher(&stubBot{}, sender, newTestLogger())
	webhook := NewWebhookHandler(dispatcher, "hook-secret", newTestLogger())
	server := newRouterUnderTest(t, &stubQA{}, webhook, testConfig())
	update := `{"update_id":1,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"from":{"id":9},"text":"hello"}}`

	recorder := performRequest(http.MethodPost, "/telegram/webhook/wrong", update, nil, server)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Empty(t, sender.texts)

	recorder = performRequest(http.MethodPost, "/telegram/webhook/hook-secret", update, map[string]string{telegramSecretHeader: "bad"}, server)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = performRequest(http.MethodPost, "/telegram/webhook/hook-secret", update, map[string]string{telegramSecretHeader: "hook-secret"}, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, []string{"reply to hello"}, sender.texts)
}

func TestRouter_WebhookAcknowledgesSendFailure(t *testing.T) {
	dispatcher := tgiface.NewDispatcher(&stubBot{}, &stubSender{err: io.ErrClosedPipe}, newTestLogger())
	webhook := NewWebhookHandler(dispatcher, "hook-secret", newTestLogger())
	update := `{"update_id":1,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"hello"}}`

	recorder := performRequest(http.MethodPost, "/telegram/webhook/hook-secret", update, nil, newRouterUnderTest(t, &stubQA{}, webhook, testConfig()))
	require.Equal(t, http.StatusOK, recorder.Code)
}

func performRequest(method, path, body string, headers map[string]string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc qa.Service, webhook *WebhookHandler, cfg *config.Config) *http.Server {
	t.Helper()
	return NewRouter(cfg, NewHandler(svc, newTestLogger()), webhook, newTestLogger())
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubQA struct {
	answerFn     func(ctx context.Context, req qa.Request) (qa.Response, error)
	trending     []qa.TrendingQuery
	status       qa.Status
	refreshErr   error
	refreshCalls int
}

func (s *stubQA) Answer(ctx context.Context, req qa.Request) (qa.Response, error) {
	if s.answerFn != nil {
		return s.answerFn(ctx, req)
	}
	return qa.Response{}, nil
}

func (s *stubQA) Trending(context.Context) ([]qa.TrendingQuery, error) {
	return s.trending, nil
}

func (s *stubQA) Misses(context.Context, int) ([]qa.MissedQuery, error) {
	return nil, nil
}

func (s *stubQA) Refresh(context.Context) (qa.Status, error) {
	s.refreshCalls++
	return s.status, s.refreshErr
}

func (s *stubQA) Status(context.Context) qa.Status {
	return s.status
}

type stubBot struct{}

func (stubBot) Handle(_ context.Context, msg bot.Message) (bot.Reply, bool) {
	return bot.Reply{ChatID: msg.ChatID, Text: "reply to " + msg.Text}, true
}

type stubSender struct {
	texts []string
	err   error
}

func (s *stubSender) SendMessage(_ context.Context, _ int64, text string) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return nil
}
