package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagautam-dev/aws-telegram-bot/cmd/bot/config"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/commands"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/events"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/secret"
)

const testJWTSecret = "api-test-secret"

// newTestService creates an ApiService over a small in-memory registry.
func newTestService(t *testing.T, jwtSecret string) *ApiService {
	t.Helper()

	reg, err := commands.NewRegistry(
		commands.Command{
			Name:        "dynamo",
			Args:        []string{"<table_name>"},
			Description: "Create a DynamoDB table",
			Failure:     "Failed to create DynamoDB table.",
			Handler: func(_ context.Context, args []string) ([]replies.Reply, error) {
				if args[0] == "taken" {
					return nil, &gateway.ProviderError{Op: "CreateTable", Code: "ResourceInUseException", Err: errors.New("exists")}
				}
				return []replies.Reply{replies.Text{Body: `DynamoDB table "` + args[0] + `" created.`}}, nil
			},
		},
		commands.Command{
			Name:        "create_keypair",
			Args:        []string{"<key_name>"},
			Description: "Create a new key pair and download it",
			Failure:     "Failed to create key pair.",
			Handler: func(_ context.Context, args []string) ([]replies.Reply, error) {
				buf, err := secret.NewFromBytes([]byte("PEM"))
				if err != nil {
					return nil, err
				}
				return []replies.Reply{
					replies.File{Name: args[0] + ".pem", Data: buf},
					replies.Text{Body: "done"},
				}, nil
			},
		},
	)
	require.NoError(t, err)

	hub := events.NewHub(0, nil)
	return New(&config.Config{JwtSecret: jwtSecret}, commands.NewDispatcher(reg, commands.WithObserver(hub)), hub, nil)
}

func newTestServer(t *testing.T, jwtSecret string) *httptest.Server {
	t.Helper()
	srv, _ := newTestServerWithService(t, jwtSecret)
	return srv
}

func newTestServerWithService(t *testing.T, jwtSecret string) (*httptest.Server, *ApiService) {
	t.Helper()
	s := newTestService(t, jwtSecret)
	handler, err := NewRouter(s, RouterOptions{})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, s
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "tester",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, method, url, auth, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthAndSpec(t *testing.T) {
	srv := newTestServer(t, "")

	resp := do(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))

	resp = do(t, http.MethodGet, srv.URL+"/spec.json", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	spec := decode[map[string]any](t, resp)
	assert.Equal(t, "3.0.3", spec["openapi"])

	resp = do(t, http.MethodGet, srv.URL+"/spec.yaml", "", "")
	assert.Equal(t, "application/vnd.oai.openapi", resp.Header.Get("Content-Type"))
}

func TestCommandAPIDisabledWithoutSecret(t *testing.T) {
	srv := newTestServer(t, "")

	resp := do(t, http.MethodGet, srv.URL+"/v1/commands", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommandAPIRequiresToken(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	resp := do(t, http.MethodPost, srv.URL+"/v1/commands", "", `{"command":"dynamo","args":["users"]}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListCommands(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	resp := do(t, http.MethodGet, srv.URL+"/v1/commands", bearer(t), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	infos := decode[[]CommandInfo](t, resp)
	require.Len(t, infos, 2)
	assert.Equal(t, CommandInfo{Name: "dynamo", Usage: "Usage: /dynamo <table_name>", Description: "Create a DynamoDB table"}, infos[0])
}

func TestRunCommand(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	tests := []struct {
		name        string
		body        string
		wantFailure string
		wantText    string
	}{
		{"success", `{"command":"dynamo","args":["users"]}`, "none", `DynamoDB table "users" created.`},
		{"usage", `{"command":"dynamo"}`, "usage", "Usage: /dynamo <table_name>"},
		{"provider failure", `{"command":"dynamo","args":["taken"]}`, "provider", "Failed to create DynamoDB table."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/commands", bearer(t), tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			out := decode[RunCommandResponse](t, resp)
			assert.Equal(t, "dynamo", out.Command)
			assert.NotEmpty(t, out.ID)
			assert.Equal(t, tt.wantFailure, out.Failure)
			require.Len(t, out.Replies, 1)
			assert.Equal(t, replies.KindText, out.Replies[0].Kind)
			assert.Equal(t, tt.wantText, out.Replies[0].Text)
		})
	}
}

func TestRunCommandReturnsFiles(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	resp := do(t, http.MethodPost, srv.URL+"/v1/commands", bearer(t), `{"command":"create_keypair","args":["deploy"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[RunCommandResponse](t, resp)
	require.Len(t, out.Replies, 2)
	assert.Equal(t, replies.KindFile, out.Replies[0].Kind)
	assert.Equal(t, "deploy.pem", out.Replies[0].Name)
	assert.Equal(t, []byte("PEM"), out.Replies[0].Data)
	assert.Equal(t, "done", out.Replies[1].Text)
}

func TestRunCommandUnknown(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	resp := do(t, http.MethodPost, srv.URL+"/v1/commands", bearer(t), `{"command":"reboot","args":["i-1"]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "unknown_command", decode[map[string]string](t, resp)["code"])
}

func TestRunCommandRejectsInvalidBody(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	for _, body := range []string{`{"args":["x"]}`, `{"command":"/dynamo"}`, `{"command":"dynamo","extra":1}`} {
		resp := do(t, http.MethodPost, srv.URL+"/v1/commands", bearer(t), body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestWebhookMounted(t *testing.T) {
	called := false
	handler, err := NewRouter(newTestService(t, ""), RouterOptions{
		Webhook: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		}),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook/abc", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestStreamEvents(t *testing.T) {
	srv, s := newTestServerWithService(t, testJWTSecret)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	header := http.Header{"Authorization": []string{bearer(t)}}
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer ws.Close()

	require.Eventually(t, func() bool { return s.Events.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	run := do(t, http.MethodPost, srv.URL+"/v1/commands", bearer(t), `{"command":"dynamo","args":["orders"]}`)
	run.Body.Close()
	require.Equal(t, http.StatusOK, run.StatusCode)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.CommandEvent
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, "dynamo", ev.Command)
	assert.Equal(t, "replied", ev.State)
	assert.Equal(t, "none", ev.Failure)
	assert.Equal(t, 1, ev.Delivered)
}

func TestStreamEventsRequiresToken(t *testing.T) {
	srv := newTestServer(t, testJWTSecret)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
