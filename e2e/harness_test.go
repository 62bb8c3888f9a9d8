package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notify_hub/internal/auth"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
	httpserver "notify_hub/internal/http"
	"notify_hub/internal/http/controller"
	"notify_hub/internal/metrics"
	"notify_hub/internal/queue"
	"notify_hub/internal/queue/rabbitmq"
	"notify_hub/internal/service/notify"
	"notify_hub/internal/store/memory"
	"notify_hub/internal/ws"
)

const e2eSecret = "e2e-secret"

type harness struct {
	cfg      *config.Config
	server   *httptest.Server
	registry *ws.Registry
	store    *memory.Store
	svc      *notify.Service
}

func baseConfig() *config.Config {
	return &config.Config{
		HTTPAddr:            ":0",
		JWTSecret:           e2eSecret,
		JWTAlgorithm:        "HS256",
		WSWriteTimeout:      time.Second,
		ListLimit:           5,
		RabbitPublishPrefix: "notification",
		OTELServiceName:     "notify-hub-e2e",
	}
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	m := metrics.New()
	validator := auth.NewJWTValidator(cfg)
	store := memory.New(logger)
	counter := notify.NewCounter(store, logger)
	registry := ws.NewRegistry(validator, counter, m, logger)
	svc := notify.NewService(store, counter, registry, m, logger)
	var publisher queue.Publisher = rabbitmq.NewPublisher(cfg, logger)
	handler := controller.NewHandler(cfg, svc, registry, ws.NewUpgrader(cfg), logger, publisher)
	router := httpserver.NewRouter(cfg, handler, validator, m, logger)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		registry.CloseAll()
		server.Close()
	})
	return &harness{cfg: cfg, server: server, registry: registry, store: store, svc: svc}
}

func (h *harness) token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := auth.IssueToken(e2eSecret, userID, userID, time.Hour)
	require.NoError(t, err)
	return signed
}

func (h *harness) dial(t *testing.T, credential string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws"
	dialer := websocket.Dialer{Subprotocols: []string{credential}, HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (h *harness) post(t *testing.T, path, userID string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token(t, userID))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (h *harness) get(t *testing.T, path, userID string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+h.token(t, userID))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.NewDecoder(res.Body).Decode(out))
}

func readFrame(t *testing.T, conn *websocket.Conn) domain.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env domain.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// waitConnections polls until the registry reports n live connections for
// userID; registration finishes after the client sees the handshake.
func waitConnections(t *testing.T, registry *ws.Registry, userID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(registry.Connections(userID)) == n
	}, 2*time.Second, 10*time.Millisecond)
}
