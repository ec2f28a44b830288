package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/execution"
	"TradeGate/internal/latency"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/queue"
	"TradeGate/pkg/store"
)

type handlerFixture struct {
	handler *SignalsHandler
	echo    *echo.Echo
	store   *store.MemoryStore
	inbound *queue.Queue[*models.Signal]
}

func newHandlerFixture(t *testing.T, queueSize int) *handlerFixture {
	t.Helper()
	st := store.NewMemoryStore()
	lgr := logger.Nop()
	monitor := latency.NewMonitor(latency.Config{Threshold: time.Minute}, st, metrics.Nop(), lgr)
	executor := execution.NewOrderExecutor(execution.ExecutorConfig{}, &execution.SimBroker{}, monitor, st, metrics.Nop(), lgr)
	inbound := queue.New[*models.Signal](queueSize)

	h := NewSignalsHandler(lgr, inbound, executor, monitor, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return &handlerFixture{handler: h, echo: e, store: st, inbound: inbound}
}

func (f *handlerFixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestSubmitSignal(t *testing.T) {
	f := newHandlerFixture(t, 8)

	rec := f.do(http.MethodPost, "/api/signals",
		`{"symbol":"BTCUSD","kind":"BUY","size":1,"entry_price":100}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":201`)
	assert.Contains(t, rec.Body.String(), `"queued":true`)
	assert.Contains(t, rec.Body.String(), `"symbol":"BTCUSD"`)

	sig, ok := f.inbound.Pop(context.Background())
	require.True(t, ok)
	assert.Equal(t, "BTCUSD", sig.Symbol)
	assert.Equal(t, models.Buy, sig.Kind)
	assert.NotZero(t, sig.Timestamp, "missing timestamp defaults to submission time")
}

func TestSubmitSignalValidation(t *testing.T) {
	f := newHandlerFixture(t, 8)

	cases := []struct {
		name string
		body string
	}{
		{"missing symbol", `{"kind":"BUY","size":1}`},
		{"unknown kind", `{"symbol":"BTCUSD","kind":"HOLD","size":1}`},
		{"non-positive size", `{"symbol":"BTCUSD","kind":"BUY","size":0}`},
		{"malformed json", `{"symbol":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/signals", tc.body)
			assert.Contains(t, rec.Body.String(), `"status":400`)
			assert.Zero(t, f.inbound.Len())
		})
	}
}

func TestSubmitSignalSaturation(t *testing.T) {
	f := newHandlerFixture(t, 1)
	body := `{"symbol":"BTCUSD","kind":"BUY","size":1}`

	first := f.do(http.MethodPost, "/api/signals", body)
	require.Contains(t, first.Body.String(), `"status":201`)

	second := f.do(http.MethodPost, "/api/signals", body)
	assert.Contains(t, second.Body.String(), `"status":503`)
	assert.Contains(t, second.Body.String(), "pipeline saturated")
}

func TestExecutionStatsEndpoint(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t, 8)
	require.NoError(t, f.store.SetWithTTL(ctx, models.KeyExecSuccess("BTCUSD"), store.FormatInt(4), 0))
	require.NoError(t, f.store.SetWithTTL(ctx, models.KeyExecFailures("BTCUSD"), store.FormatInt(1), 0))

	rec := f.do(http.MethodGet, "/api/execution/BTCUSD", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success_count":4`)
	assert.Contains(t, rec.Body.String(), `"success_rate":80`)
}

func TestLatencyStatsEndpoint(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFixture(t, 8)
	require.NoError(t, f.store.SetWithTTL(ctx, models.KeyLatencyCount("order_execution"), store.FormatInt(2), 0))
	require.NoError(t, f.store.SetWithTTL(ctx, models.KeyLatencySum("order_execution"), store.FormatFloat(30), 0))

	rec := f.do(http.MethodGet, "/api/latency/order_execution", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.Contains(t, rec.Body.String(), `"avg_ms":15`)
}

func TestOutcomesEndpointUnconfigured(t *testing.T) {
	f := newHandlerFixture(t, 8)
	rec := f.do(http.MethodGet, "/api/outcomes/BTCUSD", "")
	assert.Contains(t, rec.Body.String(), `"status":404`)
}

func TestHealthEndpoint(t *testing.T) {
	f := newHandlerFixture(t, 8)
	require.NoError(t, f.inbound.TryPush(&models.Signal{Symbol: "BTCUSD"}))

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"inbound_depth":1`)
}
