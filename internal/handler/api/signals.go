package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/execution"
	"TradeGate/internal/latency"
	"TradeGate/internal/repository"
	xhttp "TradeGate/pkg/http"
	xlogger "TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
)

// SignalsHandler exposes the ingestion and stats surface. It is thin on
// purpose: every business rule lives behind the inbound queue.
type SignalsHandler struct {
	logger   *xlogger.Logger
	inbound  *queue.Queue[*models.Signal]
	executor *execution.OrderExecutor
	monitor  *latency.Monitor
	outcomes *repository.OutcomeRepository // nil when ClickHouse is disabled
	now      func() time.Time
}

func NewSignalsHandler(logger *xlogger.Logger, inbound *queue.Queue[*models.Signal], executor *execution.OrderExecutor, monitor *latency.Monitor, outcomes *repository.OutcomeRepository) *SignalsHandler {
	return &SignalsHandler{
		logger:   logger,
		inbound:  inbound,
		executor: executor,
		monitor:  monitor,
		outcomes: outcomes,
		now:      time.Now,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/signals", h.Submit)
	g.GET("/execution/:symbol", h.ExecutionStats)
	g.GET("/latency/:operation", h.LatencyStats)
	g.GET("/outcomes/:symbol", h.Outcomes)
	e.GET("/healthz", h.Health)
}

// Submit enqueues one signal for validation. A full inbound queue means
// the pipeline is saturated; the caller gets a 503 and may retry.
func (h *SignalsHandler) Submit(c echo.Context) error {
	req := &models.SubmitSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	kind, err := models.ParseSignalKind(req.Kind)
	if err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}

	sig := &models.Signal{
		Symbol:        req.Symbol,
		Kind:          kind,
		Size:          req.Size,
		Timestamp:     req.Timestamp,
		EntryPrice:    req.EntryPrice,
		ExitPrice:     req.ExitPrice,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		ExpectedPrice: req.ExpectedPrice,
		Leverage:      req.Leverage,
		Region:        req.Region,
	}
	if sig.Timestamp == 0 {
		sig.Timestamp = h.now().Unix()
	}

	if err := h.inbound.TryPush(sig); err != nil {
		if errors.Is(err, queue.ErrFull) {
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, "pipeline saturated, retry later")
		}
		h.logger.Error("signal enqueue failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return xhttp.CreatedResponse(c, &models.SubmitSignalResponse{
		ID:     uuid.NewString(),
		Queued: true,
		Symbol: sig.Symbol,
	})
}

// ExecutionStats returns the persisted per-symbol execution counters.
func (h *SignalsHandler) ExecutionStats(c echo.Context) error {
	req := &models.ExecutionStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stats, err := h.executor.Stats(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("execution stats error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, stats)
}

// LatencyStats returns the cumulative latency view for one operation.
func (h *SignalsHandler) LatencyStats(c echo.Context) error {
	req := &models.LatencyStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stats, err := h.monitor.Stats(c.Request().Context(), req.Operation)
	if err != nil {
		h.logger.Error("latency stats error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, stats)
}

// Outcomes returns recent durable outcomes for a symbol from the audit
// table. Only available when ClickHouse is configured.
func (h *SignalsHandler) Outcomes(c echo.Context) error {
	if h.outcomes == nil {
		return xhttp.NotFoundResponse(c, "outcome audit not configured")
	}

	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	now := h.now()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 100)

	rows, err := h.outcomes.Query(c.Request().Context(), symbol, from, to, limit)
	if err != nil {
		h.logger.Error("outcome query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Health reports liveness and queue pressure.
func (h *SignalsHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":        "ok",
		"inbound_depth": h.inbound.Len(),
	})
}
