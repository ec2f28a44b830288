package usecase

import (
	"context"
	"sync"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/internal/execution"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
)

// ExecutionLogic drains the execution queue and runs each accepted signal
// through the pre-trade gates and the order executor. A signal that fails a
// gate is dropped; the loop never stops for a per-signal error.
type ExecutionLogic struct {
	queue    *queue.Queue[*models.Signal]
	risk     *execution.RiskFilters
	slippage *execution.SlippageController
	executor *execution.OrderExecutor
	audit    repository.AuditSink
	metrics  repository.Metrics
	logger   *logger.Logger

	wg sync.WaitGroup
}

// NewExecutionLogic wires the execution stage behind the execution queue.
func NewExecutionLogic(
	q *queue.Queue[*models.Signal],
	risk *execution.RiskFilters,
	slippage *execution.SlippageController,
	executor *execution.OrderExecutor,
	audit repository.AuditSink,
	metrics repository.Metrics,
	lgr *logger.Logger,
) *ExecutionLogic {
	return &ExecutionLogic{
		queue:    q,
		risk:     risk,
		slippage: slippage,
		executor: executor,
		audit:    audit,
		metrics:  metrics,
		logger:   lgr,
	}
}

// Start launches the single consumption loop. The loop exits when the
// execution queue is closed and drained, or when ctx is cancelled.
func (e *ExecutionLogic) Start(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(ctx)
	}()
}

// Wait blocks until the consumption loop has exited.
func (e *ExecutionLogic) Wait() {
	e.wg.Wait()
}

func (e *ExecutionLogic) run(ctx context.Context) {
	e.logger.Info("execution logic started")
	for {
		sig, ok := e.queue.Pop(ctx)
		if !ok {
			e.logger.Info("execution logic stopped")
			return
		}
		e.Process(ctx, sig)
	}
}

// Process runs one accepted signal through the risk filter, the slippage
// gate, and the order executor. It returns the outcome when the order was
// dispatched, nil when a pre-trade gate dropped the signal.
func (e *ExecutionLogic) Process(ctx context.Context, sig *models.Signal) *models.ExecutionOutcome {
	if err := e.risk.Apply(ctx, sig); err != nil {
		e.metrics.RecordError("risk_filter")
		e.logger.Warn("risk filter rejected order",
			logger.String("symbol", sig.Symbol), logger.Error(err))
		return nil
	}

	// The slippage gate compares the strategy's expected fill price against
	// the entry price the signal carries. When either is absent there is
	// nothing to compare and the gate is skipped.
	if sig.ExpectedPrice > 0 && sig.EntryPrice > 0 {
		if err := e.slippage.Check(ctx, sig.Symbol, sig.ExpectedPrice, sig.EntryPrice); err != nil {
			e.metrics.RecordError("slippage")
			e.logger.Warn("slippage gate rejected order",
				logger.String("symbol", sig.Symbol), logger.Error(err))
			return nil
		}
	}

	outcome, err := e.executor.Execute(ctx, sig)
	if err != nil {
		e.logger.Warn("execution failed",
			logger.String("symbol", sig.Symbol), logger.Error(err))
	}
	if outcome != nil {
		if auditErr := e.audit.AuditOutcome(ctx, outcome); auditErr != nil {
			e.logger.Warn("outcome audit failed",
				logger.String("symbol", sig.Symbol), logger.Error(auditErr))
		}
	}
	return outcome
}
