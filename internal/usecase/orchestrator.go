package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/internal/validation"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
	"TradeGate/pkg/store"
)

// OrchestratorConfig bounds the orchestrator's bookkeeping writes and its
// forward queue.
type OrchestratorConfig struct {
	ExecutionQueueSize int
	RecentHistoryDepth int
	ErrorLogDepth      int
	ErrorLogTTL        time.Duration
}

func (c OrchestratorConfig) withDefaults() OrchestratorConfig {
	if c.ExecutionQueueSize == 0 {
		c.ExecutionQueueSize = 256
	}
	if c.RecentHistoryDepth == 0 {
		c.RecentHistoryDepth = 50
	}
	if c.ErrorLogDepth == 0 {
		c.ErrorLogDepth = 1000
	}
	if c.ErrorLogTTL == 0 {
		c.ErrorLogTTL = 24 * time.Hour
	}
	return c
}

// Orchestrator drains the inbound queue, runs every signal through the
// admission chain exactly once, and forwards accepted signals to the
// execution queue. It owns the post-verdict bookkeeping: verdict publishing,
// rejection logging, and the recent-signal history that the duplicate and
// consistency checks read.
type Orchestrator struct {
	cfg      OrchestratorConfig
	router   *validation.Router
	inbound  *queue.Queue[*models.Signal]
	outbound *queue.Queue[*models.Signal]
	store    store.Store
	audit    repository.AuditSink
	metrics  repository.Metrics
	logger   *logger.Logger

	wg     sync.WaitGroup
	runErr error
}

// NewOrchestrator wires the validation stage behind the inbound queue. The
// orchestrator owns its forward queue; Outbound exposes it to the
// execution stage.
func NewOrchestrator(
	cfg OrchestratorConfig,
	router *validation.Router,
	inbound *queue.Queue[*models.Signal],
	st store.Store,
	audit repository.AuditSink,
	metrics repository.Metrics,
	lgr *logger.Logger,
) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		cfg:      cfg,
		router:   router,
		inbound:  inbound,
		outbound: queue.New[*models.Signal](cfg.ExecutionQueueSize),
		store:    st,
		audit:    audit,
		metrics:  metrics,
		logger:   lgr,
	}
}

// Outbound returns the queue accepted signals are forwarded on.
func (o *Orchestrator) Outbound() *queue.Queue[*models.Signal] {
	return o.outbound
}

// Start launches the single consumption loop. The loop exits when the
// inbound queue is closed and drained, or when ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(ctx)
	}()
}

// Wait blocks until the consumption loop has exited. It returns the error
// that halted the loop, if any.
func (o *Orchestrator) Wait() error {
	o.wg.Wait()
	return o.runErr
}

func (o *Orchestrator) run(ctx context.Context) {
	o.logger.Info("validation orchestrator started")
	for {
		sig, ok := o.inbound.Pop(ctx)
		if !ok {
			o.logger.Info("validation orchestrator stopped")
			o.outbound.Close()
			return
		}
		o.metrics.RecordQueueDepth("inbound", o.inbound.Len())
		if _, err := o.Process(ctx, sig); err != nil {
			o.runErr = err
			o.logger.Error("validation orchestrator halted", logger.Error(err))
			o.outbound.Close()
			return
		}
	}
}

// Process validates one signal and applies the verdict. It is exported so
// the HTTP layer can run synchronous submissions through the exact same
// path as the feed. A non-nil error means an accepted signal could not be
// forwarded to the execution queue; the returned verdict then carries a
// rejected status so callers never report a dropped signal as admitted.
func (o *Orchestrator) Process(ctx context.Context, sig *models.Signal) (*models.ValidationVerdict, error) {
	verdict := o.router.Validate(ctx, sig)

	var forwardErr error
	if verdict.Accepted() {
		o.recordHistory(ctx, sig)
		if err := o.outbound.Push(ctx, sig); err != nil {
			o.metrics.RecordError("forward_failed")
			forwardErr = fmt.Errorf("forward signal for %s: %w", sig.Symbol, err)
			verdict.Details["forward"] = false
			verdict = models.RejectedVerdict("Forwarding failed: "+err.Error(), verdict.Details)
		} else {
			o.metrics.RecordQueueDepth("execution", o.outbound.Len())
		}
	}

	o.publishVerdict(ctx, sig, verdict)
	o.metrics.RecordVerdict(string(verdict.Status), failedCheck(verdict))
	if err := o.audit.AuditVerdict(ctx, sig, verdict); err != nil {
		o.logger.Warn("verdict audit failed",
			logger.String("symbol", sig.Symbol), logger.Error(err))
	}

	if !verdict.Accepted() {
		o.recordRejection(ctx, sig, verdict)
		return verdict, forwardErr
	}

	o.logger.Debug("signal accepted",
		logger.String("symbol", sig.Symbol),
		logger.String("kind", string(sig.Kind)))
	return verdict, nil
}

// publishVerdict pushes every verdict onto the validation output channel.
// Delivery is fire-and-forget: subscribers may or may not exist.
func (o *Orchestrator) publishVerdict(ctx context.Context, sig *models.Signal, verdict *models.ValidationVerdict) {
	payload, _ := json.Marshal(map[string]interface{}{
		"symbol":  sig.Symbol,
		"kind":    sig.Kind,
		"size":    sig.Size,
		"status":  verdict.Status,
		"reason":  verdict.Reason,
		"details": verdict.Details,
	})
	if err := o.store.Publish(ctx, models.ChannelValidationOutput, string(payload)); err != nil {
		o.logger.Warn("verdict publish failed", logger.Error(err))
	}
}

// recordHistory appends the accepted signal's fingerprint to the bounded
// per-symbol history. The strategy duplicate check and the consistency
// queue-depth check both read this list.
func (o *Orchestrator) recordHistory(ctx context.Context, sig *models.Signal) {
	key := models.KeyRecentSignals(sig.Symbol)
	if err := o.store.ListPush(ctx, key, sig.Fingerprint()); err != nil {
		o.logger.Warn("history append failed",
			logger.String("symbol", sig.Symbol), logger.Error(err))
		return
	}
	_ = o.store.ListTrim(ctx, key, 0, int64(o.cfg.RecentHistoryDepth)-1)
}

func (o *Orchestrator) recordRejection(ctx context.Context, sig *models.Signal, verdict *models.ValidationVerdict) {
	o.logger.Info("signal rejected",
		logger.String("symbol", sig.Symbol),
		logger.String("reason", verdict.Reason))

	entry, _ := json.Marshal(map[string]interface{}{
		"symbol":    sig.Symbol,
		"kind":      sig.Kind,
		"size":      sig.Size,
		"reason":    verdict.Reason,
		"timestamp": time.Now().Unix(),
	})
	if err := o.store.ListPush(ctx, models.KeyValidationErrors, string(entry)); err != nil {
		o.logger.Warn("rejection log append failed", logger.Error(err))
		return
	}
	_ = o.store.ListTrim(ctx, models.KeyValidationErrors, 0, int64(o.cfg.ErrorLogDepth)-1)
	_ = o.store.Expire(ctx, models.KeyValidationErrors, o.cfg.ErrorLogTTL)
}

// failedCheck names the check a rejection stopped at, or "none" for a valid
// verdict.
func failedCheck(verdict *models.ValidationVerdict) string {
	if verdict.Accepted() {
		return "none"
	}
	for name, passed := range verdict.Details {
		if !passed {
			return name
		}
	}
	return "unknown"
}
