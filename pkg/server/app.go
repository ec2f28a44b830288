package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/usecase"
	pkgch "TradeGate/pkg/clickhouse"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	applogger "TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
	"TradeGate/pkg/store"
)

// App encapsulates the entire application lifecycle: the pipeline loops,
// the HTTP surface, and a drain-then-close shutdown.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	store      store.Store
	inbound    *queue.Queue[*models.Signal]
	orch       *usecase.Orchestrator
	exec       *usecase.ExecutionLogic
	collector  *usecase.SignalCollector
	audit      drepo.AuditSink
	chClient   *pkgch.Client
	httpServer *xhttp.Server
	handler    xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	st store.Store,
	inbound *queue.Queue[*models.Signal],
	orch *usecase.Orchestrator,
	exec *usecase.ExecutionLogic,
	collector *usecase.SignalCollector,
	audit drepo.AuditSink,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		inbound:   inbound,
		orch:      orch,
		exec:      exec,
		collector: collector,
		audit:     audit,
		chClient:  chClient,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pipeline loops. The execution loop exits when the orchestrator
	// closes its forward queue; the orchestrator exits when the inbound
	// queue closes.
	a.orch.Start(ctx)
	a.exec.Start(ctx)
	a.logger.Info("pipeline started",
		applogger.Int("inbound_capacity", a.inbound.Cap()))

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.logger.Error("collector error", applogger.Error(err))
			}
		}()
		a.logger.Info("collector started", applogger.Strings("symbols", a.cfg.Feed.Symbols))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops intake first, then lets the loops drain in order before
// closing infrastructure.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.logger.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	// Closing the inbound queue is the only stop signal the loops get.
	// The orchestrator drains, closes its forward queue, and the
	// execution loop drains in turn.
	a.inbound.Close()
	if err := a.orch.Wait(); err != nil {
		a.logger.Error("validation loop error", applogger.Error(err))
	}
	a.exec.Wait()

	if err := a.audit.Close(); err != nil {
		a.logger.Warn("audit close error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
