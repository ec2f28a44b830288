//go:build wireinject
// +build wireinject

package di

import (
	"TradeGate/internal/handler/api"
	"TradeGate/pkg/config"
	xhttp "TradeGate/pkg/http"
	"TradeGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideStore,
		ProvideClickHouseClient,
		ProvideOutcomeRepository,
		ProvideAuditSink,

		// Pipeline building blocks
		ProvideInboundQueue,
		ProvideRouter,
		ProvideMonitor,
		ProvideBroker,
		ProvideRiskFilters,
		ProvideSlippageController,
		ProvideOrderExecutor,

		// Use cases
		ProvideOrchestrator,
		ProvideExecutionLogic,
		ProvideSignalCollector,

		// HTTP surface
		ProvideHandler,
		wire.Bind(new(xhttp.Handler), new(*api.SignalsHandler)),

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
