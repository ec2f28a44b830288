package di

import (
	"context"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/execution"
	"TradeGate/internal/handler/api"
	"TradeGate/internal/latency"
	internalrepo "TradeGate/internal/repository"
	"TradeGate/internal/service/feed"
	"TradeGate/internal/usecase"
	"TradeGate/internal/validation"
	pkgch "TradeGate/pkg/clickhouse"
	"TradeGate/pkg/config"
	pkgkafka "TradeGate/pkg/kafka"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/queue"
	"TradeGate/pkg/server"
	"TradeGate/pkg/store"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideStore creates the Redis-backed shared state store.
func ProvideStore(cfg *config.Config) (store.Store, error) {
	st, err := store.NewRedisStore(
		store.WithAddr(cfg.Redis.Host, cfg.Redis.Port),
		store.WithPassword(cfg.Redis.Password),
		store.WithDB(cfg.Redis.DB),
		store.WithPool(cfg.Redis.PoolSize, cfg.Redis.PoolSize/2, 5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}
	return st, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideInboundQueue creates the validation inbound queue.
func ProvideInboundQueue(cfg *config.Config) *queue.Queue[*models.Signal] {
	return queue.New[*models.Signal](cfg.Pipeline.InboundQueueSize)
}

// ProvideRouter creates the admission chain with configured thresholds.
func ProvideRouter(cfg *config.Config, st store.Store) *validation.Router {
	return validation.NewRouter(validation.Config{
		AllowedRegions:     cfg.Validation.AllowedRegions,
		MaxTimestampDrift:  cfg.Validation.MaxTimestampDrift,
		MaxLeverage:        cfg.Validation.MaxLeverage,
		MaxExposure:        cfg.Validation.MaxExposure,
		MinStopLossRatio:   cfg.Validation.MinStopLossRatio,
		MaxTimeWindow:      cfg.Validation.MaxTimeWindow,
		MaxRiskReward:      cfg.Validation.MaxRiskReward,
		MinLiquidityRatio:  cfg.Validation.MinLiquidityRatio,
		MaxCommissionPct:   cfg.Validation.MaxCommissionPct,
		MaxSlippageBPS:     cfg.Validation.MaxSlippageBPS,
		MaxRecentSignals:   cfg.Validation.MaxRecentSignals,
		RecentHistoryDepth: cfg.Validation.RecentHistoryDepth,
	}, st)
}

// ProvideMonitor creates the latency monitor.
func ProvideMonitor(cfg *config.Config, st store.Store, rec drepo.Metrics, lgr *logger.Logger) *latency.Monitor {
	return latency.NewMonitor(latency.Config{
		Threshold: cfg.Latency.Threshold,
		StatsTTL:  cfg.Latency.StatsTTL,
	}, st, rec, lgr)
}

// ProvideBroker selects the execution capability. Without a configured
// endpoint orders go to the simulated broker.
func ProvideBroker(cfg *config.Config) drepo.Broker {
	if cfg.Broker.Endpoint != "" {
		return execution.NewWebhookBroker(cfg.Broker.Name, cfg.Broker.Endpoint, cfg.Broker.APIKey, cfg.Broker.Timeout)
	}
	return execution.NewSimBroker()
}

// ProvideRiskFilters creates the pre-trade risk gate.
func ProvideRiskFilters(cfg *config.Config, st store.Store) *execution.RiskFilters {
	return execution.NewRiskFilters(cfg.Execution.MaxOrderSize, cfg.Execution.MaxDailyLoss, st)
}

// ProvideSlippageController creates the pre-trade slippage gate.
func ProvideSlippageController(cfg *config.Config, st store.Store) *execution.SlippageController {
	return execution.NewSlippageController(cfg.Execution.MaxSlippageBPS, st)
}

// ProvideOrderExecutor creates the order executor.
func ProvideOrderExecutor(
	cfg *config.Config,
	broker drepo.Broker,
	monitor *latency.Monitor,
	st store.Store,
	m drepo.Metrics,
	lgr *logger.Logger,
) *execution.OrderExecutor {
	return execution.NewOrderExecutor(execution.ExecutorConfig{
		MaxOrderSize:  cfg.Execution.MaxOrderSize,
		OutcomeTTL:    cfg.Execution.OutcomeTTL,
		ErrorLogDepth: cfg.Execution.ErrorLogDepth,
	}, broker, monitor, st, m, lgr)
}

// ProvideAuditSink composes the configured audit sinks. With neither Kafka
// nor ClickHouse enabled the pipeline audits into a no-op.
func ProvideAuditSink(cfg *config.Config, outcomes *internalrepo.OutcomeRepository, lgr *logger.Logger) (drepo.AuditSink, error) {
	var sinks []drepo.AuditSink

	if cfg.Kafka.Enabled {
		publisher, err := pkgkafka.NewPublisher(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
			pkgkafka.WithAsync(cfg.Kafka.Async),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaAudit(publisher, cfg.Kafka.AuditTopic))
	}

	if outcomes != nil {
		sinks = append(sinks, internalrepo.NewClickHouseAudit(outcomes, cfg.ClickHouse.BatchSize, cfg.ClickHouse.FlushInterval, lgr))
	}

	if len(sinks) == 0 {
		return internalrepo.NopSink{}, nil
	}
	return internalrepo.NewMultiSink(sinks...), nil
}

// ProvideClickHouseClient creates a ClickHouse client when enabled; nil
// otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, 10*time.Second),
		pkgch.WithAsyncInsert(true, false),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideOutcomeRepository creates the durable outcome repository when
// ClickHouse is enabled; nil otherwise.
func ProvideOutcomeRepository(cfg *config.Config, chClient *pkgch.Client) (*internalrepo.OutcomeRepository, error) {
	if chClient == nil {
		return nil, nil
	}
	repo := internalrepo.NewOutcomeRepository(chClient.DB(), cfg.ClickHouse.Database+".execution_outcomes")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Init(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// ProvideOrchestrator wires the validation stage behind the inbound queue.
func ProvideOrchestrator(
	cfg *config.Config,
	router *validation.Router,
	inbound *queue.Queue[*models.Signal],
	st store.Store,
	audit drepo.AuditSink,
	m drepo.Metrics,
	lgr *logger.Logger,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(usecase.OrchestratorConfig{
		ExecutionQueueSize: cfg.Pipeline.ExecutionQueueSize,
		RecentHistoryDepth: cfg.Validation.RecentHistoryDepth,
		ErrorLogDepth:      cfg.Execution.ErrorLogDepth,
		ErrorLogTTL:        cfg.Execution.OutcomeTTL,
	}, router, inbound, st, audit, m, lgr)
}

// ProvideExecutionLogic wires the execution stage behind the orchestrator's
// forward queue.
func ProvideExecutionLogic(
	orch *usecase.Orchestrator,
	risk *execution.RiskFilters,
	slippage *execution.SlippageController,
	executor *execution.OrderExecutor,
	audit drepo.AuditSink,
	m drepo.Metrics,
	lgr *logger.Logger,
) *usecase.ExecutionLogic {
	return usecase.NewExecutionLogic(orch.Outbound(), risk, slippage, executor, audit, m, lgr)
}

// ProvideSignalCollector creates the feed collector when the feed is
// enabled; nil otherwise.
func ProvideSignalCollector(
	cfg *config.Config,
	inbound *queue.Queue[*models.Signal],
	m drepo.Metrics,
	lgr *logger.Logger,
) *usecase.SignalCollector {
	if !cfg.Feed.Enabled {
		return nil
	}
	stream := feed.New(
		cfg.Feed.Token,
		cfg.Feed.URL,
		cfg.Feed.Symbols,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
		lgr,
	)
	return usecase.NewSignalCollector(stream, inbound, cfg.Feed.MaxSignalsPerSec, m, lgr)
}

// ProvideHandler creates the ingestion and stats HTTP handler.
func ProvideHandler(
	lgr *logger.Logger,
	inbound *queue.Queue[*models.Signal],
	executor *execution.OrderExecutor,
	monitor *latency.Monitor,
	outcomes *internalrepo.OutcomeRepository,
) *api.SignalsHandler {
	return api.NewSignalsHandler(lgr, inbound, executor, monitor, outcomes)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	st store.Store,
	inbound *queue.Queue[*models.Signal],
	orch *usecase.Orchestrator,
	exec *usecase.ExecutionLogic,
	collector *usecase.SignalCollector,
	audit drepo.AuditSink,
	chClient *pkgch.Client,
	handler *api.SignalsHandler,
) *server.App {
	return server.New(cfg, lgr, st, inbound, orch, exec, collector, audit, chClient, handler)
}
