package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`
	Pipeline struct {
		InboundQueueSize   int `yaml:"inbound_queue_size"`
		ExecutionQueueSize int `yaml:"execution_queue_size"`
	} `yaml:"pipeline"`
	Validation struct {
		AllowedRegions     []string      `yaml:"allowed_regions"`
		MaxTimestampDrift  time.Duration `yaml:"max_timestamp_drift"`
		MaxLeverage        float64       `yaml:"max_leverage"`
		MaxExposure        float64       `yaml:"max_exposure"`
		MinStopLossRatio   float64       `yaml:"min_stop_loss_ratio"`
		MaxTimeWindow      time.Duration `yaml:"max_time_window"`
		MaxRiskReward      float64       `yaml:"max_risk_reward_ratio"`
		MinLiquidityRatio  float64       `yaml:"min_liquidity_ratio"`
		MaxCommissionPct   float64       `yaml:"max_commission_pct"`
		MaxSlippageBPS     float64       `yaml:"max_slippage_bps"`
		MaxRecentSignals   int           `yaml:"max_recent_signals"`
		RecentHistoryDepth int           `yaml:"recent_history_depth"`
	} `yaml:"validation"`
	Execution struct {
		MaxOrderSize   float64       `yaml:"max_order_size"`
		MaxDailyLoss   float64       `yaml:"max_daily_loss"`
		MaxSlippageBPS float64       `yaml:"max_slippage_bps"`
		OutcomeTTL     time.Duration `yaml:"outcome_ttl"`
		ErrorLogDepth  int           `yaml:"error_log_depth"`
	} `yaml:"execution"`
	Latency struct {
		Threshold time.Duration `yaml:"threshold"`
		StatsTTL  time.Duration `yaml:"stats_ttl"`
	} `yaml:"latency"`
	Broker struct {
		Name     string        `yaml:"name"`
		Endpoint string        `yaml:"endpoint"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"broker"`
	Feed struct {
		Enabled          bool          `yaml:"enabled"`
		URL              string        `yaml:"url"`
		Token            string        `yaml:"token"`
		Symbols          []string      `yaml:"symbols"`
		ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
		PingInterval     time.Duration `yaml:"ping_interval"`
		MaxSignalsPerSec float64       `yaml:"max_signals_per_sec"`
	} `yaml:"feed"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		AuditTopic   string        `yaml:"audit_topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		Async        bool          `yaml:"async"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled       bool          `yaml:"enabled"`
		Host          string        `yaml:"host"`
		Port          int           `yaml:"port"`
		Database      string        `yaml:"database"`
		User          string        `yaml:"user"`
		Password      string        `yaml:"password"`
		DialTimeout   time.Duration `yaml:"dial_timeout"`
		FlushInterval time.Duration `yaml:"flush_interval"`
		BatchSize     int           `yaml:"batch_size"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = p
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FEED_TOKEN"); v != "" {
		c.Feed.Token = v
	}
	if v := os.Getenv("BROKER_API_KEY"); v != "" {
		c.Broker.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Feed.Symbols = strings.Split(v, ",")
	}

	return c, nil
}

// applyDefaults fills unset options with their documented defaults; absence
// of a key never fails.
func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Pipeline.InboundQueueSize == 0 {
		c.Pipeline.InboundQueueSize = 1024
	}
	if c.Pipeline.ExecutionQueueSize == 0 {
		c.Pipeline.ExecutionQueueSize = 256
	}
	if c.Validation.MaxTimestampDrift == 0 {
		c.Validation.MaxTimestampDrift = 30 * time.Second
	}
	if c.Validation.MaxLeverage == 0 {
		c.Validation.MaxLeverage = 10
	}
	if c.Validation.MaxExposure == 0 {
		c.Validation.MaxExposure = 0.1
	}
	if c.Validation.MinStopLossRatio == 0 {
		c.Validation.MinStopLossRatio = 0.01
	}
	if c.Validation.MaxTimeWindow == 0 {
		c.Validation.MaxTimeWindow = 300 * time.Second
	}
	if c.Validation.MaxRiskReward == 0 {
		c.Validation.MaxRiskReward = 2.0
	}
	if c.Validation.MinLiquidityRatio == 0 {
		c.Validation.MinLiquidityRatio = 0.05
	}
	if c.Validation.MaxCommissionPct == 0 {
		c.Validation.MaxCommissionPct = 0.1
	}
	if c.Validation.MaxSlippageBPS == 0 {
		c.Validation.MaxSlippageBPS = 50
	}
	if c.Validation.MaxRecentSignals == 0 {
		c.Validation.MaxRecentSignals = 10
	}
	if c.Validation.RecentHistoryDepth == 0 {
		c.Validation.RecentHistoryDepth = 50
	}
	if c.Execution.MaxOrderSize == 0 {
		c.Execution.MaxOrderSize = 100000
	}
	if c.Execution.MaxDailyLoss == 0 {
		c.Execution.MaxDailyLoss = 0.05
	}
	if c.Execution.MaxSlippageBPS == 0 {
		c.Execution.MaxSlippageBPS = 50
	}
	if c.Execution.OutcomeTTL == 0 {
		c.Execution.OutcomeTTL = 24 * time.Hour
	}
	if c.Execution.ErrorLogDepth == 0 {
		c.Execution.ErrorLogDepth = 1000
	}
	if c.Latency.Threshold == 0 {
		c.Latency.Threshold = 100 * time.Millisecond
	}
	if c.Latency.StatsTTL == 0 {
		c.Latency.StatsTTL = time.Hour
	}
	if c.Broker.Name == "" {
		c.Broker.Name = "sim"
	}
	if c.Broker.Timeout == 0 {
		c.Broker.Timeout = 5 * time.Second
	}
	if c.Feed.ReconnectDelay == 0 {
		c.Feed.ReconnectDelay = 5 * time.Second
	}
	if c.Feed.PingInterval == 0 {
		c.Feed.PingInterval = 30 * time.Second
	}
	if c.Feed.MaxSignalsPerSec == 0 {
		c.Feed.MaxSignalsPerSec = 20
	}
	if c.Kafka.AuditTopic == "" {
		c.Kafka.AuditTopic = "tradegate.audit"
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 10 * time.Second
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "tradegate"
	}
	if c.ClickHouse.DialTimeout == 0 {
		c.ClickHouse.DialTimeout = 5 * time.Second
	}
	if c.ClickHouse.FlushInterval == 0 {
		c.ClickHouse.FlushInterval = 5 * time.Second
	}
	if c.ClickHouse.BatchSize == 0 {
		c.ClickHouse.BatchSize = 500
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Feed.Enabled {
		if c.Feed.URL == "" {
			return fmt.Errorf("feed.url is required when feed is enabled")
		}
		if len(c.Feed.Symbols) == 0 {
			return fmt.Errorf("feed.symbols cannot be empty when feed is enabled")
		}
	}
	return nil
}
