package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "localhost", c.Redis.Host)
	assert.Equal(t, 6379, c.Redis.Port)
	assert.Equal(t, 1024, c.Pipeline.InboundQueueSize)
	assert.Equal(t, 30*time.Second, c.Validation.MaxTimestampDrift)
	assert.Equal(t, 2.0, c.Validation.MaxRiskReward)
	assert.Equal(t, 50.0, c.Execution.MaxSlippageBPS)
	assert.Equal(t, 100*time.Millisecond, c.Latency.Threshold)
	assert.Equal(t, "sim", c.Broker.Name)
	assert.Equal(t, "tradegate.audit", c.Kafka.AuditTopic)
	assert.Equal(t, "tradegate", c.ClickHouse.Database)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
validation:
  max_risk_reward_ratio: 3.5
  allowed_regions: [US, EU]
execution:
  max_order_size: 250
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 3.5, c.Validation.MaxRiskReward)
	assert.Equal(t, []string{"US", "EU"}, c.Validation.AllowedRegions)
	assert.Equal(t, 250.0, c.Execution.MaxOrderSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "environment: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	t.Run("kafka enabled without brokers", func(t *testing.T) {
		path := writeConfig(t, "kafka:\n  enabled: true\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kafka.brokers")
	})

	t.Run("clickhouse enabled without host", func(t *testing.T) {
		path := writeConfig(t, "clickhouse:\n  enabled: true\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clickhouse.host")
	})

	t.Run("feed enabled without url", func(t *testing.T) {
		path := writeConfig(t, "feed:\n  enabled: true\n  symbols: [BTCUSD]\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "feed.url")
	})

	t.Run("feed enabled without symbols", func(t *testing.T) {
		path := writeConfig(t, "feed:\n  enabled: true\n  url: wss://example.com\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "feed.symbols")
	})
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FEED_TOKEN", "secret")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal", c.Redis.Host)
	assert.Equal(t, 6380, c.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "secret", c.Feed.Token)
}
