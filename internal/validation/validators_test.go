package validation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

func testConfig() Config {
	return Config{
		MaxTimestampDrift: 30 * time.Second,
		MaxLeverage:       10,
		MaxExposure:       100,
		MinStopLossRatio:  0.01,
		MaxTimeWindow:     300 * time.Second,
		MaxRiskReward:     2.0,
		MinLiquidityRatio: 0.05,
		MaxCommissionPct:  0.1,
		MaxSlippageBPS:    50,
		MaxRecentSignals:  10,
	}
}

func testSignal(now time.Time) *models.Signal {
	return &models.Signal{
		Symbol:     "BTCUSD",
		Kind:       models.Buy,
		Size:       1,
		Timestamp:  now.Unix(),
		EntryPrice: 100,
		StopLoss:   98,
		TakeProfit: 103,
	}
}

func seedMarket(t *testing.T, st *store.MemoryStore, symbol string, now time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.SetWithTTL(ctx, models.KeyMarketTimestamp(symbol), store.FormatInt(now.Unix()), 0))
	require.NoError(t, st.SetWithTTL(ctx, models.KeyMarketDepth(symbol), store.FormatFloat(1000), 0))
}

func TestComplianceRegionAllowList(t *testing.T) {
	st := store.NewMemoryStore()
	cfg := testConfig()
	cfg.AllowedRegions = []string{"US", "EU"}
	c := NewCompliance(cfg, st)

	sig := testSignal(time.Now())
	sig.Region = "KP"
	err := c.Validate(context.Background(), sig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")

	sig.Region = "US"
	assert.NoError(t, c.Validate(context.Background(), sig))
}

func TestComplianceRestrictedSymbol(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.ListPush(ctx, models.KeyRestrictedSymbols("US"), "BTCUSD"))

	c := NewCompliance(testConfig(), st)
	sig := testSignal(time.Now())
	sig.Region = "US"

	err := c.Validate(ctx, sig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restricted")
}

func TestComplianceFailsClosedOnStoreError(t *testing.T) {
	st := store.NewMemoryStore()
	st.FailGets = true

	c := NewCompliance(testConfig(), st)
	sig := testSignal(time.Now())
	sig.Region = "US"

	err := c.Validate(context.Background(), sig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestTimeSensitivity(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("missing market timestamp rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		v := NewTimeSensitivity(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no market timestamp")
	})

	t.Run("drift beyond limit rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyMarketTimestamp("BTCUSD"),
			store.FormatInt(now.Add(-2*time.Minute).Unix()), 0))
		v := NewTimeSensitivity(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "drift")
	})

	t.Run("fresh timestamp passes", func(t *testing.T) {
		st := store.NewMemoryStore()
		seedMarket(t, st, "BTCUSD", now)
		v := NewTimeSensitivity(testConfig(), st)
		assert.NoError(t, v.Validate(ctx, testSignal(now)))
	})
}

func TestRiskAssessor(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("leverage above maximum rejects", func(t *testing.T) {
		v := NewRiskAssessor(testConfig(), store.NewMemoryStore())
		sig := testSignal(now)
		sig.Leverage = 20
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "leverage")
	})

	t.Run("missing leverage defaults to one", func(t *testing.T) {
		v := NewRiskAssessor(testConfig(), store.NewMemoryStore())
		assert.NoError(t, v.Validate(ctx, testSignal(now)))
	})

	t.Run("projected exposure above maximum rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyPortfolioExposure("BTCUSD"), store.FormatFloat(99.5), 0))
		v := NewRiskAssessor(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exposure")
	})

	t.Run("fails closed on store error", func(t *testing.T) {
		st := store.NewMemoryStore()
		st.FailGets = true
		v := NewRiskAssessor(testConfig(), st)
		require.Error(t, v.Validate(ctx, testSignal(now)))
	})
}

func TestStopLossRatio(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	v := NewStopLossChecker(testConfig())

	t.Run("ratio below minimum rejects", func(t *testing.T) {
		sig := testSignal(now)
		sig.StopLoss = 99.5 // ratio 0.005
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "below minimum")
	})

	t.Run("ratio above minimum passes", func(t *testing.T) {
		sig := testSignal(now)
		sig.StopLoss = 98 // ratio 0.02
		assert.NoError(t, v.Validate(ctx, sig))
	})

	t.Run("sell direction inverts ratio", func(t *testing.T) {
		sig := testSignal(now)
		sig.Kind = models.Sell
		sig.StopLoss = 102 // (102-100)/100 = 0.02
		assert.NoError(t, v.Validate(ctx, sig))
	})

	t.Run("missing stop loss rejects", func(t *testing.T) {
		sig := testSignal(now)
		sig.StopLoss = 0
		require.Error(t, v.Validate(ctx, sig))
	})
}

func TestGoalAlignment(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	v := NewGoalAlignment(testConfig())

	t.Run("ratio above maximum rejects", func(t *testing.T) {
		sig := testSignal(now)
		sig.StopLoss = 95    // risk 5
		sig.TakeProfit = 112 // reward 12, ratio 2.4
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "risk-reward ratio")
	})

	t.Run("ratio at maximum passes", func(t *testing.T) {
		sig := testSignal(now)
		sig.StopLoss = 95    // risk 5
		sig.TakeProfit = 110 // reward 10, ratio 2.0
		assert.NoError(t, v.Validate(ctx, sig))
	})

	t.Run("zero risk rejects", func(t *testing.T) {
		sig := testSignal(now)
		sig.StopLoss = 100
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zero risk")
	})

	t.Run("missing take profit rejects", func(t *testing.T) {
		sig := testSignal(now)
		sig.TakeProfit = 0
		require.Error(t, v.Validate(ctx, sig))
	})
}

func TestStrategyFilter(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("stale signal rejects", func(t *testing.T) {
		v := NewStrategyFilter(testConfig(), store.NewMemoryStore())
		sig := testSignal(now)
		sig.Timestamp = now.Add(-10 * time.Minute).Unix()
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds window")
	})

	t.Run("duplicate fingerprint rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		sig := testSignal(now)
		require.NoError(t, st.ListPush(ctx, models.KeyRecentSignals(sig.Symbol), sig.Fingerprint()))

		v := NewStrategyFilter(testConfig(), st)
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("validation does not record history", func(t *testing.T) {
		st := store.NewMemoryStore()
		v := NewStrategyFilter(testConfig(), st)
		sig := testSignal(now)

		require.NoError(t, v.Validate(ctx, sig))
		require.NoError(t, v.Validate(ctx, sig))
		assert.Zero(t, st.ListLen(models.KeyRecentSignals(sig.Symbol)))
	})
}

func TestLiquidityValidator(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("unknown depth rejects", func(t *testing.T) {
		v := NewLiquidityValidator(testConfig(), store.NewMemoryStore())
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "depth unknown")
	})

	t.Run("oversized order rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyMarketDepth("BTCUSD"), store.FormatFloat(10), 0))
		v := NewLiquidityValidator(testConfig(), st)
		sig := testSignal(now) // size 1, ratio 0.1 > 0.05
		err := v.Validate(ctx, sig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "size/depth")
	})

	t.Run("small order passes", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyMarketDepth("BTCUSD"), store.FormatFloat(1000), 0))
		v := NewLiquidityValidator(testConfig(), st)
		assert.NoError(t, v.Validate(ctx, testSignal(now)))
	})
}

func TestConsistency(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("opposing open position rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyOpenPosition("BTCUSD"), string(models.Sell), 0))
		v := NewConsistency(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicts")
	})

	t.Run("aligned open position passes", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyOpenPosition("BTCUSD"), string(models.Buy), 0))
		v := NewConsistency(testConfig(), st)
		assert.NoError(t, v.Validate(ctx, testSignal(now)))
	})

	t.Run("too many queued signals rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		for i := 0; i < 10; i++ {
			sig := testSignal(now)
			sig.Size = float64(i + 1)
			require.NoError(t, st.ListPush(ctx, models.KeyRecentSignals("BTCUSD"), sig.Fingerprint()))
		}
		v := NewConsistency(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recent signals")
	})

	t.Run("fails closed on store error", func(t *testing.T) {
		st := store.NewMemoryStore()
		st.FailGets = true
		v := NewConsistency(testConfig(), st)
		require.Error(t, v.Validate(ctx, testSignal(now)))
	})
}

func TestCostAnalysis(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("commission above maximum rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.SetWithTTL(ctx, models.KeyCommission("BTCUSD"), store.FormatFloat(0.5), 0))
		v := NewCostAnalysis(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commission")
	})

	t.Run("commission read failure passes open", func(t *testing.T) {
		st := store.NewMemoryStore()
		st.FailGets = true
		v := NewCostAnalysis(testConfig(), st)
		assert.NoError(t, v.Validate(ctx, testSignal(now)))
	})

	t.Run("observed slippage above limit rejects", func(t *testing.T) {
		st := store.NewMemoryStore()
		require.NoError(t, st.ListPush(ctx, models.KeySlippage("BTCUSD"), store.FormatFloat(80)))
		v := NewCostAnalysis(testConfig(), st)
		err := v.Validate(ctx, testSignal(now))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "slippage"))
	})

	t.Run("no observations pass", func(t *testing.T) {
		v := NewCostAnalysis(testConfig(), store.NewMemoryStore())
		assert.NoError(t, v.Validate(ctx, testSignal(now)))
	})
}
