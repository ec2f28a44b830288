package validation

import "time"

// Config carries the numeric thresholds of the admission chain. Zero values
// fall back to the documented defaults; components never receive an untyped
// option map.
type Config struct {
	AllowedRegions     []string
	MaxTimestampDrift  time.Duration
	MaxLeverage        float64
	MaxExposure        float64
	MinStopLossRatio   float64
	MaxTimeWindow      time.Duration
	MaxRiskReward      float64
	MinLiquidityRatio  float64
	MaxCommissionPct   float64
	MaxSlippageBPS     float64
	MaxRecentSignals   int
	RecentHistoryDepth int
}

func (c Config) withDefaults() Config {
	if c.MaxTimestampDrift == 0 {
		c.MaxTimestampDrift = 30 * time.Second
	}
	if c.MaxLeverage == 0 {
		c.MaxLeverage = 10
	}
	if c.MaxExposure == 0 {
		c.MaxExposure = 0.1
	}
	if c.MinStopLossRatio == 0 {
		c.MinStopLossRatio = 0.01
	}
	if c.MaxTimeWindow == 0 {
		c.MaxTimeWindow = 300 * time.Second
	}
	if c.MaxRiskReward == 0 {
		c.MaxRiskReward = 2.0
	}
	if c.MinLiquidityRatio == 0 {
		c.MinLiquidityRatio = 0.05
	}
	if c.MaxCommissionPct == 0 {
		c.MaxCommissionPct = 0.1
	}
	if c.MaxSlippageBPS == 0 {
		c.MaxSlippageBPS = 50
	}
	if c.MaxRecentSignals == 0 {
		c.MaxRecentSignals = 10
	}
	if c.RecentHistoryDepth == 0 {
		c.RecentHistoryDepth = 50
	}
	return c
}
