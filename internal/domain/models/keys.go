package models

import "fmt"

// Store key namespace shared by validation and execution. Every cross-check
// state lookup and every metric write goes through one of these builders so
// the layout stays in a single place.

const (
	KeyHighLatency      = "execution:high_latency"
	KeyExecutionErrors  = "execution:errors"
	KeyValidationErrors = "validation:errors"
	KeyLatencyPrefix    = "execution:latency:"

	// ChannelValidationOutput receives every verdict, fire-and-forget.
	ChannelValidationOutput = "validation_output"
)

func KeyRestrictedSymbols(region string) string { return "compliance:restricted:" + region }
func KeyMarketTimestamp(symbol string) string   { return "market:timestamp:" + symbol }
func KeyPortfolioExposure(symbol string) string { return "portfolio:exposure:" + symbol }
func KeyOpenPosition(symbol string) string      { return "positions:open:" + symbol }
func KeyRecentSignals(symbol string) string     { return "signals:recent:" + symbol }
func KeyMarketDepth(symbol string) string       { return "market:depth:" + symbol }
func KeyCommission(symbol string) string        { return "broker:commission:" + symbol }
func KeySlippage(symbol string) string          { return "market:slippage:" + symbol }
func KeyDailyLoss(symbol string) string         { return "risk:daily_loss:" + symbol }
func KeyExecSuccess(symbol string) string       { return "execution:success:" + symbol }
func KeyExecFailures(symbol string) string      { return "execution:failures:" + symbol }
func KeyExecAvgLatency(symbol string) string    { return "execution:avg_latency:" + symbol }
func KeyTradeState(id string) string            { return "state:trade:" + id }
func KeySessionState(id string) string          { return "state:session:" + id }

func KeyLatency(operation string) string { return KeyLatencyPrefix + operation }

func KeyLatencyCount(operation string) string {
	return fmt.Sprintf("%s%s:count", KeyLatencyPrefix, operation)
}

func KeyLatencySum(operation string) string {
	return fmt.Sprintf("%s%s:sum", KeyLatencyPrefix, operation)
}

func KeyLatencyMin(operation string) string {
	return fmt.Sprintf("%s%s:min", KeyLatencyPrefix, operation)
}

func KeyLatencyMax(operation string) string {
	return fmt.Sprintf("%s%s:max", KeyLatencyPrefix, operation)
}
