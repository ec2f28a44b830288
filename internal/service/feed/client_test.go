package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
)

func TestParseFrame(t *testing.T) {
	frame := []byte(`{
		"type": "signal",
		"data": [
			{"symbol": "BTCUSD", "kind": "BUY", "size": 1.5, "timestamp": 1724900000000, "entry_price": 100, "stop_loss": 98},
			{"symbol": "ETHUSD", "kind": "SELL", "size": 2, "timestamp": 1724900001000}
		]
	}`)

	sigs := parseFrame(frame)
	require.Len(t, sigs, 2)

	assert.Equal(t, "BTCUSD", sigs[0].Symbol)
	assert.Equal(t, models.Buy, sigs[0].Kind)
	assert.Equal(t, 1.5, sigs[0].Size)
	assert.Equal(t, int64(1724900000), sigs[0].Timestamp, "millisecond timestamps become seconds")
	assert.Equal(t, 100.0, sigs[0].EntryPrice)

	assert.Equal(t, models.Sell, sigs[1].Kind)
}

func TestParseFrameSkipsUnknownKinds(t *testing.T) {
	frame := []byte(`{
		"type": "signal",
		"data": [
			{"symbol": "BTCUSD", "kind": "HOLD", "size": 1, "timestamp": 1724900000000},
			{"symbol": "BTCUSD", "kind": "BUY", "size": 1, "timestamp": 1724900000000}
		]
	}`)

	sigs := parseFrame(frame)
	require.Len(t, sigs, 1, "unknown kinds are skipped, not fatal")
	assert.Equal(t, models.Buy, sigs[0].Kind)
}

func TestParseFrameIgnoresNonSignalTraffic(t *testing.T) {
	assert.Nil(t, parseFrame([]byte(`{"type":"ping"}`)))
	assert.Nil(t, parseFrame([]byte(`{"type":"subscribe_ack","channel":"alpha"}`)))
	assert.Nil(t, parseFrame([]byte(`not json`)))
	assert.Empty(t, parseFrame([]byte(`{"type":"signal","data":[]}`)))
}
